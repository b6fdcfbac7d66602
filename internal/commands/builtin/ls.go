package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// LsCommand lists directory entries, one per line, sorted by name.
// With --pattern it lists every path below the directory matching a doublestar glob
// such as "**/*.go".
type LsCommand struct {
	All     bool
	Long    bool
	Pattern string
}

// Execute lists the directory given as the only argument, or the working directory.
func (c *LsCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if len(ec.Arguments) > 1 {
		return usageFailure(ctx, ec, "ls: too many arguments")
	}

	dir := ec.WorkingDirectory
	if len(ec.Arguments) == 1 {
		dir = ec.ResolvePath(ec.Arguments[0])
	}
	exists, err := afero.DirExists(ec.Fs, dir)
	if err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	if !exists {
		return runtimeFailure(ctx, ec, fmt.Sprintf("ls: %s: no such directory", dir))
	}

	var names []string
	if c.Pattern != "" {
		if !doublestar.ValidatePattern(c.Pattern) {
			return usageFailure(ctx, ec, fmt.Sprintf("ls: invalid pattern %q", c.Pattern))
		}
		names, err = doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(ec.Fs, dir)), c.Pattern)
	} else {
		names, err = c.entries(ec.Fs, dir)
	}
	if err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	sort.Strings(names)

	for _, name := range names {
		if !c.All && hidden(name) {
			continue
		}
		line := name
		if c.Long {
			info, err := ec.Fs.Stat(filepath.Join(dir, name))
			if err != nil {
				return shelltypes.ExitRuntimeError, err
			}
			line = describe(name, info)
		}
		if err := ec.Stdout.WriteLine(ctx, line); err != nil {
			return shelltypes.ExitRuntimeError, err
		}
	}
	return shelltypes.ExitSuccess, nil
}

func (c *LsCommand) entries(fsys afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() && !c.Long {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

// hidden reports whether any element of a slash-separated path starts with a dot.
func hidden(name string) bool {
	for _, part := range strings.Split(strings.TrimSuffix(name, "/"), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func describe(name string, info fs.FileInfo) string {
	kind := "-"
	if info.IsDir() {
		kind = "d"
	}
	return fmt.Sprintf("%s %10d %s %s", kind, info.Size(), info.ModTime().Format("2006-01-02 15:04"), name)
}

// Complete suggests directories only.
func (c *LsCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, true)
}

func init() {
	spec := commands.Define("ls", "List directory contents", func() *LsCommand { return &LsCommand{} }).
		Bool("all", 'a', "include entries starting with a dot", func(c *LsCommand) *bool { return &c.All }).
		Bool("long", 'l', "show type, size and modification time", func(c *LsCommand) *bool { return &c.Long }).
		String("pattern", 0, "list paths matching a glob such as **/*.go", func(c *LsCommand) *string { return &c.Pattern })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register ls command: %v", err))
	}
}
