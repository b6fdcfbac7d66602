package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"pipeshell/internal/commands"
	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// DiffFormat selects how differences are printed.
type DiffFormat int

const (
	// DiffLines prints every line prefixed with "- ", "+ " or two spaces.
	DiffLines DiffFormat = iota
	// DiffPatch prints a GNU-style patch with %-encoded hunks.
	DiffPatch
	// DiffChars prints the character level edit script, one quoted fragment per line.
	DiffChars
)

var diffFormats = commands.NewEnum[DiffFormat]("DiffFormat", "lines", "patch", "chars")

// DiffCommand compares two files. "-" names stdin for one of them.
// Identical inputs produce no output.
type DiffCommand struct {
	Format DiffFormat
}

// Execute reads both inputs completely and prints their differences.
func (c *DiffCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if len(ec.Arguments) != 2 {
		return usageFailure(ctx, ec, "diff: expected exactly two files")
	}
	if ec.Arguments[0] == stdinName && ec.Arguments[1] == stdinName {
		return usageFailure(ctx, ec, "diff: stdin can only be compared with a file")
	}

	var texts []string
	code, err := forEachInput(ctx, ec, "diff", ec.Arguments, func(_ string, r shelltypes.TextReader) error {
		lines, err := stream.ReadAll(ctx, r)
		if err != nil {
			return err
		}
		texts = append(texts, joinLines(lines))
		return nil
	})
	if err != nil || code != shelltypes.ExitSuccess {
		return code, err
	}

	left, right := texts[0], texts[1]
	if left == right {
		return shelltypes.ExitSuccess, nil
	}

	dmp := diffmatchpatch.New()
	switch c.Format {
	case DiffPatch:
		err = ec.Stdout.Write(ctx, dmp.PatchToText(dmp.PatchMake(left, right)))
	case DiffChars:
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(left, right, false))
		err = writeDiffs(ctx, ec.Stdout, diffs, func(text string) []string { return []string{fmt.Sprintf("%q", text)} })
	default:
		a, b, lineArray := dmp.DiffLinesToChars(left, right)
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)
		err = writeDiffs(ctx, ec.Stdout, diffs, func(text string) []string {
			return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		})
	}
	if err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return shelltypes.ExitSuccess, nil
}

func writeDiffs(ctx context.Context, w shelltypes.TextWriter, diffs []diffmatchpatch.Diff, split func(string) []string) error {
	for _, diff := range diffs {
		prefix := "  "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range split(diff.Text) {
			if err := w.WriteLine(ctx, prefix+line); err != nil {
				return err
			}
		}
	}
	return nil
}

// joinLines restores a text from its lines, each terminated by a newline.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Complete suggests file names.
func (c *DiffCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, false)
}

func init() {
	spec := commands.Define("diff", "Compare two files", func() *DiffCommand { return &DiffCommand{} })
	spec = commands.Enum(spec, "format", 'f', "output format", diffFormats, func(c *DiffCommand) *DiffFormat { return &c.Format })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register diff command: %v", err))
	}
}
