package builtin

import (
	"context"
	"fmt"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// CatCommand concatenates files, or stdin when no file is given, to stdout.
type CatCommand struct {
	Number bool
}

// Execute copies every input line to stdout, optionally prefixed with a running line number.
func (c *CatCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	n := 0
	return forEachInput(ctx, ec, "cat", ec.Arguments, func(_ string, r shelltypes.TextReader) error {
		for {
			line, err := r.ReadLine(ctx)
			if err != nil {
				return ignoreEOF(err)
			}
			n++
			if c.Number {
				line = fmt.Sprintf("%6d\t%s", n, line)
			}
			if err := ec.Stdout.WriteLine(ctx, line); err != nil {
				return err
			}
		}
	})
}

// Complete suggests file names.
func (c *CatCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, false)
}

func init() {
	spec := commands.Define("cat", "Concatenate files to standard output", func() *CatCommand { return &CatCommand{} }).
		Bool("number", 'n', "number all output lines", func(c *CatCommand) *bool { return &c.Number })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register cat command: %v", err))
	}
}
