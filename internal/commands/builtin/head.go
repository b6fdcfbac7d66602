package builtin

import (
	"context"
	"fmt"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// HeadCommand prints the first lines of each input.
type HeadCommand struct {
	Lines int
}

// Execute copies at most Lines lines of every input. Input beyond the limit is not read.
func (c *HeadCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if c.Lines < 0 {
		return usageFailure(ctx, ec, fmt.Sprintf("head: invalid line count: %d", c.Lines))
	}

	labelled := len(ec.Arguments) > 1
	first := true
	return forEachInput(ctx, ec, "head", ec.Arguments, func(name string, r shelltypes.TextReader) error {
		if labelled {
			header := fmt.Sprintf("==> %s <==", name)
			if !first {
				header = "\n" + header
			}
			first = false
			if err := ec.Stdout.WriteLine(ctx, header); err != nil {
				return err
			}
		}
		for i := 0; i < c.Lines; i++ {
			line, err := r.ReadLine(ctx)
			if err != nil {
				return ignoreEOF(err)
			}
			if err := ec.Stdout.WriteLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// Complete suggests file names.
func (c *HeadCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, false)
}

func init() {
	spec := commands.Define("head", "Print the first lines of files or standard input", func() *HeadCommand { return &HeadCommand{Lines: 10} }).
		Int("lines", 'n', "number of lines to print", func(c *HeadCommand) *int { return &c.Lines })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register head command: %v", err))
	}
}
