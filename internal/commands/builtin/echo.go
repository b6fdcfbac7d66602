package builtin

import (
	"context"
	"fmt"
	"strings"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// EchoCommand writes its arguments, joined by single spaces, to stdout.
type EchoCommand struct {
	NoNewline bool
}

// Execute writes the joined arguments as one line, or as a pending fragment with --no-newline.
func (c *EchoCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	text := strings.Join(ec.Arguments, " ")
	var err error
	if c.NoNewline {
		err = ec.Stdout.Write(ctx, text)
	} else {
		err = ec.Stdout.WriteLine(ctx, text)
	}
	if err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return shelltypes.ExitSuccess, nil
}

func init() {
	spec := commands.Define("echo", "Write arguments to standard output", func() *EchoCommand { return &EchoCommand{} }).
		Bool("no-newline", 'n', "do not terminate the output line", func(c *EchoCommand) *bool { return &c.NoNewline })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register echo command: %v", err))
	}
}
