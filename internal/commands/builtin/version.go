package builtin

import (
	"context"
	"fmt"

	"pipeshell/internal/commands"
	"pipeshell/internal/version"
	"pipeshell/pkg/shelltypes"
)

// VersionCommand prints the interpreter version.
type VersionCommand struct {
	Detailed bool
}

// Execute writes the one-line version, or the multi-line build report with --detailed.
func (c *VersionCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	text := version.GetFormattedVersion()
	if c.Detailed {
		text = version.GetDetailedVersion()
	}
	if err := ec.Stdout.WriteLine(ctx, text); err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return shelltypes.ExitSuccess, nil
}

func init() {
	spec := commands.Define("version", "Show version information", func() *VersionCommand { return &VersionCommand{} }).
		Bool("detailed", 'd', "include build and platform details", func(c *VersionCommand) *bool { return &c.Detailed })
	if _, err := commands.GlobalRegistry.Register(spec); err != nil {
		panic(fmt.Sprintf("failed to register version command: %v", err))
	}
}
