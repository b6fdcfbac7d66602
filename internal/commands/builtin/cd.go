package builtin

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"pipeshell/internal/commands"
	"pipeshell/pkg/shelltypes"
)

// CdCommand changes the session's working directory.
//
//	cd          go to the home directory
//	cd -        go back to the previous directory and print it
//	cd <dir>    go to dir, relative to the working directory unless absolute
type CdCommand struct{}

// Execute validates the target and changes directory for the rest of the session.
func (c *CdCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if len(ec.Arguments) > 1 {
		return usageFailure(ctx, ec, "cd: too many arguments")
	}

	target := ec.HomeDirectory
	back := false
	if len(ec.Arguments) == 1 {
		switch arg := ec.Arguments[0]; arg {
		case "-":
			if ec.PreviousDirectory == "" {
				return runtimeFailure(ctx, ec, "cd: no previous directory")
			}
			target, back = ec.PreviousDirectory, true
		default:
			target = ec.ResolvePath(arg)
		}
	}
	if target == "" {
		return runtimeFailure(ctx, ec, "cd: no home directory")
	}

	exists, err := afero.DirExists(ec.Fs, target)
	if err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	if !exists {
		return runtimeFailure(ctx, ec, fmt.Sprintf("cd: %s: no such directory", target))
	}

	ec.ChangeDirectory(target, true)
	if back {
		if err := ec.Stdout.WriteLine(ctx, target); err != nil {
			return shelltypes.ExitRuntimeError, err
		}
	}
	return shelltypes.ExitSuccess, nil
}

// Complete suggests directories only.
func (c *CdCommand) Complete(cc shelltypes.CompletionContext) []string {
	return commands.CompletePaths(cc, true)
}

// PwdCommand prints the working directory.
type PwdCommand struct{}

// Execute writes the working directory as one line.
func (c *PwdCommand) Execute(ctx context.Context, ec *shelltypes.ExecutionContext) (shelltypes.ExitCode, error) {
	if err := ec.Stdout.WriteLine(ctx, ec.WorkingDirectory); err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return shelltypes.ExitSuccess, nil
}

func init() {
	if _, err := commands.GlobalRegistry.Register(commands.Define("cd", "Change the working directory", func() *CdCommand { return &CdCommand{} })); err != nil {
		panic(fmt.Sprintf("failed to register cd command: %v", err))
	}
	if _, err := commands.GlobalRegistry.Register(commands.Define("pwd", "Print the working directory", func() *PwdCommand { return &PwdCommand{} })); err != nil {
		panic(fmt.Sprintf("failed to register pwd command: %v", err))
	}
}
