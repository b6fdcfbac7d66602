// Package shelltypes defines the contracts shared between the interpreter core and the
// commands it runs. This file contains the command execution and completion contracts.
package shelltypes

import (
	"context"

	"github.com/spf13/afero"
)

// Command is the execution contract every command implements.
// A command returns exactly one exit classification. A returned error is treated as an
// unhandled failure unless it is a cancellation, which propagates to the caller.
// Commands observe ctx during their own long-running work.
type Command interface {
	Execute(ctx context.Context, ec *ExecutionContext) (ExitCode, error)
}

// Catalog is the read-only view of the command registry offered to commands.
type Catalog interface {
	Names() []string
	GlobalHelp() string
	CommandHelp(name string) (string, bool)
}

// ExecutionContext is everything a command sees while it runs.
type ExecutionContext struct {
	Stdin  TextReader
	Stdout TextWriter
	Stderr TextWriter

	WorkingDirectory  string
	PreviousDirectory string
	HomeDirectory     string

	// Arguments are the positional arguments: recovered tokens first, then parsed ones.
	Arguments []string

	Fs      afero.Fs
	Catalog Catalog

	// History returns the session's command history, oldest first.
	History func() []string

	// ChangeDirectory replaces the working directory, recording the old one as the
	// previous directory. When propagate is set the change outlives the current run.
	ChangeDirectory func(dir string, propagate bool)

	// ResolvePath resolves a user-supplied path against the working and home directories.
	ResolvePath func(path string) string
}

// CompletionContext describes partial input for argument completion.
type CompletionContext struct {
	// Line is the full input up to the cursor.
	Line string
	// Word is the partial word under the cursor.
	Word             string
	WorkingDirectory string
	Fs               afero.Fs
	// Catalog lists the commands the line is resolved against.
	Catalog Catalog
}

// Completer is implemented by commands that can suggest argument completions.
type Completer interface {
	Complete(cc CompletionContext) []string
}
