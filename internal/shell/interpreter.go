// Package shell provides the interpreter front end of pipeshell: it turns input lines
// into pipeline runs, keeps the session state in sync and drives batch scripts and the
// interactive read-eval-print loop.
package shell

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"pipeshell/internal/binder"
	"pipeshell/internal/commands"
	shellcontext "pipeshell/internal/context"
	"pipeshell/internal/execution"
	"pipeshell/internal/logger"
	"pipeshell/internal/parser"
	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// Config holds the collaborators of an Interpreter. Zero values select defaults.
type Config struct {
	// Registry resolves command names. Defaults to commands.GlobalRegistry.
	Registry *commands.Registry
	// Session holds directories and history. Defaults to a session rooted at "/".
	Session *shellcontext.Session
	// Fs defaults to the OS file system.
	Fs afero.Fs

	Stdout shelltypes.TextWriter
	Stderr shelltypes.TextWriter

	// NewRunID is passed to the executor; tests use execution.SequentialRunIDs.
	NewRunID func() string
}

// Interpreter executes command lines one at a time against a session.
// Execute may be called from several goroutines; runs are serialized.
type Interpreter struct {
	mu       sync.Mutex
	registry *commands.Registry
	session  *shellcontext.Session
	fs       afero.Fs
	binder   *binder.Binder
	executor *execution.Executor
	stdout   shelltypes.TextWriter
	stderr   shelltypes.TextWriter
	log      *log.Logger
}

// New creates an interpreter from cfg.
func New(cfg Config) *Interpreter {
	i := &Interpreter{
		registry: cfg.Registry,
		session:  cfg.Session,
		fs:       cfg.Fs,
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
		log:      logger.NewStyledLogger("Interpreter"),
	}
	if i.registry == nil {
		i.registry = commands.GlobalRegistry
	}
	if i.session == nil {
		i.session = shellcontext.NewSession("/", "/", shellcontext.DefaultHistoryLimit)
	}
	if i.fs == nil {
		i.fs = afero.NewOsFs()
	}
	if i.stdout == nil {
		i.stdout = stream.NewMemoryWriter()
	}
	if i.stderr == nil {
		i.stderr = stream.NewMemoryWriter()
	}

	cwd, previous := i.session.Directories()
	i.binder = binder.New(i.registry)
	i.executor = execution.NewExecutor(execution.Config{
		Fs:                i.fs,
		WorkingDirectory:  cwd,
		PreviousDirectory: previous,
		HomeDirectory:     i.session.HomeDirectory(),
		Stderr:            i.stderr,
		Catalog:           i.registry,
		History:           i.session.History,
		OnDirectoryChange: i.session.SetDirectories,
		NewRunID:          cfg.NewRunID,
	})
	return i
}

// Session returns the interpreter's session.
func (i *Interpreter) Session() *shellcontext.Session {
	return i.session
}

// Registry returns the registry commands are resolved against.
func (i *Interpreter) Registry() *commands.Registry {
	return i.registry
}

// Fs returns the file system commands run against.
func (i *Interpreter) Fs() afero.Fs {
	return i.fs
}

// Execute parses, binds and runs one line.
//
// Parse and bind errors are described on stderr and classified as UsageError; nothing
// runs. A bind error is followed by a blank line and the relevant help. Every line that
// parses to a non-empty pipeline is added to the history in canonical form. The error
// return is reserved for cancellation; a cancelled line has no classification, so the
// result is meaningless and the session's last exit code is left unchanged.
func (i *Interpreter) Execute(ctx context.Context, line string) (shelltypes.ExecutionResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if strings.TrimSpace(line) == "" {
		return shelltypes.Result(shelltypes.ExitSuccess), nil
	}

	parsed, err := parser.Parse(line)
	if err != nil {
		i.log.Debug("Parse failed", "line", line, "error", err)
		return i.usageError(ctx, err.Error())
	}
	if parsed.IsEmpty() {
		return shelltypes.Result(shelltypes.ExitSuccess), nil
	}
	i.session.AddHistory(parsed.String())

	bound, err := i.binder.Bind(parsed)
	if err != nil {
		var bindErr *binder.BindError
		if !errors.As(err, &bindErr) {
			return i.usageError(ctx, err.Error())
		}
		i.log.Debug("Bind failed", "command", bindErr.Command, "error", bindErr.Message)
		message := bindErr.Error()
		if bindErr.Help != "" {
			message += "\n\n" + strings.TrimRight(bindErr.Help, "\n")
		}
		return i.usageError(ctx, message)
	}

	i.executor.SetDirectories(i.session.Directories())
	result, err := i.executor.Run(ctx, bound, i.stdout)
	if err != nil {
		i.log.Debug("Line cancelled", "line", parsed.String(), "error", err)
		return result, err
	}
	i.session.SetLastExitCode(result.Code)
	i.log.Debug("Line executed", "line", parsed.String(), "code", result.Code)
	return result, nil
}

func (i *Interpreter) usageError(ctx context.Context, message string) (shelltypes.ExecutionResult, error) {
	i.session.SetLastExitCode(shelltypes.ExitUsageError)
	if err := i.stderr.WriteLine(ctx, message); err != nil {
		i.log.Warn("Failed to write stderr", "error", err)
	} else if err := i.stderr.Flush(ctx); err != nil {
		i.log.Warn("Failed to flush stderr", "error", err)
	}
	return shelltypes.Result(shelltypes.ExitUsageError), nil
}
