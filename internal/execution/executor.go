package execution

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"pipeshell/internal/binder"
	"pipeshell/internal/logger"
	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// Config holds the collaborators and initial session state of an Executor.
type Config struct {
	// Fs is where redirections and commands touch files. Defaults to the OS file system.
	Fs afero.Fs

	WorkingDirectory  string
	PreviousDirectory string
	HomeDirectory     string

	// Stderr is shared by every stage. Defaults to a discarding in-memory writer.
	Stderr shelltypes.TextWriter

	Catalog shelltypes.Catalog
	History func() []string

	// OnDirectoryChange is called when a command changes directory with propagation.
	OnDirectoryChange func(dir, previous string)

	// NewRunID generates the ID attached to a run's log lines. Defaults to random UUIDs.
	NewRunID func() string
}

// Executor runs bound pipelines one stage at a time with full buffering between stages.
// It owns the working directory and its predecessor; commands change them only through
// ExecutionContext.ChangeDirectory.
type Executor struct {
	mu       sync.Mutex
	cwd      string
	previous string

	fs                afero.Fs
	home              string
	stderr            shelltypes.TextWriter
	catalog           shelltypes.Catalog
	history           func() []string
	onDirectoryChange func(dir, previous string)
	newRunID          func() string
	log               *log.Logger
}

// NewExecutor creates an executor from cfg.
func NewExecutor(cfg Config) *Executor {
	e := &Executor{
		cwd:               cfg.WorkingDirectory,
		previous:          cfg.PreviousDirectory,
		fs:                cfg.Fs,
		home:              cfg.HomeDirectory,
		stderr:            cfg.Stderr,
		catalog:           cfg.Catalog,
		history:           cfg.History,
		onDirectoryChange: cfg.OnDirectoryChange,
		newRunID:          cfg.NewRunID,
		log:               logger.NewStyledLogger("Executor"),
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.stderr == nil {
		e.stderr = stream.NewMemoryWriter()
	}
	if e.history == nil {
		e.history = func() []string { return nil }
	}
	if e.newRunID == nil {
		e.newRunID = RandomRunIDs()
	}
	return e
}

// WorkingDirectory returns the current working directory.
func (e *Executor) WorkingDirectory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cwd
}

// PreviousDirectory returns the working directory before the last change.
func (e *Executor) PreviousDirectory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previous
}

// SetDirectories replaces the working and previous directories without notifying
// OnDirectoryChange. Hosts use it to sync the executor with their session.
func (e *Executor) SetDirectories(cwd, previous string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cwd = cwd
	e.previous = previous
}

// ChangeDirectory makes dir the working directory and records the old one as previous.
func (e *Executor) ChangeDirectory(dir string, propagate bool) {
	e.mu.Lock()
	previous := e.cwd
	e.previous = previous
	e.cwd = dir
	e.mu.Unlock()

	e.log.Debug("Working directory changed", "dir", dir, "previous", previous, "propagate", propagate)
	if propagate && e.onDirectoryChange != nil {
		e.onDirectoryChange(dir, previous)
	}
}

// ResolvePath resolves path against the current working and home directories.
func (e *Executor) ResolvePath(path string) string {
	return ResolvePath(path, e.WorkingDirectory(), e.home)
}

// Run executes pipeline, writing the last stage's output to stdout unless it is redirected.
//
// The returned ExecutionResult classifies the run: Success, or the first failing stage's
// classification. Failures are also described on the executor's stderr. The error return
// is reserved for cancellation: when ctx is done before a stage starts, or a command
// returns a cancellation error, Run returns that error and the run has no
// classification. The result is meaningless whenever the error is non-nil.
func (e *Executor) Run(ctx context.Context, pipeline *binder.BoundPipeline, stdout shelltypes.TextWriter) (shelltypes.ExecutionResult, error) {
	if pipeline == nil || pipeline.IsEmpty() {
		return shelltypes.Result(shelltypes.ExitSuccess), nil
	}

	id := e.newRunID()
	r := &run{
		executor: e,
		stages:   pipeline.Commands(),
		sink:     stdout,
		next:     stream.NewEmptyReader(),
		log:      e.log.With("run", id),
	}
	return r.execute(ctx)
}
