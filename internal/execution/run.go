package execution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"pipeshell/internal/binder"
	"pipeshell/internal/logger"
	"pipeshell/internal/parser"
	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// run holds the state of one pipeline execution.
type run struct {
	executor *Executor
	stages   []*binder.BoundCommand
	sink     shelltypes.TextWriter
	log      *log.Logger

	state     State
	index     int
	resources resourceTracker

	// next is the input prepared for the upcoming stage.
	next shelltypes.TextReader

	// Per-stage streams.
	stdin       shelltypes.TextReader
	stdout      shelltypes.TextWriter
	buffer      *stream.MemoryWriter
	stdinFile   *resource
	stdoutFile  *resource
	sinkWritten bool
	ec          *shelltypes.ExecutionContext

	code shelltypes.ExitCode
	err  error
}

func (r *run) execute(ctx context.Context) (shelltypes.ExecutionResult, error) {
	r.log.Debug("Pipeline started", "stages", len(r.stages))
	r.state = StateCheckingCancellation

	for !r.state.IsTerminal() {
		current := r.state
		r.state = r.process(ctx)
		r.log.Debug("Stage transition", "stage", r.index, "state", current.String()+" -> "+r.state.String())
	}

	r.finish(ctx)

	switch r.state {
	case StateCancelled:
		r.log.Debug("Pipeline cancelled", "stage", r.index, "error", r.err)
		return shelltypes.ExecutionResult{}, r.err
	case StateFailed:
		r.log.Debug("Pipeline failed", "stage", r.index, "code", r.code)
		return shelltypes.Result(r.code), nil
	default:
		r.log.Debug("Pipeline completed")
		return shelltypes.Result(shelltypes.ExitSuccess), nil
	}
}

// process runs the current state and returns the next one.
func (r *run) process(ctx context.Context) State {
	switch r.state {
	case StateCheckingCancellation:
		return r.processCheckingCancellation(ctx)
	case StateResolvingStdin:
		return r.processResolvingStdin(ctx)
	case StateResolvingStdout:
		return r.processResolvingStdout(ctx)
	case StateBuildingContext:
		return r.processBuildingContext()
	case StateInvoking:
		return r.processInvoking(ctx)
	case StateHandingOff:
		return r.processHandingOff(ctx)
	default:
		return r.fail(ctx, "internal error: unexpected state %s", r.state)
	}
}

func (r *run) stage() *binder.BoundCommand {
	return r.stages[r.index]
}

func (r *run) isLast() bool {
	return r.index == len(r.stages)-1
}

func (r *run) processCheckingCancellation(ctx context.Context) State {
	if err := ctx.Err(); err != nil {
		r.err = err
		return StateCancelled
	}
	r.stdin, r.stdout, r.buffer = nil, nil, nil
	r.stdinFile, r.stdoutFile, r.ec = nil, nil, nil
	return StateResolvingStdin
}

func (r *run) processResolvingStdin(ctx context.Context) State {
	redirections := r.stage().Redirections()
	if !redirections.HasStdin() {
		r.stdin = r.next
		return StateResolvingStdout
	}

	fs := r.executor.fs
	path := r.executor.ResolvePath(redirections.Stdin)
	info, err := fs.Stat(path)
	if err != nil {
		return r.fail(ctx, "File not found: %s", path)
	}
	if info.IsDir() {
		return r.fail(ctx, "Is a directory: %s", path)
	}

	reader, err := stream.OpenFileReader(fs, path)
	if err != nil {
		return r.fail(ctx, "cannot open %s: %v", path, err)
	}
	r.stdinFile = r.resources.track(path, reader)
	r.stdin = reader
	return StateResolvingStdout
}

func (r *run) processResolvingStdout(ctx context.Context) State {
	redirections := r.stage().Redirections()
	switch {
	case redirections.HasStdout():
		fs := r.executor.fs
		path := r.executor.ResolvePath(redirections.Stdout)
		if exists, _ := afero.DirExists(fs, filepath.Dir(path)); !exists {
			return r.fail(ctx, "Directory not found: %s", filepath.Dir(path))
		}
		writer, err := stream.OpenFileWriter(fs, path, redirections.StdoutMode == parser.RedirectAppend)
		if err != nil {
			return r.fail(ctx, "cannot open %s: %v", path, err)
		}
		r.stdoutFile = r.resources.track(path, writer)
		r.stdout = writer
	case r.isLast():
		r.stdout = r.sink
		r.sinkWritten = true
	default:
		r.buffer = stream.NewMemoryWriter()
		r.stdout = r.buffer
	}
	return StateBuildingContext
}

func (r *run) processBuildingContext() State {
	e := r.executor
	e.mu.Lock()
	cwd, previous := e.cwd, e.previous
	e.mu.Unlock()

	r.ec = &shelltypes.ExecutionContext{
		Stdin:             r.stdin,
		Stdout:            r.stdout,
		Stderr:            e.stderr,
		WorkingDirectory:  cwd,
		PreviousDirectory: previous,
		HomeDirectory:     e.home,
		Arguments:         r.stage().Arguments(),
		Fs:                e.fs,
		Catalog:           e.catalog,
		History:           e.history,
		ChangeDirectory:   e.ChangeDirectory,
		ResolvePath:       e.ResolvePath,
	}
	return StateInvoking
}

func (r *run) processInvoking(ctx context.Context) State {
	stage := r.stage()
	logger.CommandExecution(stage.Name(), r.ec.Arguments)

	code, err := invoke(ctx, stage.Command(), r.ec)
	if err != nil {
		if isCancellation(err) {
			r.err = err
			return StateCancelled
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.err = ctxErr
			return StateCancelled
		}
		return r.fail(ctx, "%s: %v", stage.Name(), err)
	}
	if code != shelltypes.ExitSuccess {
		r.code = code
		return StateFailed
	}
	return StateHandingOff
}

func (r *run) processHandingOff(ctx context.Context) State {
	if err := r.resources.release(r.stdinFile); err != nil {
		r.log.Warn("Failed to close input", "error", err)
	}
	if err := r.resources.release(r.stdoutFile); err != nil {
		return r.fail(ctx, "%s: %v", r.stage().Name(), err)
	}

	if r.isLast() {
		return StateCompleted
	}

	switch {
	case r.buffer != nil:
		if err := r.buffer.Flush(ctx); err != nil {
			r.err = err
			return StateCancelled
		}
		r.next = r.buffer.Reader()
	default:
		r.next = stream.NewEmptyReader()
	}
	r.index++
	return StateCheckingCancellation
}

// finish releases everything the run opened and flushes the shared streams.
func (r *run) finish(ctx context.Context) {
	if err := r.resources.releaseAll(); err != nil {
		r.log.Warn("Failed to release redirection", "error", err)
	}
	flushCtx := context.WithoutCancel(ctx)
	if r.sinkWritten && r.state != StateCancelled {
		if err := r.sink.Flush(flushCtx); err != nil {
			r.log.Warn("Failed to flush output", "error", err)
		}
	}
	if err := r.executor.stderr.Flush(flushCtx); err != nil {
		r.log.Warn("Failed to flush stderr", "error", err)
	}
}

// fail reports a runtime error on stderr and ends the run.
func (r *run) fail(ctx context.Context, format string, args ...any) State {
	message := fmt.Sprintf(format, args...)
	if err := r.executor.stderr.WriteLine(context.WithoutCancel(ctx), message); err != nil {
		r.log.Warn("Failed to write stderr", "error", err)
	}
	r.code = shelltypes.ExitRuntimeError
	return StateFailed
}

// invoke runs cmd, turning a panic into an error.
func invoke(ctx context.Context, cmd shelltypes.Command, ec *shelltypes.ExecutionContext) (code shelltypes.ExitCode, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			code, err = shelltypes.ExitRuntimeError, fmt.Errorf("panic: %v", recovered)
		}
	}()
	return cmd.Execute(ctx, ec)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
