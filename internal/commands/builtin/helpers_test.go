package builtin

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"pipeshell/internal/commands"
	"pipeshell/internal/execution"
	"pipeshell/internal/stream"
	"pipeshell/internal/testutils"
	"pipeshell/pkg/shelltypes"
)

// harness runs a single command instance against an in-memory session.
type harness struct {
	fs     afero.Fs
	stdin  shelltypes.TextReader
	stdout *stream.MemoryWriter
	stderr *stream.MemoryWriter

	cwd        string
	previous   string
	home       string
	history    []string
	catalog    shelltypes.Catalog
	propagated bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		fs:     testutils.NewMemFs(t, "/work", "/home/user"),
		stdout: stream.NewMemoryWriter(),
		stderr: stream.NewMemoryWriter(),
		cwd:     "/work",
		home:    "/home/user",
		catalog: commands.GlobalRegistry,
	}
}

func (h *harness) withStdin(lines ...string) *harness {
	h.stdin = stream.NewMemoryReader(lines)
	return h
}

func (h *harness) context(args ...string) *shelltypes.ExecutionContext {
	stdin := h.stdin
	if stdin == nil {
		stdin = stream.NewEmptyReader()
	}
	return &shelltypes.ExecutionContext{
		Stdin:             stdin,
		Stdout:            h.stdout,
		Stderr:            h.stderr,
		WorkingDirectory:  h.cwd,
		PreviousDirectory: h.previous,
		HomeDirectory:     h.home,
		Arguments:         args,
		Fs:                h.fs,
		Catalog:           h.catalog,
		History:           func() []string { return h.history },
		ChangeDirectory: func(dir string, propagate bool) {
			h.previous, h.cwd = h.cwd, dir
			h.propagated = propagate
		},
		ResolvePath: func(path string) string { return execution.ResolvePath(path, h.cwd, h.home) },
	}
}

// run executes cmd and flushes both output streams.
func (h *harness) run(t *testing.T, cmd shelltypes.Command, args ...string) shelltypes.ExitCode {
	t.Helper()
	ctx := context.Background()
	code, err := cmd.Execute(ctx, h.context(args...))
	require.NoError(t, err)
	require.NoError(t, h.stdout.Flush(ctx))
	require.NoError(t, h.stderr.Flush(ctx))
	return code
}
