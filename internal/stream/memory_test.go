package stream

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriter_FragmentsAndFlush(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()

	require.NoError(t, w.Write(ctx, "hel"))
	require.NoError(t, w.Write(ctx, "lo\nwor"))
	assert.Equal(t, []string{"hello"}, w.Lines())
	assert.Equal(t, "wor", w.Pending())

	require.NoError(t, w.WriteLine(ctx, "ld"))
	assert.Equal(t, []string{"hello", "world"}, w.Lines())
	assert.Empty(t, w.Pending())

	require.NoError(t, w.Write(ctx, "tail"))
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, []string{"hello", "world", "tail"}, w.Lines())
	assert.Equal(t, "hello\nworld\ntail\n", w.String())
}

func TestMemoryWriter_FlushWithoutFragmentAddsNothing(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.WriteLine(ctx, "one"))
	require.NoError(t, w.Flush(ctx))
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, []string{"one"}, w.Lines())
}

func TestMemoryWriter_CarriageReturns(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.Write(ctx, "a\r\nb\r\n"))
	assert.Equal(t, []string{"a", "b"}, w.Lines())
}

func TestMemoryWriter_EmptyLinesArePreserved(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.WriteLine(ctx, ""))
	require.NoError(t, w.Write(ctx, "\n\n"))
	assert.Equal(t, []string{"", "", ""}, w.Lines())
}

func TestMemoryWriter_Closed(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.WriteLine(ctx, "kept"))
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Write(ctx, "x"), ErrClosed)
	assert.Equal(t, []string{"kept"}, w.Lines())
}

func TestMemoryReader_ReadsOnce(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.Write(ctx, "a\nb\n"))
	r := w.Reader()

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", line)
	line, err = r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestMemoryReader_IsIsolatedFromWriter(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, w.WriteLine(ctx, "before"))
	r := w.Reader()
	require.NoError(t, w.WriteLine(ctx, "after"))

	lines, err := ReadAll(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, lines)
}

func TestStreams_ObserveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewMemoryWriter().Write(ctx, "x"), context.Canceled)
	assert.ErrorIs(t, NewMemoryWriter().Flush(ctx), context.Canceled)

	_, err := NewMemoryReader([]string{"a"}).ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEmptyReader().ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmptyReader(t *testing.T) {
	_, err := NewEmptyReader().ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, NewEmptyReader().Close())
}

func TestLines_StopsEarly(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryReader([]string{"a", "b", "c"})

	var seen []string
	for line, err := range Lines(ctx, r) {
		require.NoError(t, err)
		seen = append(seen, line)
		if line == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)

	rest, err := ReadAll(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, rest)
}

func TestLines_YieldsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines, err := ReadAll(ctx, NewMemoryReader([]string{"a"}))
	assert.Empty(t, lines)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintHelpers(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWriter()
	require.NoError(t, Printf(ctx, w, "%d-", 1))
	require.NoError(t, Println(ctx, w, "two"))
	assert.Equal(t, []string{"1-two"}, w.Lines())
}
