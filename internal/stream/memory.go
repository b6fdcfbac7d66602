// Package stream provides the line-oriented readers and writers that connect pipeline
// stages: in-memory buffers, file-backed streams, an empty reader and adapters over
// plain io streams. Every operation checks its context before doing work.
package stream

import (
	"context"
	"io"
	"strings"
	"sync"

	"pipeshell/pkg/shelltypes"
)

// MemoryWriter buffers completed lines plus one pending fragment.
type MemoryWriter struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
	closed  bool
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// Write appends chunk; every newline in it completes a line.
func (w *MemoryWriter) Write(ctx context.Context, chunk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.feed(chunk)
	return nil
}

// WriteLine completes the pending fragment with text.
func (w *MemoryWriter) WriteLine(ctx context.Context, text string) error {
	return w.Write(ctx, text+"\n")
}

func (w *MemoryWriter) feed(chunk string) {
	for {
		i := strings.IndexByte(chunk, '\n')
		if i < 0 {
			w.pending.WriteString(chunk)
			return
		}
		w.pending.WriteString(strings.TrimSuffix(chunk[:i], "\r"))
		w.lines = append(w.lines, w.pending.String())
		w.pending.Reset()
		chunk = chunk[i+1:]
	}
}

// Flush promotes a non-empty pending fragment to a final line.
func (w *MemoryWriter) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending.Len() > 0 {
		w.lines = append(w.lines, w.pending.String())
		w.pending.Reset()
	}
	return nil
}

// Close stops further writes. Buffered lines stay readable.
func (w *MemoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Lines returns the completed lines. The pending fragment is not included until flushed.
func (w *MemoryWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

// Pending returns the unterminated fragment.
func (w *MemoryWriter) Pending() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending.String()
}

// String returns the completed lines joined with newlines, each terminated.
func (w *MemoryWriter) String() string {
	lines := w.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Reader returns a reader over the completed lines at the time of the call.
func (w *MemoryWriter) Reader() *MemoryReader {
	return NewMemoryReader(w.Lines())
}

// MemoryReader reads lines from a slice, once.
type MemoryReader struct {
	mu    sync.Mutex
	lines []string
	next  int
}

// NewMemoryReader creates a reader over lines.
func NewMemoryReader(lines []string) *MemoryReader {
	return &MemoryReader{lines: append([]string(nil), lines...)}
}

// ReadLine returns the next line, or io.EOF when none remain.
func (r *MemoryReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.next]
	r.next++
	return line, nil
}

// Close releases nothing; in-memory readers own no resources.
func (r *MemoryReader) Close() error {
	return nil
}

var (
	_ shelltypes.TextWriter = (*MemoryWriter)(nil)
	_ shelltypes.TextReader = (*MemoryReader)(nil)
)
