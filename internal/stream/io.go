package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"pipeshell/pkg/shelltypes"
)

// IOWriter adapts an io.Writer such as os.Stdout. It does not own the writer:
// Close only flushes.
type IOWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewIOWriter wraps w.
func NewIOWriter(w io.Writer) *IOWriter {
	return &IOWriter{w: w}
}

// Write writes chunk as is.
func (w *IOWriter) Write(ctx context.Context, chunk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.w, chunk)
	return err
}

// WriteLine writes text followed by a newline.
func (w *IOWriter) WriteLine(ctx context.Context, text string) error {
	return w.Write(ctx, text+"\n")
}

// Flush flushes the underlying writer when it buffers.
func (w *IOWriter) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes; the wrapped writer stays open.
func (w *IOWriter) Close() error {
	return w.Flush(context.Background())
}

// IOReader adapts an io.Reader such as os.Stdin. It does not own the reader.
type IOReader struct {
	mu     sync.Mutex
	reader *bufio.Reader
	done   bool
}

// NewIOReader wraps r.
func NewIOReader(r io.Reader) *IOReader {
	return &IOReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator.
func (r *IOReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return "", io.EOF
	}
	line, err := r.reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		r.done = true
		if line == "" {
			return "", io.EOF
		}
		return strings.TrimSuffix(line, "\r"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// Close is a no-op.
func (r *IOReader) Close() error {
	return nil
}

var (
	_ shelltypes.TextWriter = (*IOWriter)(nil)
	_ shelltypes.TextReader = (*IOReader)(nil)
)
