package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"pipeshell/pkg/shelltypes"
)

// FileReader reads lines from a file it exclusively owns until Close.
type FileReader struct {
	mu     sync.Mutex
	file   afero.File
	reader *bufio.Reader
	done   bool
	closed bool
}

// OpenFileReader opens path on fs for reading.
func OpenFileReader(fs afero.Fs, path string) (*FileReader, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileReader{file: file, reader: bufio.NewReader(file)}, nil
}

// ReadLine returns the next line without its terminator. A final line without a
// newline is still returned; io.EOF follows it.
func (r *FileReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}
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
		return "", fmt.Errorf("read %s: %w", r.file.Name(), err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// Close releases the file. Only the first call closes the handle.
func (r *FileReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// FileWriter writes to a file it exclusively owns until Close.
type FileWriter struct {
	mu     sync.Mutex
	file   afero.File
	writer *bufio.Writer
	closed bool
}

// OpenFileWriter opens path on fs for writing, truncating or appending. The file is
// created if missing; its directory must exist.
func OpenFileWriter(fs afero.Fs, path string, appendMode bool) (*FileWriter, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := fs.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: file, writer: bufio.NewWriter(file)}, nil
}

// Write appends chunk as is.
func (w *FileWriter) Write(ctx context.Context, chunk string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, err := w.writer.WriteString(chunk); err != nil {
		return fmt.Errorf("write %s: %w", w.file.Name(), err)
	}
	return nil
}

// WriteLine writes text followed by a newline.
func (w *FileWriter) WriteLine(ctx context.Context, text string) error {
	return w.Write(ctx, text+"\n")
}

// Flush pushes buffered data to the file.
func (w *FileWriter) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.writer.Flush()
}

// Close flushes and releases the file. Only the first call has an effect, so a writer
// can be closed both by its owner and by a deferred cleanup.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.writer.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Name returns the path of the underlying file.
func (w *FileWriter) Name() string {
	return w.file.Name()
}

var (
	_ shelltypes.TextReader = (*FileReader)(nil)
	_ shelltypes.TextWriter = (*FileWriter)(nil)
)
