// Package shelltypes defines the contracts shared between the interpreter core and the
// commands it runs. This file contains the line-oriented stream contracts.
package shelltypes

import "context"

// TextReader produces a lazy, forward-only, finite sequence of lines.
// ReadLine returns io.EOF once the sequence is exhausted; a reader cannot be restarted.
type TextReader interface {
	ReadLine(ctx context.Context) (string, error)
	Close() error
}

// TextWriter accepts whole lines or partial chunks. A trailing chunk without a line
// terminator is held until the next write completes it or Flush promotes it to a line.
type TextWriter interface {
	// Write appends a chunk; embedded newlines terminate lines.
	Write(ctx context.Context, chunk string) error
	// WriteLine terminates the pending fragment (if any) with text and a newline.
	WriteLine(ctx context.Context, text string) error
	// Flush promotes a non-empty pending fragment to a line and pushes buffered data.
	Flush(ctx context.Context) error
	Close() error
}
