package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"pipeshell/pkg/shelltypes"
)

// ErrClosed is returned when writing to a closed writer.
var ErrClosed = errors.New("stream closed")

// Lines adapts a reader to a range-over-func sequence. Iteration stops after the last
// line or after yielding the first error.
//
//	for line, err := range stream.Lines(ctx, ec.Stdin) { ... }
func Lines(ctx context.Context, r shelltypes.TextReader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := r.ReadLine(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// ReadAll drains r.
func ReadAll(ctx context.Context, r shelltypes.TextReader) ([]string, error) {
	var lines []string
	for line, err := range Lines(ctx, r) {
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Printf formats a chunk and writes it to w.
func Printf(ctx context.Context, w shelltypes.TextWriter, format string, args ...any) error {
	return w.Write(ctx, fmt.Sprintf(format, args...))
}

// Println formats its operands like fmt.Sprint and writes them as one line.
func Println(ctx context.Context, w shelltypes.TextWriter, args ...any) error {
	return w.WriteLine(ctx, fmt.Sprint(args...))
}
