package stream

import (
	"context"
	"io"

	"pipeshell/pkg/shelltypes"
)

// EmptyReader is a reader with no lines, used as the first stage's stdin.
type EmptyReader struct{}

// NewEmptyReader returns an empty reader.
func NewEmptyReader() EmptyReader {
	return EmptyReader{}
}

// ReadLine always reports io.EOF.
func (EmptyReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close is a no-op.
func (EmptyReader) Close() error {
	return nil
}

var _ shelltypes.TextReader = EmptyReader{}
