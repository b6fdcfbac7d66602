// Package builtin provides the built-in commands of pipeshell.
// Each command registers itself with commands.GlobalRegistry during package
// initialization, so importing the package for side effects is enough to make them
// available to the interpreter.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// stdinName names standard input in file argument lists.
const stdinName = "-"

// forEachInput calls fn once per file argument, or once with stdin when there are none.
// Unreadable files are reported on stderr as "<command>: <file>: <reason>" and skipped;
// the returned code is then RuntimeError. An error from fn aborts the loop.
func forEachInput(ctx context.Context, ec *shelltypes.ExecutionContext, command string, files []string, fn func(name string, r shelltypes.TextReader) error) (shelltypes.ExitCode, error) {
	if len(files) == 0 {
		return shelltypes.ExitSuccess, fn(stdinName, ec.Stdin)
	}

	code := shelltypes.ExitSuccess
	for _, file := range files {
		if file == stdinName {
			if err := fn(file, ec.Stdin); err != nil {
				return shelltypes.ExitRuntimeError, err
			}
			continue
		}

		r, err := openInput(ec, file)
		if err != nil {
			if werr := ec.Stderr.WriteLine(ctx, fmt.Sprintf("%s: %s: %s", command, file, err)); werr != nil {
				return shelltypes.ExitRuntimeError, werr
			}
			code = shelltypes.ExitRuntimeError
			continue
		}

		err = fn(file, r)
		closeErr := r.Close()
		if err != nil {
			return shelltypes.ExitRuntimeError, err
		}
		if closeErr != nil {
			return shelltypes.ExitRuntimeError, closeErr
		}
	}
	return code, nil
}

// openInput opens a file argument relative to the working directory.
func openInput(ec *shelltypes.ExecutionContext, file string) (*stream.FileReader, error) {
	path := ec.ResolvePath(file)
	info, err := ec.Fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("no such file")
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("is a directory")
	}
	return stream.OpenFileReader(ec.Fs, path)
}

// ignoreEOF maps the end of a stream to a nil error.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// runtimeFailure reports message on stderr and classifies the run as RuntimeError.
func runtimeFailure(ctx context.Context, ec *shelltypes.ExecutionContext, message string) (shelltypes.ExitCode, error) {
	return failWith(ctx, ec, shelltypes.ExitRuntimeError, message)
}

// usageFailure reports message on stderr and classifies the run as UsageError.
func usageFailure(ctx context.Context, ec *shelltypes.ExecutionContext, message string) (shelltypes.ExitCode, error) {
	return failWith(ctx, ec, shelltypes.ExitUsageError, message)
}

func failWith(ctx context.Context, ec *shelltypes.ExecutionContext, code shelltypes.ExitCode, message string) (shelltypes.ExitCode, error) {
	if err := ec.Stderr.WriteLine(ctx, message); err != nil {
		return shelltypes.ExitRuntimeError, err
	}
	return code, nil
}
