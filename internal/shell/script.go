package shell

import (
	"context"
	"strings"

	"pipeshell/internal/logger"
	"pipeshell/internal/stream"
	"pipeshell/pkg/shelltypes"
)

// commentPrefix starts a script line that is not executed.
const commentPrefix = "#"

// RunScript executes script line by line, skipping blank lines and comments.
// It stops at the first line that does not succeed unless continueOnError is set, and
// returns that line's result; with continueOnError the last failure is returned.
// Cancellation stops the script and is returned as the error; the result is then
// meaningless.
func RunScript(ctx context.Context, interp *Interpreter, script shelltypes.TextReader, continueOnError bool) (shelltypes.ExecutionResult, error) {
	result := shelltypes.Result(shelltypes.ExitSuccess)
	number := 0
	for line, err := range stream.Lines(ctx, script) {
		if err != nil {
			return shelltypes.ExecutionResult{}, err
		}
		number++

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}

		lineResult, err := interp.Execute(ctx, line)
		if err != nil {
			return lineResult, err
		}
		if lineResult.Success() {
			continue
		}

		logger.Debug("Script line failed", "line", number, "code", lineResult.Code)
		result = lineResult
		if !continueOnError {
			return result, nil
		}
	}
	return result, nil
}
