// Package shelltypes defines the contracts shared between the interpreter core and the
// commands it runs. This file contains exit classifications and execution results.
package shelltypes

import "fmt"

// ExitCode is the categorical outcome of a command or pipeline run.
type ExitCode int

const (
	// ExitSuccess is the only success classification.
	ExitSuccess ExitCode = 0
	// ExitRuntimeError reports a failure during execution.
	ExitRuntimeError ExitCode = 1
	// ExitUsageError reports a parse or bind time user error.
	ExitUsageError ExitCode = 2
	// ExitNoMatch is a domain code for search commands that found nothing.
	ExitNoMatch ExitCode = 3
)

// String returns a human-readable name for the exit code.
func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "Success"
	case ExitRuntimeError:
		return "RuntimeError"
	case ExitUsageError:
		return "UsageError"
	case ExitNoMatch:
		return "NoMatch"
	default:
		return fmt.Sprintf("ExitCode(%d)", int(c))
	}
}

// ExecutionResult carries the classification of a single pipeline run.
type ExecutionResult struct {
	Code ExitCode
}

// Success reports whether the run finished with ExitSuccess.
func (r ExecutionResult) Success() bool {
	return r.Code == ExitSuccess
}

// Result is a shorthand for building an ExecutionResult.
func Result(code ExitCode) ExecutionResult {
	return ExecutionResult{Code: code}
}
