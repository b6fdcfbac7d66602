// Package execution runs bound pipelines. Each stage moves through a small state machine:
// check cancellation, resolve stdin, resolve stdout, build the execution context, invoke
// the command, then hand its output to the next stage.
package execution

// State represents where the current stage is in the execution state machine.
type State int

const (
	// StateCheckingCancellation - Stage start: abort if the run was cancelled
	StateCheckingCancellation State = iota
	// StateResolvingStdin - Opening a redirected input or reusing the previous stage's output
	StateResolvingStdin
	// StateResolvingStdout - Opening a redirected output, the external sink or a buffer
	StateResolvingStdout
	// StateBuildingContext - Assembling the ExecutionContext the command sees
	StateBuildingContext
	// StateInvoking - Running the bound command
	StateInvoking
	// StateHandingOff - Releasing stage resources and passing output to the next stage
	StateHandingOff
	// StateCompleted - Every stage succeeded
	StateCompleted
	// StateFailed - A stage reported a non-success classification
	StateFailed
	// StateCancelled - The run was cancelled; the cancellation propagates to the caller
	StateCancelled
)

// String returns a human-readable representation of the execution state.
func (s State) String() string {
	switch s {
	case StateCheckingCancellation:
		return "CheckingCancellation"
	case StateResolvingStdin:
		return "ResolvingStdin"
	case StateResolvingStdout:
		return "ResolvingStdout"
	case StateBuildingContext:
		return "BuildingContext"
	case StateInvoking:
		return "Invoking"
	case StateHandingOff:
		return "HandingOff"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the run ends in this state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}
