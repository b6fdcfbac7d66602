package execution

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// RandomRunIDs returns a generator of random UUIDs.
func RandomRunIDs() func() string {
	return uuid.NewString
}

// SequentialRunIDs returns a generator of UUID-shaped, counter-based IDs for
// reproducible logs in test mode.
func SequentialRunIDs() func() string {
	var counter atomic.Uint64
	return func() string {
		return fmt.Sprintf("00000000-0000-4000-8000-%012x", counter.Add(1))
	}
}
