// gate.go implements the single-entry work gate of an instance.

package instance

import (
	"context"
)

// Exactly one unit of work per instance may be in flight at a time: the
// instance's bookkeeping is not safe for concurrent mutation. The gate
// is a one-slot semaphore; Submit try-enters it, teardown enters it
// blocking to wait out whatever is in flight.

// TryBeginWork enters the gate without blocking; reports whether it
// succeeded. Every successful call must be paired with EndWork.
func (inst *Instance) TryBeginWork() bool {
	select {
	case inst.gate <- struct{}{}:
		return true
	default:
		return false
	}
}

// BeginWork enters the gate, waiting for any in-flight unit of work to
// finish first.
func (inst *Instance) BeginWork(ctx context.Context) error {
	select {
	case inst.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EndWork leaves the gate.
func (inst *Instance) EndWork() {
	select {
	case <-inst.gate:
	default:
		panic("EndWork without a matching BeginWork")
	}
}
