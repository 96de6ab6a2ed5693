// backend.go defines the Backend interface which abstracts the register
// programming side of the hardware.

package hw

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/vcodecmux/types"
)

// InterruptNotify is the callback invoked by the interrupt-delivery side.
// Implementations of Backend call it from their own (interrupt) execution
// context; it must never block the caller.
type InterruptNotify func(ctx context.Context, block Block, status types.InterruptStatus)

// Backend drives one piece of codec hardware. All methods that touch a
// block's registers are called only while the caller holds that block's
// arbiter lock.
type Backend interface {
	fmt.Stringer

	// Program submits one unit of work to the hardware block. It returns
	// as soon as the hardware is triggered; completion is signaled
	// asynchronously through the InterruptNotify callback.
	Program(ctx context.Context, block Block, job Job) error

	// ReadResult reads back the result registers after a completion
	// interrupt was delivered for the last programmed job.
	ReadResult(ctx context.Context, block Block) (Result, error)

	// Stop cleanly stops an in-flight operation, if the hardware supports
	// it. Returns ErrNotImplemented otherwise, in which case the caller
	// has to wait out the in-flight interrupt instead.
	Stop(ctx context.Context, block Block) error

	// Reset fully resets the hardware block. Called after a timeout or a
	// fault, before the block's lock is released, so that the next owner
	// does not inherit a wedged device.
	Reset(ctx context.Context, block Block) error
}

// Result is what the hardware reports through its result registers once
// a unit of work completed.
type Result struct {
	BytesProduced uint64
	PicInfo       *types.PicInfo
}
