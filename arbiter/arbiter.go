// arbiter.go ties together the FIFO lock and the interrupt completion
// channel of one hardware block.

// Package arbiter serializes hardware access across codec instances: one
// FIFO-fair lock per physical block, plus the completion channel which
// correlates asynchronous interrupt delivery with the current lock holder.
package arbiter

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

// Arbiter guards one hardware block. At most one instance holds the
// Guard at a time; waiters are served in request order.
type Arbiter struct {
	Block      hw.Block
	lock       fifoLock
	completion completion
}

func New(block hw.Block) *Arbiter {
	return &Arbiter{
		Block: block,
	}
}

func (a *Arbiter) String() string {
	return "Arbiter(" + a.Block.String() + ")"
}

// Acquire blocks until the calling task owns the block. abortCh (may be
// nil) unblocks the wait early with ErrAborted; the context unblocks it
// with the context's error.
func (a *Arbiter) Acquire(
	ctx context.Context,
	abortCh <-chan struct{},
) (_ *Guard, _err error) {
	logger.Tracef(ctx, "Acquire[%s]", a.Block)
	defer func() { logger.Tracef(ctx, "/Acquire[%s]: %v", a.Block, _err) }()
	if err := a.lock.acquire(ctx, abortCh); err != nil {
		return nil, err
	}
	return &Guard{arbiter: a}, nil
}

// Deliver is the interrupt ingress: it records the status and wakes the
// currently armed waiter, if any. It never blocks and is safe to call
// from the interrupt execution context.
func (a *Arbiter) Deliver(ctx context.Context, status types.InterruptStatus) {
	a.completion.deliver(ctx, a.Block, status)
}

// DroppedInterrupts reports how many interrupts arrived with no armed
// waiter (or with the waiter already signaled) and were dropped.
func (a *Arbiter) DroppedInterrupts() uint64 {
	return a.completion.dropped.Load()
}
