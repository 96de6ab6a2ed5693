// guard.go implements the scoped ownership token of one hardware block.

package arbiter

import (
	"context"
	"sync"
	"time"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

// Guard is the ownership token of a hardware block. Only the Guard owner
// may program the block and consume its completion channel. Release is
// idempotent and expected to be deferred, so the lock is relinquished on
// every exit path.
type Guard struct {
	arbiter     *Arbiter
	releaseOnce sync.Once
}

// Arm prepares the completion channel for the next submission. Must be
// called before the hardware is triggered, otherwise the interrupt may
// arrive with nobody waiting and get dropped.
func (g *Guard) Arm() {
	g.arbiter.completion.arm()
}

// WaitInterrupt blocks until the armed interrupt is delivered, the
// timeout elapses, the abort channel fires or the context is cancelled.
//
// The delivered status is returned as-is, whatever its bits: with one
// owner per block and a fresh channel armed per submission, any signal
// landing here belongs to this submission by construction, so there is
// no expected-status filter here; classification is the caller's
// business.
func (g *Guard) WaitInterrupt(
	ctx context.Context,
	timeout time.Duration,
	abortCh <-chan struct{},
) (_ types.InterruptStatus, _err error) {
	logger.Tracef(ctx, "WaitInterrupt[%s]", g.arbiter.Block)
	defer func() { logger.Tracef(ctx, "/WaitInterrupt[%s]: %v", g.arbiter.Block, _err) }()
	return g.arbiter.completion.wait(ctx, timeout, abortCh)
}

// Release disarms the completion channel and hands the block over to the
// next waiter (in FIFO order), if any.
func (g *Guard) Release(ctx context.Context) {
	g.releaseOnce.Do(func() {
		logger.Tracef(ctx, "Release[%s]", g.arbiter.Block)
		g.arbiter.completion.disarm()
		g.arbiter.lock.release(ctx)
	})
}
