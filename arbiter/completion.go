// completion.go implements the interrupt completion channel of one
// hardware block.

package arbiter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

// completion correlates one delivered interrupt with the one task
// currently waiting for it. A fresh channel is armed per submission, so
// a signal belonging to a previous (timed-out or aborted) submission can
// never be misattributed to a new waiter.
type completion struct {
	armed   *chan types.InterruptStatus
	dropped atomic.Uint64
}

func (c *completion) arm() {
	ch := make(chan types.InterruptStatus, 1)
	xatomic.StorePointer(&c.armed, types.Ptr(ch))
}

func (c *completion) disarm() {
	xatomic.StorePointer(&c.armed, (*chan types.InterruptStatus)(nil))
}

// deliver records the status into the armed channel. Never blocks: with
// no waiter armed, or with the waiter already signaled, the status is
// dropped (the hardware was programmed to idle, or this is a double
// interrupt).
func (c *completion) deliver(
	ctx context.Context,
	block hw.Block,
	status types.InterruptStatus,
) {
	chPtr := xatomic.LoadPointer(&c.armed)
	if chPtr == nil {
		c.dropped.Add(1)
		logger.Debugf(ctx, "interrupt on %s with nobody waiting, dropping: %s", block, status)
		return
	}
	select {
	case *chPtr <- status:
		logger.Tracef(ctx, "interrupt on %s: %s", block, status)
	default:
		c.dropped.Add(1)
		logger.Errorf(ctx, "double interrupt on %s, dropping: %s", block, status)
	}
}

func (c *completion) wait(
	ctx context.Context,
	timeout time.Duration,
	abortCh <-chan struct{},
) (types.InterruptStatus, error) {
	chPtr := xatomic.LoadPointer(&c.armed)
	if chPtr == nil {
		return 0, ErrNotArmed{}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case status := <-*chPtr:
		return status, nil
	case <-timer.C:
		return 0, ErrTimeout{Timeout: timeout}
	case <-abortCh:
		return 0, ErrAborted{}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
