// lock.go implements the FIFO-fair mutual exclusion over one hardware
// block.

package arbiter

import (
	"context"

	"github.com/xaionaro-go/xsync"
)

// fifoLock is a mutex with strict FIFO handoff: waiters are granted
// ownership in the order they called acquire, so no instance can starve
// another one off the hardware.
type fifoLock struct {
	locker  xsync.Mutex
	held    bool
	waiters []chan struct{}
}

func (l *fifoLock) acquire(
	ctx context.Context,
	abortCh <-chan struct{},
) error {
	// fast path: abort already requested
	select {
	case <-abortCh:
		return ErrAborted{}
	default:
	}

	var ch chan struct{}
	granted := false
	l.locker.Do(ctx, func() {
		if !l.held {
			l.held = true
			granted = true
			return
		}
		ch = make(chan struct{})
		l.waiters = append(l.waiters, ch)
	})
	if granted {
		return nil
	}

	select {
	case <-ch:
		// ownership was handed off to us; `held` stays true
		return nil
	case <-ctx.Done():
		l.abandon(ctx, ch)
		return ctx.Err()
	case <-abortCh:
		l.abandon(ctx, ch)
		return ErrAborted{}
	}
}

// abandon removes a cancelled waiter from the queue. If the handoff
// already happened concurrently, the ownership we just received is
// passed on instead.
func (l *fifoLock) abandon(ctx context.Context, ch chan struct{}) {
	l.locker.Do(ctx, func() {
		for idx, waiter := range l.waiters {
			if waiter == ch {
				l.waiters = append(l.waiters[:idx], l.waiters[idx+1:]...)
				return
			}
		}
		l.releaseLocked()
	})
}

func (l *fifoLock) release(ctx context.Context) {
	l.locker.Do(ctx, func() {
		l.releaseLocked()
	})
}

func (l *fifoLock) releaseLocked() {
	if len(l.waiters) == 0 {
		l.held = false
		return
	}
	next := l.waiters[0]
	l.waiters = l.waiters[1:]
	close(next)
}
