// abort.go implements the abort signaler of an instance.

package instance

import (
	"context"
	"sync"

	"github.com/xaionaro-go/vcodecmux/logger"
)

// abortSignaler is the single piece of instance state which cancellation
// requesters may set without holding any lock. Signaling is idempotent
// and never un-done for the lifetime of the instance.
type abortSignaler struct {
	signalOnce sync.Once
	c          chan struct{}
}

func newAbortSignaler() *abortSignaler {
	return &abortSignaler{
		c: make(chan struct{}),
	}
}

func (a *abortSignaler) Chan() <-chan struct{} {
	return a.c
}

func (a *abortSignaler) Signal(ctx context.Context) {
	logger.Debugf(ctx, "Signal")
	defer func() { logger.Debugf(ctx, "/Signal") }()
	a.signalOnce.Do(func() {
		close(a.c)
	})
}

func (a *abortSignaler) IsSignaled() bool {
	select {
	case <-a.c:
		return true
	default:
		return false
	}
}

// Abort requests cancellation of whatever this instance is doing. The
// dispatcher observes it at its next suspension point; if nothing is in
// flight the instance is only marked, and the state transition happens
// on the next operation.
func (inst *Instance) Abort(ctx context.Context) {
	inst.abort.Signal(ctx)
}
