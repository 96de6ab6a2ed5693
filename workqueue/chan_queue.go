// chan_queue.go provides the channel-backed Queue implementation.

package workqueue

import (
	"context"
	"io"

	"github.com/xaionaro-go/vcodecmux/types"
)

// ChanQueue is a Queue backed by buffered channels. It is what the tests
// and the demo binary use in place of a real streaming framework.
type ChanQueue struct {
	units    chan types.Unit
	outcomes chan types.Outcome
}

var _ Queue = (*ChanQueue)(nil)

func NewChanQueue(capacity uint) *ChanQueue {
	return &ChanQueue{
		units:    make(chan types.Unit, capacity),
		outcomes: make(chan types.Outcome, capacity),
	}
}

// Enqueue adds a pending unit of work.
func (q *ChanQueue) Enqueue(ctx context.Context, unit types.Unit) error {
	select {
	case q.units <- unit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseInput signals that no more units will be enqueued.
func (q *ChanQueue) CloseInput() {
	close(q.units)
}

// Outcomes exposes the stream of completed results.
func (q *ChanQueue) Outcomes() <-chan types.Outcome {
	return q.outcomes
}

func (q *ChanQueue) Pull(ctx context.Context) (types.Unit, error) {
	select {
	case unit, ok := <-q.units:
		if !ok {
			return types.Unit{}, io.EOF
		}
		return unit, nil
	case <-ctx.Done():
		return types.Unit{}, ctx.Err()
	}
}

func (q *ChanQueue) Push(ctx context.Context, outcome types.Outcome) error {
	select {
	case q.outcomes <- outcome:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
