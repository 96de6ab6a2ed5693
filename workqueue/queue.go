// queue.go defines the boundary to the buffer-queue collaborator.

// Package workqueue abstracts the streaming framework which supplies
// pending units of work and receives their outcomes. The engine only
// pulls one unit at a time and pushes one outcome back; buffer memory
// layout is entirely the collaborator's business.
package workqueue

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/types"
)

// Queue is the per-instance queue of pending work.
type Queue interface {
	// Pull blocks until a unit of work is pending and returns it.
	// Returns io.EOF when the queue is closed and drained.
	Pull(ctx context.Context) (types.Unit, error)

	// Push returns the outcome of a completed unit upstream.
	Push(ctx context.Context, outcome types.Outcome) error
}
