// submit.go implements the work submission operations.

package device

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

// Submit performs one decode or encode step for the instance; see
// dispatcher.Dispatcher.Submit for the semantics.
func (d *Device) Submit(
	ctx context.Context,
	h Handle,
	unit types.Unit,
) (*types.Outcome, error) {
	ctx = d.ctxWithHandle(ctx, h)
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return nil, err
	}
	return d.dispatcher.Submit(ctx, inst, unit)
}

// ProcessNext pulls one pending unit from the instance's attached queue,
// submits it, and pushes the outcome back into the queue.
func (d *Device) ProcessNext(
	ctx context.Context,
	h Handle,
) (_err error) {
	ctx = d.ctxWithHandle(ctx, h)
	logger.Tracef(ctx, "ProcessNext")
	defer func() { logger.Tracef(ctx, "/ProcessNext: %v", _err) }()

	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	q := inst.Queue(ctx)
	if q == nil {
		return fmt.Errorf("no work queue is attached to slot %d", inst.Slot)
	}
	unit, err := q.Pull(ctx)
	if err != nil {
		return err
	}
	outcome, err := d.dispatcher.Submit(ctx, inst, unit)
	if err != nil {
		return err
	}
	return q.Push(ctx, *outcome)
}

// RequestAbort requests cancellation of whatever the instance is doing.
// Idempotent. A dispatcher operation blocked on a suspension point
// observes it within its polling bound; with nothing in flight the
// instance transitions to StateAbort right away.
func (d *Device) RequestAbort(
	ctx context.Context,
	h Handle,
) (_err error) {
	ctx = d.ctxWithHandle(ctx, h)
	logger.Debugf(ctx, "RequestAbort")
	defer func() { logger.Debugf(ctx, "/RequestAbort: %v", _err) }()

	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	inst.Abort(ctx)
	if inst.TryBeginWork() {
		defer inst.EndWork()
		if st := inst.State(ctx); !st.IsTerminal() {
			if err := inst.SetState(ctx, types.StateAbort); err != nil {
				logger.Errorf(ctx, "unable to transition to the abort state: %v", err)
			}
		}
	}
	return nil
}

// QueryState returns the instance's lifecycle state.
func (d *Device) QueryState(ctx context.Context, h Handle) (types.State, error) {
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return types.StateFree, err
	}
	return inst.State(ctx), nil
}

// Statistics returns a snapshot of the instance's processing counters.
func (d *Device) Statistics(ctx context.Context, h Handle) (types.Statistics, error) {
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return types.Statistics{}, err
	}
	return inst.Stats.ToStats(), nil
}

// AggregateStatistics sums the processing counters over all active
// instances.
func (d *Device) AggregateStatistics(ctx context.Context) types.Statistics {
	var total types.Statistics
	for _, slot := range d.table.Occupied(ctx) {
		inst, err := d.table.Lookup(ctx, slot)
		if err != nil {
			continue
		}
		total.Add(inst.Stats.ToStats())
	}
	return total
}

// PicInfo returns the last picture metadata the hardware reported for
// the instance (nil if no header was parsed yet).
func (d *Device) PicInfo(ctx context.Context, h Handle) (*types.PicInfo, error) {
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return nil, err
	}
	return inst.PicInfo(), nil
}
