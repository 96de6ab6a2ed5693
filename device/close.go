// close.go implements the teardown operations.

package device

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/xcontext"
)

// Flush drains the instance: Running -> Flush -> Finish. With the
// per-instance work gate entered there is no in-flight unit left, so the
// drain completes immediately.
func (d *Device) Flush(
	ctx context.Context,
	h Handle,
) (_err error) {
	ctx = d.ctxWithHandle(ctx, h)
	logger.Debugf(ctx, "Flush")
	defer func() { logger.Debugf(ctx, "/Flush: %v", _err) }()

	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	if err := inst.BeginWork(ctx); err != nil {
		return err
	}
	defer inst.EndWork()

	if err := inst.SetState(ctx, types.StateFlush); err != nil {
		return err
	}
	return inst.SetState(ctx, types.StateFinish)
}

// Close waits for any in-flight dispatcher operation to reach a terminal
// state (it never preempts one), forces the remaining transitions down
// to StateDeinit and frees the slot. Double-close fails with
// instance.ErrInvalidSlot.
func (d *Device) Close(
	ctx context.Context,
	h Handle,
) (_err error) {
	ctx = d.ctxWithHandle(ctx, h)
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()

	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}

	// an in-flight operation is bounded by the interrupt wait timeout,
	// so this wait is bounded, too; and the teardown must not die with
	// the caller's context mid-way
	ctx = xcontext.DetachDone(ctx)
	if err := inst.BeginWork(ctx); err != nil {
		return err
	}
	defer inst.EndWork()

	for {
		st := inst.State(ctx)
		if st == types.StateDeinit {
			break
		}
		if err := inst.SetState(ctx, closeStep(st)); err != nil {
			return err
		}
	}
	return d.table.Remove(ctx, int(h))
}

// closeStep returns the next transition on the way from `st` down to
// StateDeinit.
func closeStep(st types.State) types.State {
	switch st {
	case types.StateRunning, types.StateResolutionChange:
		return types.StateFlush
	case types.StateFlush:
		return types.StateDeinit
	default:
		// Created, Init, Config, Header, Finish, Error, Abort
		return types.StateDeinit
	}
}

// Shutdown tears down every active instance. The device holds no other
// resources: all state is process-lifetime only.
func (d *Device) Shutdown(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Shutdown")
	defer func() { logger.Debugf(ctx, "/Shutdown: %v", _err) }()

	var firstErr error
	for _, slot := range d.table.Occupied(ctx) {
		if err := d.Close(ctx, Handle(slot)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
