// open.go implements the session setup operations.

package device

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/instance"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/vcodecmux/workqueue"
)

// Open occupies the lowest-numbered free slot with a new instance of the
// given type. Fails with instance.ErrNoFreeSlot when all slots are taken.
func (d *Device) Open(
	ctx context.Context,
	instanceType types.InstanceType,
) (_ Handle, _err error) {
	logger.Debugf(ctx, "Open(%s)", instanceType)
	defer func() { logger.Debugf(ctx, "/Open(%s): %v", instanceType, _err) }()
	inst, err := d.table.Open(ctx, instanceType)
	if err != nil {
		return -1, err
	}
	return Handle(inst.Slot), nil
}

// Configure performs the initial parameter setup: Created -> Init, and
// additionally Init -> Config for encoders (the encoder configuration
// state). For decoders `encParams` is ignored.
func (d *Device) Configure(
	ctx context.Context,
	h Handle,
	encParams types.EncParams,
) (_err error) {
	ctx = d.ctxWithHandle(ctx, h)
	logger.Debugf(ctx, "Configure")
	defer func() { logger.Debugf(ctx, "/Configure: %v", _err) }()

	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	if err := inst.BeginWork(ctx); err != nil {
		return err
	}
	defer inst.EndWork()

	if err := inst.SetState(ctx, types.StateInit); err != nil {
		return err
	}
	if inst.Type == types.InstanceTypeEncoder {
		inst.AccumulateParams(ctx, types.ParamChangeNone, encParams)
		if err := inst.SetState(ctx, types.StateConfig); err != nil {
			return err
		}
	}
	return nil
}

// SetParam accumulates an encode-parameter change; it is applied while
// programming the next submitted unit of work, then cleared.
func (d *Device) SetParam(
	ctx context.Context,
	h Handle,
	change types.ParamChange,
	encParams types.EncParams,
) error {
	ctx = d.ctxWithHandle(ctx, h)
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	if inst.Type != types.InstanceTypeEncoder {
		return instance.ErrStateForbidden{State: inst.State(ctx), Operation: "set_param on a decoder"}
	}
	if st := inst.State(ctx); st.IsTerminal() {
		return instance.ErrStateForbidden{State: st, Operation: "set_param"}
	}
	inst.AccumulateParams(ctx, change, encParams)
	return nil
}

// AttachQueue attaches the buffer-queue collaborator's queue of pending
// work to the instance; used by ProcessNext.
func (d *Device) AttachQueue(
	ctx context.Context,
	h Handle,
	q workqueue.Queue,
) error {
	inst, err := d.lookup(ctx, h)
	if err != nil {
		return err
	}
	inst.AttachQueue(ctx, q)
	return nil
}
