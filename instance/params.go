// params.go manages the pending encode-parameter changes of an encoder
// instance.

package instance

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/xsync"
)

// AccumulateParams merges a parameter change into the pending bitset.
// The change is applied to the next submitted unit of work.
func (inst *Instance) AccumulateParams(
	ctx context.Context,
	change types.ParamChange,
	params types.EncParams,
) {
	logger.Debugf(ctx, "AccumulateParams(%s)", change)
	inst.locker.Do(ctx, func() {
		inst.paramChange |= change
		inst.encParams = params
	})
}

// TakeParams returns the accumulated parameter change together with the
// parameters themselves, and clears the pending bitset.
func (inst *Instance) TakeParams(
	ctx context.Context,
) (types.ParamChange, types.EncParams) {
	return xsync.DoR2(ctx, &inst.locker, func() (types.ParamChange, types.EncParams) {
		change := inst.paramChange
		inst.paramChange = types.ParamChangeNone
		return change, inst.encParams
	})
}

// EncParams returns the current encoding parameters.
func (inst *Instance) EncParams(ctx context.Context) types.EncParams {
	return xsync.DoR1(ctx, &inst.locker, func() types.EncParams {
		return inst.encParams
	})
}
