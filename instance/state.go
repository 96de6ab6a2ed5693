// state.go enforces the lifecycle state machine of an instance.

package instance

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/xsync"
)

// State returns the current lifecycle state.
func (inst *Instance) State(ctx context.Context) types.State {
	return xsync.DoR1(ctx, &inst.locker, func() types.State {
		return inst.state
	})
}

// SetState performs the transition to `to`, failing with ErrInvalidState
// (and leaving the state unchanged) if the transition is not legal.
func (inst *Instance) SetState(ctx context.Context, to types.State) error {
	return xsync.DoR1(ctx, &inst.locker, func() error {
		return inst.setStateLocked(ctx, to)
	})
}

func (inst *Instance) setStateLocked(ctx context.Context, to types.State) error {
	if !inst.state.CanTransitionTo(to) {
		return ErrInvalidState{From: inst.state, To: to}
	}
	logger.Debugf(ctx, "state transition: %s -> %s", inst.state, to)
	inst.state = to
	return nil
}

// CompareAndSetState transitions to `to` only if the current state is
// `from`; reports whether it did.
func (inst *Instance) CompareAndSetState(ctx context.Context, from, to types.State) bool {
	return xsync.DoR1(ctx, &inst.locker, func() bool {
		if inst.state != from {
			return false
		}
		return inst.setStateLocked(ctx, to) == nil
	})
}
