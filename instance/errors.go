package instance

import (
	"fmt"

	"github.com/xaionaro-go/vcodecmux/types"
)

// ErrNoFreeSlot: all instance slots are occupied.
type ErrNoFreeSlot struct{}

func (e ErrNoFreeSlot) Error() string {
	return fmt.Sprintf("all %d instance slots are occupied", MaxInstances)
}

// ErrInvalidSlot: the slot does not hold a live instance.
type ErrInvalidSlot struct {
	Slot int
}

func (e ErrInvalidSlot) Error() string {
	return fmt.Sprintf("slot %d does not hold a live instance", e.Slot)
}

// ErrInvalidState: the requested state transition is not legal. The
// instance's state is left unchanged.
type ErrInvalidState struct {
	From types.State
	To   types.State
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("state transition %s -> %s is not legal", e.From, e.To)
}

// ErrStateForbidden: the operation is not permitted in the instance's
// current state.
type ErrStateForbidden struct {
	State     types.State
	Operation string
}

func (e ErrStateForbidden) Error() string {
	return fmt.Sprintf("operation %q is not permitted in state %s", e.Operation, e.State)
}
