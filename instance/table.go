// table.go implements the fixed-capacity registry of active instances.

package instance

import (
	"context"
	"math/bits"

	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/xsync"
)

// MaxInstances is the amount of slots: how many sessions may be open at
// the same time.
const MaxInstances = 32

// Table maps slots to active instances. A slot's occupancy bit is set
// iff the slot holds a live instance; the count always equals the bit
// cardinality and never exceeds MaxInstances.
//
// The table itself never touches the hardware.
type Table struct {
	locker    xsync.Mutex
	slots     [MaxInstances]*Instance
	occupancy uint32
	count     int
}

func NewTable() *Table {
	return &Table{}
}

// Open finds the lowest-numbered free slot and constructs an Instance in
// StateCreated there. Fails with ErrNoFreeSlot when all slots are taken.
func (t *Table) Open(
	ctx context.Context,
	instanceType types.InstanceType,
) (_ *Instance, _err error) {
	logger.Debugf(ctx, "Open(%s)", instanceType)
	defer func() { logger.Debugf(ctx, "/Open(%s): %v", instanceType, _err) }()
	return xsync.DoR2(ctx, &t.locker, func() (*Instance, error) {
		if t.count >= MaxInstances {
			return nil, ErrNoFreeSlot{}
		}
		slot := bits.TrailingZeros32(^t.occupancy)
		t.assertLocked(ctx, slot < MaxInstances, "no free bit while count < MaxInstances")

		inst := newInstance(slot, instanceType)
		t.slots[slot] = inst
		t.occupancy |= 1 << slot
		t.count++
		return inst, nil
	})
}

// Remove frees the slot. The caller (the device teardown path) is
// responsible for having driven the instance to StateDeinit first;
// removing a slot in any other state is an invariant violation.
func (t *Table) Remove(ctx context.Context, slot int) (_err error) {
	logger.Debugf(ctx, "Remove(%d)", slot)
	defer func() { logger.Debugf(ctx, "/Remove(%d): %v", slot, _err) }()
	return xsync.DoR1(ctx, &t.locker, func() error {
		if slot < 0 || slot >= MaxInstances || t.slots[slot] == nil {
			return ErrInvalidSlot{Slot: slot}
		}
		inst := t.slots[slot]
		if st := inst.State(ctx); st != types.StateDeinit {
			return ErrInvalidState{From: st, To: types.StateFree}
		}
		t.slots[slot] = nil
		t.occupancy &^= 1 << slot
		t.count--
		t.assertLocked(ctx, t.count >= 0, "negative instance count")
		t.assertLocked(ctx, bits.OnesCount32(t.occupancy) == t.count, "occupancy desynced from count")
		return nil
	})
}

// Lookup resolves a slot to its instance; used among others by interrupt
// handling to find which instance is current on a hardware block.
func (t *Table) Lookup(ctx context.Context, slot int) (*Instance, error) {
	return xsync.DoR2(ctx, &t.locker, func() (*Instance, error) {
		if slot < 0 || slot >= MaxInstances || t.slots[slot] == nil {
			return nil, ErrInvalidSlot{Slot: slot}
		}
		return t.slots[slot], nil
	})
}

// Count returns the amount of active instances.
func (t *Table) Count(ctx context.Context) int {
	return xsync.DoR1(ctx, &t.locker, func() int {
		return t.count
	})
}

// Occupied returns the slots currently holding live instances.
func (t *Table) Occupied(ctx context.Context) []int {
	return xsync.DoR1(ctx, &t.locker, func() []int {
		var result []int
		for slot := 0; slot < MaxInstances; slot++ {
			if t.occupancy&(1<<slot) != 0 {
				result = append(result, slot)
			}
		}
		return result
	})
}

func (t *Table) assertLocked(ctx context.Context, mustBeTrue bool, extraArgs ...any) {
	if mustBeTrue {
		return
	}
	logger.Panic(ctx, "assertion failed", extraArgs)
}
