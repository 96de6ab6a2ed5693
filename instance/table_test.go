package instance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/vcodecmux/types"
)

func TestTableCapacity(t *testing.T) {
	ctx := context.Background()
	table := NewTable()

	for i := 0; i < MaxInstances; i++ {
		inst, err := table.Open(ctx, types.InstanceTypeDecoder)
		require.NoError(t, err)
		require.Equal(t, i, inst.Slot)
		require.Equal(t, types.StateCreated, inst.State(ctx))
	}
	require.Equal(t, MaxInstances, table.Count(ctx))

	_, err := table.Open(ctx, types.InstanceTypeDecoder)
	require.ErrorAs(t, err, &ErrNoFreeSlot{})
	require.Equal(t, MaxInstances, table.Count(ctx))
}

func TestTableLowestSlotReuse(t *testing.T) {
	ctx := context.Background()
	table := NewTable()

	for i := 0; i < 3; i++ {
		_, err := table.Open(ctx, types.InstanceTypeDecoder)
		require.NoError(t, err)
	}

	inst, err := table.Lookup(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, inst.SetState(ctx, types.StateDeinit))
	require.NoError(t, table.Remove(ctx, 1))
	require.Equal(t, 2, table.Count(ctx))
	require.Equal(t, []int{0, 2}, table.Occupied(ctx))

	reopened, err := table.Open(ctx, types.InstanceTypeEncoder)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Slot)
}

func TestTableRemove(t *testing.T) {
	ctx := context.Background()
	table := NewTable()

	inst, err := table.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)

	t.Run("not_deinit_yet", func(t *testing.T) {
		err := table.Remove(ctx, inst.Slot)
		require.ErrorAs(t, err, &ErrInvalidState{})
	})

	require.NoError(t, inst.SetState(ctx, types.StateDeinit))
	require.NoError(t, table.Remove(ctx, inst.Slot))

	t.Run("double_remove", func(t *testing.T) {
		err := table.Remove(ctx, inst.Slot)
		require.ErrorAs(t, err, &ErrInvalidSlot{})
	})

	t.Run("never_occupied", func(t *testing.T) {
		err := table.Remove(ctx, MaxInstances-1)
		require.ErrorAs(t, err, &ErrInvalidSlot{})
		_, err = table.Lookup(ctx, -1)
		require.ErrorAs(t, err, &ErrInvalidSlot{})
	})
}
