package workqueue

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/vcodecmux/types"
)

func TestChanQueuePullAfterCloseInput(t *testing.T) {
	ctx := context.Background()
	q := NewChanQueue(2)

	require.NoError(t, q.Enqueue(ctx, types.Unit{Payload: []byte{0x1}}))
	q.CloseInput()

	unit, err := q.Pull(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{0x1}, unit.Payload)

	_, err = q.Pull(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestChanQueueRespectsContext(t *testing.T) {
	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	q := NewChanQueue(0)

	_, err := q.Pull(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, q.Enqueue(ctx, types.Unit{}), context.Canceled)
	require.ErrorIs(t, q.Push(ctx, types.Outcome{}), context.Canceled)
}
