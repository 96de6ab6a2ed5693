package device_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/pkg/runtime"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/vcodecmux/device"
	"github.com/xaionaro-go/vcodecmux/dispatcher"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/hw/hwsim"
	"github.com/xaionaro-go/vcodecmux/instance"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/vcodecmux/workqueue"
)

func testCtx(t *testing.T) context.Context {
	loggerLevel := logger.LevelDebug

	runtime.DefaultCallerPCFilter = observability.CallerPCFilter(runtime.DefaultCallerPCFilter)
	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	t.Cleanup(func() { belt.Flush(ctx) })
	return ctx
}

func newTestDevice(t *testing.T, opts ...device.Option) (*device.Device, *hwsim.Simulator) {
	ctx := context.Background()
	sim := hwsim.New()
	dev := device.New(ctx, sim, opts...)
	sim.SetNotify(ctx, dev.OnInterrupt)
	return dev, sim
}

func TestDeviceDecodeEndToEnd(t *testing.T) {
	ctx := testCtx(t)
	dev, _ := newTestDevice(t)

	h, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h, types.EncParams{}))

	st, err := dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateInit, st)

	// the first unit parses the stream header
	outcome, err := dev.Submit(ctx, h, types.Unit{Payload: []byte{0x00, 0x01}})
	require.NoError(t, err)
	require.True(t, outcome.Status.Has(types.InterruptStatusSeqHeader))
	require.NotNil(t, outcome.PicInfo)

	st, err = dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateRunning, st)

	var lastFrameCount uint64
	for i := 0; i < 3; i++ {
		outcome, err := dev.Submit(ctx, h, types.Unit{Payload: []byte{0x02}})
		require.NoError(t, err)
		require.True(t, outcome.Status.Has(types.InterruptStatusFrame))
		require.Greater(t, outcome.FrameCount, lastFrameCount, "frame counts must increase")
		lastFrameCount = outcome.FrameCount
	}

	stats, err := dev.Statistics(ctx, h)
	require.NoError(t, err)
	require.EqualValues(t, 4, stats.UnitsProcessed)
	require.EqualValues(t, 1, stats.HeadersParsed)
	require.NotZero(t, stats.BytesProduced)

	require.NoError(t, dev.Flush(ctx, h))
	st, err = dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateFinish, st)

	require.NoError(t, dev.Close(ctx, h))
	require.Zero(t, dev.ActiveInstances(ctx))

	t.Run("double_close", func(t *testing.T) {
		err := dev.Close(ctx, h)
		require.ErrorAs(t, err, &instance.ErrInvalidSlot{})
	})
}

func TestDeviceNoFreeSlot(t *testing.T) {
	ctx := testCtx(t)
	dev, _ := newTestDevice(t)

	for i := 0; i < instance.MaxInstances; i++ {
		_, err := dev.Open(ctx, types.InstanceTypeDecoder)
		require.NoError(t, err)
	}
	_, err := dev.Open(ctx, types.InstanceTypeEncoder)
	require.ErrorAs(t, err, &instance.ErrNoFreeSlot{})
	require.Equal(t, instance.MaxInstances, dev.ActiveInstances(ctx))

	require.NoError(t, dev.Shutdown(ctx))
	require.Zero(t, dev.ActiveInstances(ctx))
}

func TestDeviceConcurrentInstancesOneBlock(t *testing.T) {
	ctx := testCtx(t)
	dev, _ := newTestDevice(t)

	const instanceCount = 8
	const unitCount = 5

	var wg sync.WaitGroup
	errCh := make(chan error, instanceCount*unitCount)
	for i := 0; i < instanceCount; i++ {
		h, err := dev.Open(ctx, types.InstanceTypeDecoder)
		require.NoError(t, err)
		require.NoError(t, dev.Configure(ctx, h, types.EncParams{}))

		wg.Add(1)
		go func(h device.Handle) {
			defer wg.Done()
			for j := 0; j < unitCount; j++ {
				if _, err := dev.Submit(ctx, h, types.Unit{Payload: []byte{byte(j)}}); err != nil {
					errCh <- err
					return
				}
			}
		}(h)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	total := dev.AggregateStatistics(ctx)
	require.EqualValues(t, instanceCount*unitCount, total.UnitsProcessed)
	require.EqualValues(t, instanceCount, total.HeadersParsed)

	require.NoError(t, dev.Shutdown(ctx))
}

func TestDeviceHardwareTimeout(t *testing.T) {
	ctx := testCtx(t)
	dev, sim := newTestDevice(t, device.OptionWaitTimeout(20*time.Millisecond))

	h, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h, types.EncParams{}))

	sim.SetUnresponsive(ctx, hw.BlockDecode, true)
	_, err = dev.Submit(ctx, h, types.Unit{})
	require.ErrorAs(t, err, &dispatcher.ErrHardwareTimeout{})

	st, err := dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateError, st)

	// the reset un-wedged the block: another instance can use it
	h2, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h2, types.EncParams{}))
	_, err = dev.Submit(ctx, h2, types.Unit{})
	require.NoError(t, err)

	require.NoError(t, dev.Close(ctx, h))
	require.NoError(t, dev.Close(ctx, h2))
}

func TestDeviceTimeoutDoesNotLeakInterruptToNextOwner(t *testing.T) {
	ctx := testCtx(t)
	dev, sim := newTestDevice(t, device.OptionWaitTimeout(100*time.Millisecond))

	first, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, first, types.EncParams{}))
	_, err = dev.Submit(ctx, first, types.Unit{Payload: []byte{0x0}})
	require.NoError(t, err)

	// the next unit completes only after the wait bound: its completion
	// is still in flight when the submission already timed out
	sim.SetLatency(ctx, hw.BlockDecode, 150*time.Millisecond)
	_, err = dev.Submit(ctx, first, types.Unit{Payload: []byte{0x1}})
	require.ErrorAs(t, err, &dispatcher.ErrHardwareTimeout{})

	// a fresh instance takes over the block while the timed-out job's
	// completion would still be pending; its first unit must parse its
	// own stream header, not wake on the previous owner's stale frame
	sim.SetLatency(ctx, hw.BlockDecode, 60*time.Millisecond)
	second, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, second, types.EncParams{}))
	outcome, err := dev.Submit(ctx, second, types.Unit{Payload: []byte{0x0}})
	require.NoError(t, err)
	require.True(t, outcome.Status.Has(types.InterruptStatusSeqHeader),
		"a Frame-only status proves the stale interrupt leaked through: %s", outcome.Status)
	require.NotNil(t, outcome.PicInfo)

	st, err := dev.QueryState(ctx, second)
	require.NoError(t, err)
	require.Equal(t, types.StateRunning, st)

	require.NoError(t, dev.Close(ctx, first))
	require.NoError(t, dev.Close(ctx, second))
}

func TestDeviceAbortWhileWaiting(t *testing.T) {
	ctx := testCtx(t)
	dev, sim := newTestDevice(t, device.OptionWaitTimeout(10*time.Second))

	h, err := dev.Open(ctx, types.InstanceTypeEncoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h, types.EncParams{Bitrate: 1_000_000}))

	sim.SetLatency(ctx, hw.BlockEncode, 300*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		_, err := dev.Submit(ctx, h, types.Unit{Payload: []byte{0x1}})
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, dev.RequestAbort(ctx, h))

	select {
	case err := <-errCh:
		require.ErrorAs(t, err, &dispatcher.ErrCancelled{})
	case <-time.After(time.Second):
		t.Fatal("the abort did not unblock the waiting submission")
	}

	st, err := dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateAbort, st)

	// no way back to running without a fresh open
	_, err = dev.Submit(ctx, h, types.Unit{})
	require.ErrorAs(t, err, &dispatcher.ErrCancelled{})

	require.NoError(t, dev.Close(ctx, h))
}

func TestDeviceAbortIdle(t *testing.T) {
	ctx := testCtx(t)
	dev, _ := newTestDevice(t)

	h, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.RequestAbort(ctx, h))
	require.NoError(t, dev.RequestAbort(ctx, h), "abort requests are idempotent")

	st, err := dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateAbort, st)
	require.NoError(t, dev.Close(ctx, h))
}

func TestDeviceResolutionChange(t *testing.T) {
	ctx := testCtx(t)
	dev, sim := newTestDevice(t)

	h, err := dev.Open(ctx, types.InstanceTypeDecoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h, types.EncParams{}))

	_, err = dev.Submit(ctx, h, types.Unit{Payload: []byte{0x0}}) // header
	require.NoError(t, err)

	newPicInfo := types.PicInfo{Width: 1920, Height: 1080, DPBCount: 6}
	sim.QueueResolutionChange(ctx, int(h), newPicInfo)

	outcome, err := dev.Submit(ctx, h, types.Unit{Payload: []byte{0x1}})
	require.NoError(t, err)
	require.True(t, outcome.ResolutionChanged)
	require.Equal(t, &newPicInfo, outcome.PicInfo)

	st, err := dev.QueryState(ctx, h)
	require.NoError(t, err)
	require.Equal(t, types.StateRunning, st)

	picInfo, err := dev.PicInfo(ctx, h)
	require.NoError(t, err)
	require.Equal(t, &newPicInfo, picInfo)

	require.NoError(t, dev.Close(ctx, h))
}

func TestDeviceProcessNext(t *testing.T) {
	ctx := testCtx(t)
	dev, _ := newTestDevice(t)

	h, err := dev.Open(ctx, types.InstanceTypeEncoder)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx, h, types.EncParams{Bitrate: 500_000}))

	q := workqueue.NewChanQueue(4)
	require.NoError(t, dev.AttachQueue(ctx, h, q))

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ctx, types.Unit{Payload: make([]byte, 128)}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, dev.ProcessNext(ctx, h))
	}

	for expected := uint64(1); expected <= 3; expected++ {
		select {
		case outcome := <-q.Outcomes():
			require.Equal(t, expected, outcome.FrameCount)
		default:
			t.Fatalf("outcome %d was not pushed back into the queue", expected)
		}
	}

	require.NoError(t, dev.Close(ctx, h))
}
