// device.go implements the root object: the instance table, one arbiter
// per hardware block and the dispatcher, tied to a hardware backend.

// Package device exposes the client-facing surface of the arbitration
// engine: open/close/submit/abort/query on handles, plus the interrupt
// ingress driven by the hardware backend.
package device

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/vcodecmux/arbiter"
	"github.com/xaionaro-go/vcodecmux/dispatcher"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/instance"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

// Handle identifies an open instance towards the client. It is the slot
// index of the instance.
type Handle int

// Device multiplexes up to instance.MaxInstances sessions over the two
// physical codec blocks. All state is process-lifetime only.
type Device struct {
	backend    hw.Backend
	table      *instance.Table
	arbiters   [hw.EndOfBlock]*arbiter.Arbiter
	dispatcher *dispatcher.Dispatcher
}

// New constructs a Device on top of the given hardware backend. The
// backend's interrupt path must be pointed at (*Device).OnInterrupt.
func New(
	ctx context.Context,
	backend hw.Backend,
	opts ...Option,
) *Device {
	logger.Debugf(ctx, "New(%s)", backend)
	cfg := options(opts).config()
	d := &Device{
		backend: backend,
		table:   instance.NewTable(),
	}
	for _, block := range hw.Blocks() {
		d.arbiters[block] = arbiter.New(block)
	}
	d.dispatcher = dispatcher.New(
		backend,
		d.arbiters,
		dispatcher.OptionWaitTimeout(cfg.waitTimeout),
	)
	return d
}

func (d *Device) String() string {
	return fmt.Sprintf("Device(%s)", d.backend)
}

// OnInterrupt is the interrupt ingress: the hardware backend calls it
// once per delivered interrupt. It only records the status and wakes the
// waiter currently armed on the block; it never blocks, so it is safe to
// call from the interrupt execution context.
func (d *Device) OnInterrupt(
	ctx context.Context,
	block hw.Block,
	status types.InterruptStatus,
) {
	d.arbiters[block].Deliver(ctx, status)
}

// ActiveInstances returns the count of open instances.
func (d *Device) ActiveInstances(ctx context.Context) int {
	return d.table.Count(ctx)
}

func (d *Device) lookup(ctx context.Context, h Handle) (*instance.Instance, error) {
	return d.table.Lookup(ctx, int(h))
}

func (d *Device) ctxWithHandle(ctx context.Context, h Handle) context.Context {
	return belt.WithField(ctx, "slot", int(h))
}
