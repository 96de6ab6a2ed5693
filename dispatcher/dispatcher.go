// dispatcher.go implements the per-unit-of-work orchestration: acquire
// the hardware block, program it, wait for the interrupt, classify the
// status and update the instance.

// Package dispatcher performs one decode or encode step at a time: it
// serializes instances over the shared hardware blocks and translates
// asynchronous interrupt delivery into the synchronous outcome of a
// submitted unit of work.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/vcodecmux/arbiter"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/instance"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
)

const (
	// DefaultWaitTimeout bounds the wait for one hardware operation.
	DefaultWaitTimeout = time.Second

	// drainTimeout bounds waiting out an in-flight interrupt when an
	// abort arrived and the hardware does not support a clean stop.
	drainTimeout = 100 * time.Millisecond
)

// Dispatcher drives units of work through the hardware. One Dispatcher
// serves all instances; per-instance serialization happens through the
// instances' work gates, per-block serialization through the arbiters.
type Dispatcher struct {
	Backend     hw.Backend
	Arbiters    [hw.EndOfBlock]*arbiter.Arbiter
	WaitTimeout time.Duration
}

func New(
	backend hw.Backend,
	arbiters [hw.EndOfBlock]*arbiter.Arbiter,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		Backend:     backend,
		Arbiters:    arbiters,
		WaitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt.apply(d)
	}
	return d
}

// Submit performs one decode or encode step for the instance.
//
// A second Submit for the same instance while one is outstanding fails
// with ErrBusy. On a delivered interrupt the status bitmask is
// classified and the instance state advanced accordingly; a timeout
// forces StateError and a hardware reset before the block's lock is
// released; an observed abort unwinds into StateAbort.
func (d *Dispatcher) Submit(
	ctx context.Context,
	inst *instance.Instance,
	unit types.Unit,
) (_ *types.Outcome, _err error) {
	ctx = belt.WithField(ctx, "slot", inst.Slot)
	ctx = belt.WithField(ctx, "instance_type", inst.Type.String())
	logger.Debugf(ctx, "Submit(%s)", unit)
	defer func() { logger.Debugf(ctx, "/Submit(%s): %v", unit, _err) }()

	if !inst.TryBeginWork() {
		return nil, ErrBusy{Slot: inst.Slot}
	}
	defer inst.EndWork()

	return d.submitGated(ctx, inst, unit)
}

// submitGated is Submit with the instance's work gate already entered.
func (d *Dispatcher) submitGated(
	ctx context.Context,
	inst *instance.Instance,
	unit types.Unit,
) (*types.Outcome, error) {
	if inst.IsAborted() {
		d.unwindAborted(ctx, inst)
		return nil, ErrCancelled{}
	}
	state := inst.State(ctx)
	if !state.AllowsSubmit() {
		return nil, instance.ErrStateForbidden{State: state, Operation: "submit"}
	}

	block := hw.BlockFor(inst.Type)
	arb := d.Arbiters[block]

	guard, err := arb.Acquire(ctx, inst.AbortChan())
	if err != nil {
		if errors.As(err, &arbiter.ErrAborted{}) {
			d.unwindAborted(ctx, inst)
			return nil, ErrCancelled{}
		}
		return nil, fmt.Errorf("unable to acquire the %s block: %w", block, err)
	}
	defer guard.Release(ctx)

	job := hw.Job{
		Slot: inst.Slot,
		Type: inst.Type,
		Unit: unit,
	}
	if inst.Type == types.InstanceTypeEncoder {
		job.ParamChange, job.EncParams = inst.TakeParams(ctx)
	}

	guard.Arm()
	startedAt := time.Now()
	if err := d.Backend.Program(ctx, block, job); err != nil {
		return nil, fmt.Errorf("unable to program the %s block: %w", block, err)
	}

	status, err := guard.WaitInterrupt(ctx, d.WaitTimeout, inst.AbortChan())
	switch {
	case err == nil:
	case errors.As(err, &arbiter.ErrTimeout{}):
		inst.Stats.Timeouts.Add(1)
		d.forceError(ctx, inst)
		d.resetBlock(ctx, block)
		return nil, ErrHardwareTimeout{Block: block, Timeout: d.WaitTimeout}
	case errors.As(err, &arbiter.ErrAborted{}), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		inst.Stats.Aborts.Add(1)
		d.stopOrDrain(ctx, guard, block)
		d.unwindAborted(ctx, inst)
		return nil, ErrCancelled{}
	default:
		return nil, fmt.Errorf("unable to wait for the interrupt on the %s block: %w", block, err)
	}

	if status.IsFault() {
		inst.Stats.Faults.Add(1)
		d.forceError(ctx, inst)
		d.resetBlock(ctx, block)
		return nil, ErrHardwareFault{Status: status}
	}

	result, err := d.Backend.ReadResult(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("unable to read the result registers of the %s block: %w", block, err)
	}

	outcome := d.classify(ctx, inst, status, result)
	inst.Stats.ObserveUnit(result.BytesProduced, time.Since(startedAt))
	outcome.FrameCount = inst.Stats.UnitsProcessed.Load()
	return outcome, nil
}

// classify interprets the delivered status bitmask and advances the
// instance's state accordingly.
func (d *Dispatcher) classify(
	ctx context.Context,
	inst *instance.Instance,
	status types.InterruptStatus,
	result hw.Result,
) *types.Outcome {
	outcome := &types.Outcome{
		Status:        status,
		BytesProduced: result.BytesProduced,
	}

	if status.Has(types.InterruptStatusSeqHeader) || status.Has(types.InterruptStatusPicHeader) {
		inst.Stats.HeadersParsed.Add(1)
		if result.PicInfo != nil {
			inst.SetPicInfo(*result.PicInfo)
			outcome.PicInfo = result.PicInfo
		}
		// decoder: sequence metadata is parsed now
		inst.CompareAndSetState(ctx, types.StateInit, types.StateHeader)
	}

	if status.Has(types.InterruptStatusSwitch) {
		// mid-stream format change; the in-flight operation for this
		// instance is already drained by construction (one unit in
		// flight at a time), so re-enter Running with the updated
		// parameters right away
		if inst.CompareAndSetState(ctx, types.StateRunning, types.StateResolutionChange) {
			if result.PicInfo != nil {
				inst.SetPicInfo(*result.PicInfo)
				outcome.PicInfo = result.PicInfo
			}
			outcome.ResolutionChanged = true
			if err := inst.SetState(ctx, types.StateRunning); err != nil {
				logger.Errorf(ctx, "unable to re-enter running after a resolution change: %v", err)
			}
		}
	}

	// auto-advance to Running on the first successfully completed unit
	for _, from := range []types.State{types.StateInit, types.StateConfig, types.StateHeader} {
		if inst.CompareAndSetState(ctx, from, types.StateRunning) {
			break
		}
	}

	return outcome
}

// forceError pushes the instance into StateError; legal from any
// non-Deinit state.
func (d *Dispatcher) forceError(ctx context.Context, inst *instance.Instance) {
	if err := inst.SetState(ctx, types.StateError); err != nil {
		logger.Errorf(ctx, "unable to transition to the error state: %v", err)
	}
}

// unwindAborted pushes the instance into StateAbort.
func (d *Dispatcher) unwindAborted(ctx context.Context, inst *instance.Instance) {
	if inst.State(ctx) == types.StateAbort {
		return
	}
	if err := inst.SetState(ctx, types.StateAbort); err != nil {
		logger.Errorf(ctx, "unable to transition to the abort state: %v", err)
	}
}

// resetBlock resets a wedged block before its lock is released, so the
// next owner does not inherit a stuck device.
func (d *Dispatcher) resetBlock(ctx context.Context, block hw.Block) {
	if err := d.Backend.Reset(ctx, block); err != nil {
		logger.Errorf(ctx, "unable to reset the %s block: %v", block, err)
	}
}

// stopOrDrain cleans up an aborted in-flight operation: a clean
// hardware-side stop if supported, otherwise waiting out the in-flight
// interrupt so it cannot leak into the next owner's submission.
func (d *Dispatcher) stopOrDrain(
	ctx context.Context,
	guard *arbiter.Guard,
	block hw.Block,
) {
	err := d.Backend.Stop(ctx, block)
	if err == nil {
		return
	}
	if !errors.As(err, &hw.ErrNotImplemented{}) {
		logger.Errorf(ctx, "unable to stop the %s block: %v", block, err)
		d.resetBlock(ctx, block)
		return
	}
	if _, err := guard.WaitInterrupt(ctx, drainTimeout, nil); err != nil {
		logger.Debugf(ctx, "draining the %s block: %v", block, err)
		d.resetBlock(ctx, block)
	}
}
