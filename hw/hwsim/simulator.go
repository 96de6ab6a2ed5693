// simulator.go implements a software stand-in for the codec hardware.

// Package hwsim provides a simulated hardware backend: it acknowledges
// programmed jobs by firing interrupts from its own goroutines after a
// configurable latency, and supports fault and unresponsiveness injection.
package hwsim

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/logger"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/xsync"
)

const (
	// DefaultLatency is the simulated duration of one hardware operation.
	DefaultLatency = 2 * time.Millisecond
)

// DefaultPicInfo is what the simulated decoder "parses" out of the first
// unit of a stream, unless a resolution change was queued.
var DefaultPicInfo = types.PicInfo{
	Width:    1280,
	Height:   720,
	DPBCount: 4,
}

type blockState struct {
	latency      time.Duration
	unresponsive bool
	faultNext    bool
	busy         bool

	// generation invalidates in-flight completions: a completion fires
	// only if the block was not reset since its job was programmed, so
	// a job outlived by a reset cannot signal the block's next owner.
	generation uint64

	lastResult hw.Result
}

// Simulator implements hw.Backend in software.
type Simulator struct {
	locker xsync.Mutex
	notify hw.InterruptNotify
	blocks [hw.EndOfBlock]blockState

	headerParsed map[int]bool
	resChange    map[int]*types.PicInfo
	picInfo      map[int]types.PicInfo
}

var _ hw.Backend = (*Simulator)(nil)

func New() *Simulator {
	s := &Simulator{
		headerParsed: map[int]bool{},
		resChange:    map[int]*types.PicInfo{},
		picInfo:      map[int]types.PicInfo{},
	}
	for block := range s.blocks {
		s.blocks[block].latency = DefaultLatency
	}
	return s
}

func (s *Simulator) String() string {
	return "Simulator"
}

// SetNotify installs the interrupt-delivery callback. Must be called
// before the first Program.
func (s *Simulator) SetNotify(ctx context.Context, notify hw.InterruptNotify) {
	s.locker.Do(ctx, func() {
		s.notify = notify
	})
}

// SetLatency overrides the simulated operation duration of a block.
func (s *Simulator) SetLatency(ctx context.Context, block hw.Block, latency time.Duration) {
	s.locker.Do(ctx, func() {
		s.blocks[block].latency = latency
	})
}

// SetUnresponsive makes the block swallow jobs without ever firing an
// interrupt, to exercise the timeout path.
func (s *Simulator) SetUnresponsive(ctx context.Context, block hw.Block, unresponsive bool) {
	s.locker.Do(ctx, func() {
		s.blocks[block].unresponsive = unresponsive
	})
}

// InjectFault makes the next job on the block complete with a fault status.
func (s *Simulator) InjectFault(ctx context.Context, block hw.Block) {
	s.locker.Do(ctx, func() {
		s.blocks[block].faultNext = true
	})
}

// QueueResolutionChange makes the next decode job of the slot report a
// mid-stream switch to the given picture geometry.
func (s *Simulator) QueueResolutionChange(ctx context.Context, slot int, picInfo types.PicInfo) {
	s.locker.Do(ctx, func() {
		s.resChange[slot] = types.Ptr(picInfo)
	})
}

func (s *Simulator) Program(
	ctx context.Context,
	block hw.Block,
	job hw.Job,
) (_err error) {
	logger.Debugf(ctx, "Program(%s, %s)", block, job)
	defer func() { logger.Debugf(ctx, "/Program(%s, %s): %v", block, job, _err) }()
	return xsync.DoR1(ctx, &s.locker, func() error {
		return s.programLocked(ctx, block, job)
	})
}

func (s *Simulator) programLocked(
	ctx context.Context,
	block hw.Block,
	job hw.Job,
) error {
	if s.notify == nil {
		return fmt.Errorf("no interrupt notify callback is set")
	}
	b := &s.blocks[block]
	if b.busy {
		return fmt.Errorf("block %s is already executing a job", block)
	}

	status, result := s.completionLocked(block, job)
	b.lastResult = result
	if b.unresponsive {
		logger.Debugf(ctx, "block %s is unresponsive, swallowing the job", block)
		return nil
	}

	b.busy = true
	latency := b.latency
	generation := b.generation
	observability.Go(ctx, func(ctx context.Context) {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			// the process is going away, nobody is listening anymore
		}
		stale := false
		s.locker.Do(ctx, func() {
			if s.blocks[block].generation != generation {
				stale = true
				return
			}
			s.blocks[block].busy = false
		})
		if stale {
			logger.Debugf(ctx, "block %s was reset mid-job, suppressing the completion: %s", block, status)
			return
		}
		s.notify(ctx, block, status)
	})
	return nil
}

func (s *Simulator) completionLocked(
	block hw.Block,
	job hw.Job,
) (types.InterruptStatus, hw.Result) {
	b := &s.blocks[block]
	if b.faultNext {
		b.faultNext = false
		return types.InterruptStatusFault, hw.Result{}
	}

	var status types.InterruptStatus
	var result hw.Result
	switch job.Type {
	case types.InstanceTypeDecoder:
		if !s.headerParsed[job.Slot] {
			s.headerParsed[job.Slot] = true
			s.picInfo[job.Slot] = DefaultPicInfo
			status = types.InterruptStatusSeqHeader | types.InterruptStatusPicHeader
			result.PicInfo = types.Ptr(s.picInfo[job.Slot])
			break
		}
		if newPicInfo := s.resChange[job.Slot]; newPicInfo != nil {
			delete(s.resChange, job.Slot)
			s.picInfo[job.Slot] = *newPicInfo
			status = types.InterruptStatusFrame | types.InterruptStatusSwitch
			result.PicInfo = types.Ptr(s.picInfo[job.Slot])
			result.BytesProduced = decodedSize(s.picInfo[job.Slot])
			break
		}
		status = types.InterruptStatusFrame
		result.BytesProduced = decodedSize(s.picInfo[job.Slot])
	case types.InstanceTypeEncoder:
		if !s.headerParsed[job.Slot] {
			s.headerParsed[job.Slot] = true
			status = types.InterruptStatusSeqHeader | types.InterruptStatusPicHeader
			result.BytesProduced = 64 // SPS+PPS
			break
		}
		status = types.InterruptStatusFrame
		result.BytesProduced = encodedSize(job.Unit)
	}
	if job.Unit.LastFrame {
		status |= types.InterruptStatusPause
	}
	return status, result
}

func (s *Simulator) ReadResult(
	ctx context.Context,
	block hw.Block,
) (hw.Result, error) {
	return xsync.DoR2(ctx, &s.locker, func() (hw.Result, error) {
		return s.blocks[block].lastResult, nil
	})
}

func (s *Simulator) Stop(
	ctx context.Context,
	block hw.Block,
) error {
	// the simulated hardware has no mid-operation stop, same as the real
	// one: the caller has to wait out the in-flight interrupt
	return hw.ErrNotImplemented{}
}

func (s *Simulator) Reset(
	ctx context.Context,
	block hw.Block,
) (_err error) {
	logger.Debugf(ctx, "Reset(%s)", block)
	defer func() { logger.Debugf(ctx, "/Reset(%s): %v", block, _err) }()
	s.locker.Do(ctx, func() {
		b := &s.blocks[block]
		b.unresponsive = false
		b.faultNext = false
		b.busy = false
		b.generation++
		b.lastResult = hw.Result{}
	})
	return nil
}

func decodedSize(picInfo types.PicInfo) uint64 {
	return uint64(picInfo.Width) * uint64(picInfo.Height) * 3 / 2
}

func encodedSize(unit types.Unit) uint64 {
	return uint64(len(unit.Payload))
}
