package dispatcher

import (
	"context"

	"github.com/xaionaro-go/vcodecmux/hw"
)

// DummyBackend is a hardware backend with pluggable behavior for tests.
type DummyBackend struct {
	ProgramFn    func(ctx context.Context, block hw.Block, job hw.Job) error
	ReadResultFn func(ctx context.Context, block hw.Block) (hw.Result, error)
	StopFn       func(ctx context.Context, block hw.Block) error
	ResetFn      func(ctx context.Context, block hw.Block) error

	ProgramCallCount    int
	ReadResultCallCount int
	StopCallCount       int
	ResetCallCount      int
}

var _ hw.Backend = (*DummyBackend)(nil)

func (b *DummyBackend) String() string {
	return "DummyBackend"
}

func (b *DummyBackend) Program(ctx context.Context, block hw.Block, job hw.Job) error {
	b.ProgramCallCount++
	if b.ProgramFn != nil {
		return b.ProgramFn(ctx, block, job)
	}
	return nil
}

func (b *DummyBackend) ReadResult(ctx context.Context, block hw.Block) (hw.Result, error) {
	b.ReadResultCallCount++
	if b.ReadResultFn != nil {
		return b.ReadResultFn(ctx, block)
	}
	return hw.Result{}, nil
}

func (b *DummyBackend) Stop(ctx context.Context, block hw.Block) error {
	b.StopCallCount++
	if b.StopFn != nil {
		return b.StopFn(ctx, block)
	}
	return hw.ErrNotImplemented{}
}

func (b *DummyBackend) Reset(ctx context.Context, block hw.Block) error {
	b.ResetCallCount++
	if b.ResetFn != nil {
		return b.ResetFn(ctx, block)
	}
	return nil
}
