// instance.go defines one codec instance: a client's decode or encode
// session multiplexed over the shared hardware.

// Package instance implements the per-session entity and the fixed-size
// table which registers the active ones.
package instance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/vcodecmux/workqueue"
	"github.com/xaionaro-go/xsync"
)

// Instance is one client session. It is owned exclusively by the Table
// while occupying a slot. All fields are private to the owning task,
// except the abort signaler (set by cancellation requesters without any
// lock) and the statistics counters.
type Instance struct {
	Slot int
	Type types.InstanceType

	// Stats is append-only; see types.Counters.
	Stats types.Counters

	// CreatedAt is when the slot was occupied.
	CreatedAt time.Time

	abort *abortSignaler
	gate  chan struct{}

	locker      xsync.Mutex
	state       types.State
	encParams   types.EncParams
	paramChange types.ParamChange
	queue       workqueue.Queue

	lastPicInfo *types.PicInfo
}

func newInstance(slot int, instanceType types.InstanceType) *Instance {
	return &Instance{
		Slot:      slot,
		Type:      instanceType,
		CreatedAt: time.Now(),
		abort:     newAbortSignaler(),
		gate:      make(chan struct{}, 1),
		state:     types.StateCreated,
	}
}

func (inst *Instance) String() string {
	return fmt.Sprintf("Instance(#%d, %s)", inst.Slot, inst.Type)
}

// AbortChan is closed once an abort was requested for this instance.
func (inst *Instance) AbortChan() <-chan struct{} {
	return inst.abort.Chan()
}

// IsAborted reports whether an abort was requested.
func (inst *Instance) IsAborted() bool {
	return inst.abort.IsSignaled()
}

// PicInfo returns the last published picture metadata, or nil if none
// was parsed yet.
func (inst *Instance) PicInfo() *types.PicInfo {
	return xatomic.LoadPointer(&inst.lastPicInfo)
}

// SetPicInfo publishes new picture metadata (header parsed or resolution
// changed).
func (inst *Instance) SetPicInfo(picInfo types.PicInfo) {
	xatomic.StorePointer(&inst.lastPicInfo, types.Ptr(picInfo))
}

// Queue returns the attached queue of pending work, or nil.
func (inst *Instance) Queue(ctx context.Context) workqueue.Queue {
	return xsync.DoR1(ctx, &inst.locker, func() workqueue.Queue {
		return inst.queue
	})
}

// AttachQueue attaches the buffer-queue collaborator's per-instance
// queue.
func (inst *Instance) AttachQueue(ctx context.Context, q workqueue.Queue) {
	inst.locker.Do(ctx, func() {
		inst.queue = q
	})
}
