package dispatcher

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/types"
)

// ErrBusy: a unit of work is already in flight for the instance.
type ErrBusy struct {
	Slot int
}

func (e ErrBusy) Error() string {
	return fmt.Sprintf("a unit of work is already in flight for slot %d", e.Slot)
}

// ErrHardwareTimeout: no interrupt within the configured bound; the
// hardware was considered unresponsive and got reset, the instance is in
// the error state.
type ErrHardwareTimeout struct {
	Block   hw.Block
	Timeout time.Duration
}

func (e ErrHardwareTimeout) Error() string {
	return fmt.Sprintf("the %s block did not respond within %v", e.Block, e.Timeout)
}

// ErrCancelled: the expected outcome of an abort request; not a fault.
type ErrCancelled struct{}

func (e ErrCancelled) Error() string {
	return "the operation was cancelled"
}

// ErrHardwareFault: the hardware reported a failure through the
// interrupt status bitmask.
type ErrHardwareFault struct {
	Status types.InterruptStatus
}

func (e ErrHardwareFault) Error() string {
	return fmt.Sprintf("the hardware reported a failure: %s", e.Status)
}
