package arbiter

import (
	"fmt"
	"time"
)

// ErrTimeout: no interrupt was delivered within the wait bound. The
// hardware has to be considered unresponsive.
type ErrTimeout struct {
	Timeout time.Duration
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("no interrupt was delivered within %v", e.Timeout)
}

// ErrAborted: the abort channel fired while waiting.
type ErrAborted struct{}

func (e ErrAborted) Error() string {
	return "the wait was aborted"
}

// ErrNotArmed: WaitInterrupt was called without a preceding Arm.
type ErrNotArmed struct{}

func (e ErrNotArmed) Error() string {
	return "the completion channel is not armed"
}
