// outcome.go defines the result of one successfully processed unit of work.

package types

import "fmt"

// Outcome is returned to the caller for every unit of work that reached
// a `Delivered` interrupt.
type Outcome struct {
	// Status is the interrupt status bitmask as delivered by the hardware.
	Status InterruptStatus

	// BytesProduced is the amount of output generated by this unit.
	BytesProduced uint64

	// FrameCount is the total count of units processed by the instance,
	// including this one.
	FrameCount uint64

	// PicInfo is set when the unit produced or updated picture metadata
	// (header parsed, resolution changed).
	PicInfo *PicInfo

	// ResolutionChanged reports that the hardware detected a mid-stream
	// format change while processing this unit.
	ResolutionChanged bool
}

func (o Outcome) String() string {
	return fmt.Sprintf(
		"Outcome(status: %s, bytes: %d, frames: %d)",
		o.Status, o.BytesProduced, o.FrameCount,
	)
}
