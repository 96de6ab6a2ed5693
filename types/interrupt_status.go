// interrupt_status.go defines the InterruptStatus bitset delivered by the
// hardware interrupt path.

package types

import (
	"fmt"
	"strings"
)

// InterruptStatus is the raw status bitmask recorded by the interrupt
// handler. The bit layout follows the hardware's IRQ status register.
type InterruptStatus uint32

const (
	// InterruptStatusSeqHeader: a sequence header (SPS) was produced/parsed.
	InterruptStatusSeqHeader = InterruptStatus(1 << 0)

	// InterruptStatusPicHeader: a picture header (PPS) was produced/parsed.
	InterruptStatusPicHeader = InterruptStatus(1 << 1)

	// InterruptStatusFrame: one full frame completed.
	InterruptStatusFrame = InterruptStatus(1 << 2)

	// InterruptStatusDRAMOverflow: the bitstream DRAM buffer overflowed.
	InterruptStatusDRAMOverflow = InterruptStatus(1 << 3)

	// InterruptStatusPause: the hardware paused mid-operation.
	InterruptStatusPause = InterruptStatus(1 << 4)

	// InterruptStatusSwitch: the hardware signals a mode/resolution switch.
	InterruptStatusSwitch = InterruptStatus(1 << 5)

	// InterruptStatusFault: the hardware reported an unrecoverable failure.
	InterruptStatusFault = InterruptStatus(1 << 6)
)

// Has reports whether all the bits of `flag` are set.
func (s InterruptStatus) Has(flag InterruptStatus) bool {
	return s&flag == flag
}

// IsFault reports whether the status indicates a hardware-side failure.
func (s InterruptStatus) IsFault() bool {
	return s&(InterruptStatusFault|InterruptStatusDRAMOverflow) != 0
}

func (s InterruptStatus) String() string {
	if s == 0 {
		return "none"
	}
	var result []string
	for _, item := range []struct {
		bit  InterruptStatus
		name string
	}{
		{InterruptStatusSeqHeader, "seq_header"},
		{InterruptStatusPicHeader, "pic_header"},
		{InterruptStatusFrame, "frame"},
		{InterruptStatusDRAMOverflow, "dram_overflow"},
		{InterruptStatusPause, "pause"},
		{InterruptStatusSwitch, "switch"},
		{InterruptStatusFault, "fault"},
	} {
		if s.Has(item.bit) {
			result = append(result, item.name)
		}
	}
	if rest := s &^ (InterruptStatusSeqHeader | InterruptStatusPicHeader |
		InterruptStatusFrame | InterruptStatusDRAMOverflow |
		InterruptStatusPause | InterruptStatusSwitch |
		InterruptStatusFault); rest != 0 {
		result = append(result, fmt.Sprintf("0x%X", uint32(rest)))
	}
	return strings.Join(result, "|")
}
