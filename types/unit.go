// unit.go defines one unit of work submitted to a codec instance.

package types

import "fmt"

// Unit is one decode or encode step: one coded (decoder) or raw (encoder)
// input buffer. Buffer memory layout is the business of the buffer-queue
// collaborator; here only the payload reference and stream position matter.
type Unit struct {
	// Payload is the input buffer content.
	Payload []byte

	// LastFrame marks the end-of-stream unit.
	LastFrame bool
}

func (u Unit) String() string {
	if u.LastFrame {
		return fmt.Sprintf("Unit(%dB, EOS)", len(u.Payload))
	}
	return fmt.Sprintf("Unit(%dB)", len(u.Payload))
}
