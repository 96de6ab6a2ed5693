// job.go defines the Job structure programmed into a hardware block.

package hw

import (
	"fmt"

	"github.com/xaionaro-go/vcodecmux/types"
)

// Job is one fully-resolved unit of work, ready to be programmed into a
// hardware block: the input unit plus whatever pending parameter changes
// the owning instance accumulated since its previous job.
type Job struct {
	Slot int
	Type types.InstanceType
	Unit types.Unit

	// ParamChange and EncParams carry the encoder parameters to (re-)apply
	// while programming this job. Zero for decoder jobs.
	ParamChange types.ParamChange
	EncParams   types.EncParams
}

func (j Job) String() string {
	if j.ParamChange != types.ParamChangeNone {
		return fmt.Sprintf("Job(slot: %d, %s, %s, param_change: %s)", j.Slot, j.Type, j.Unit, j.ParamChange)
	}
	return fmt.Sprintf("Job(slot: %d, %s, %s)", j.Slot, j.Type, j.Unit)
}
