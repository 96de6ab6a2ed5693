// param_change.go defines the ParamChange bitset accumulated on encoder
// instances between submitted units of work.

package types

import (
	"fmt"
	"strings"
)

// ParamChange accumulates which encode parameters changed since the last
// submitted unit of work. It is applied to the next job and then cleared.
type ParamChange uint32

const (
	ParamChangeNone        = ParamChange(0)
	ParamChangeBitrate     = ParamChange(1 << 0)
	ParamChangeFramerate   = ParamChange(1 << 1)
	ParamChangeIntraPeriod = ParamChange(1 << 2)
	ParamChangeForceIntra  = ParamChange(1 << 3)
	ParamChangeSkipFrame   = ParamChange(1 << 4)
)

// Has reports whether all the bits of `flag` are set.
func (p ParamChange) Has(flag ParamChange) bool {
	return p&flag == flag
}

func (p ParamChange) String() string {
	if p == ParamChangeNone {
		return "none"
	}
	var result []string
	for _, item := range []struct {
		bit  ParamChange
		name string
	}{
		{ParamChangeBitrate, "bitrate"},
		{ParamChangeFramerate, "framerate"},
		{ParamChangeIntraPeriod, "intra_period"},
		{ParamChangeForceIntra, "force_intra"},
		{ParamChangeSkipFrame, "skip_frame"},
	} {
		if p.Has(item.bit) {
			result = append(result, item.name)
		}
	}
	if len(result) == 0 {
		return fmt.Sprintf("ParamChange(0x%X)", uint32(p))
	}
	return strings.Join(result, "|")
}
