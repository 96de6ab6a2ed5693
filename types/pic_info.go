// pic_info.go defines the picture information reported by the decoder.

package types

import "fmt"

// PicInfo describes the picture geometry and the amount of reference
// buffers the hardware requires for it.
type PicInfo struct {
	Width  uint
	Height uint

	// DPBCount is the count of decoded-picture-buffer slots required
	// by the hardware for this stream.
	DPBCount uint
}

func (p PicInfo) String() string {
	return fmt.Sprintf("%dx%d (DPB: %d)", p.Width, p.Height, p.DPBCount)
}
