// enc_params.go defines the general encoding parameters of an encoder
// instance.

package types

// EncParams holds the general encoding parameters. Which of them are
// actually (re-)applied on the next unit of work is tracked separately
// via ParamChange.
type EncParams struct {
	Bitrate        uint
	GopSize        uint
	FramerateNum   uint
	FramerateDenom uint
	ForceIntra     bool
	SkipFrame      bool

	H264Profile uint
	H264Level   uint
	H264MaxQP   uint
}
