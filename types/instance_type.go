// instance_type.go defines the InstanceType enum and its methods.

package types

import "fmt"

// InstanceType says whether an instance occupies the decode or the encode
// hardware block.
type InstanceType int

const (
	InstanceTypeDecoder InstanceType = iota
	InstanceTypeEncoder
	EndOfInstanceType
)

func InstanceTypes() []InstanceType {
	return []InstanceType{
		InstanceTypeDecoder,
		InstanceTypeEncoder,
	}
}

func (t InstanceType) String() string {
	switch t {
	case InstanceTypeDecoder:
		return "decoder"
	case InstanceTypeEncoder:
		return "encoder"
	default:
		return fmt.Sprintf("InstanceType(%d)", int(t))
	}
}
