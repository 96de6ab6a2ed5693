// block.go defines the Block enum identifying the physical codec engines.

// Package hw defines the boundary between the arbitration engine and the
// actual codec hardware: the physical blocks, the backend interface used
// to drive them, and the interrupt notification path back.
package hw

import (
	"fmt"

	"github.com/xaionaro-go/vcodecmux/types"
)

// Block is one physical codec engine. The decode and the encode blocks
// are independent: they have independent locks and interrupt lines.
type Block int

const (
	BlockDecode Block = iota
	BlockEncode
	EndOfBlock
)

func Blocks() []Block {
	return []Block{
		BlockDecode,
		BlockEncode,
	}
}

func (b Block) String() string {
	switch b {
	case BlockDecode:
		return "decode"
	case BlockEncode:
		return "encode"
	default:
		return fmt.Sprintf("Block(%d)", int(b))
	}
}

// BlockFor returns the hardware block an instance of the given type
// occupies while executing a unit of work.
func BlockFor(t types.InstanceType) Block {
	if t == types.InstanceTypeEncoder {
		return BlockEncode
	}
	return BlockDecode
}
