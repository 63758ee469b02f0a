package ir

import "math"

type (
	// ValueID is a handle into Func.Values.
	ValueID uint32
	// BlockID is a handle into Func.Blocks.
	BlockID uint32
)

const (
	// NoValueID marks an absent value reference.
	NoValueID ValueID = math.MaxUint32
	// NoBlockID marks an absent block reference.
	NoBlockID BlockID = math.MaxUint32
)

// IsValid reports whether the handle refers to a value.
func (v ValueID) IsValid() bool { return v != NoValueID }

// IsValid reports whether the handle refers to a block.
func (b BlockID) IsValid() bool { return b != NoBlockID }
