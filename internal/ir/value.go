package ir

// ValueKind enumerates the producers a value reference can denote.
type ValueKind uint8

const (
	// ValueParam is a function parameter.
	ValueParam ValueKind = iota
	// ValueInstrResult is the result of an instruction.
	ValueInstrResult
	// ValueConstInt is an integer literal.
	ValueConstInt
)

// Value is one SSA value in a function's arena. Two value references are
// equal iff they carry the same ValueID, so reference identity never
// depends on pointer semantics.
type Value struct {
	Kind ValueKind
	Type string // type spelling as written in the source IR
	Name string // debug name (%name), empty for unnamed values
	Text string // literal spelling for ValueConstInt
}
