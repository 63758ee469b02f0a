package ir

// InstrKind enumerates instruction kinds in the input IR.
type InstrKind uint8

const (
	// InstrCmp represents an integer comparison instruction.
	InstrCmp InstrKind = iota
	// InstrAdd represents an integer addition instruction.
	InstrAdd
	// InstrBr represents a conditional two-successor branch.
	InstrBr
	// InstrRet represents a return instruction.
	InstrRet
	// InstrPhi represents a merge-point instruction.
	InstrPhi
	// InstrUnknown represents an unsupported mnemonic, carried through so
	// lowering can report it instead of failing the parse.
	InstrUnknown
)

// Instr is a tagged union over the supported instruction payloads.
type Instr struct {
	Kind InstrKind

	Cmp     CmpInstr
	Add     AddInstr
	Br      BrInstr
	Ret     RetInstr
	Phi     PhiInstr
	Unknown UnknownInstr
}

// CmpInstr compares two operands of identical type under a predicate.
type CmpInstr struct {
	Pred     string
	LHS, RHS ValueID
	Result   ValueID
}

// AddInstr adds two operands.
type AddInstr struct {
	LHS, RHS ValueID
	Result   ValueID
}

// BrInstr transfers control to Then or Else depending on Cond.
type BrInstr struct {
	Cond ValueID
	Then BlockID
	Else BlockID
}

// RetInstr returns zero or more values.
type RetInstr struct {
	Args []ValueID
}

// PhiIncoming is one (value, predecessor) pair of a phi.
type PhiIncoming struct {
	Value ValueID
	Pred  BlockID
}

// PhiInstr selects a value based on the predecessor control arrived from.
type PhiInstr struct {
	Result    ValueID
	Incomings []PhiIncoming
}

// UnknownInstr keeps the mnemonic of an unsupported instruction.
type UnknownInstr struct {
	Mnemonic string
}
