package ir

// Block is a straight-line instruction sequence with a label identity.
type Block struct {
	ID     BlockID
	Label  string
	Instrs []Instr
}

// Terminated reports whether the block ends in a control transfer.
func (b *Block) Terminated() bool {
	if b == nil || len(b.Instrs) == 0 {
		return false
	}
	last := b.Instrs[len(b.Instrs)-1].Kind
	return last == InstrBr || last == InstrRet
}
