package lower

// SkippedInstr identifies one instruction lowering skipped because its
// mnemonic is outside the supported set.
type SkippedInstr struct {
	Func     string
	Block    string
	Mnemonic string
}

// Report carries non-fatal observations from a lowering run. Skipping an
// unsupported instruction is a deliberate scope limitation, not an error,
// but callers who need completeness guarantees can inspect the list.
type Report struct {
	Skipped []SkippedInstr
}

func (r *Report) skip(fn, block, mnemonic string) {
	r.Skipped = append(r.Skipped, SkippedInstr{Func: fn, Block: block, Mnemonic: mnemonic})
}
