package lower

import (
	"fmt"

	"siergen/internal/sierra"
)

// resolveJumps rewrites every pending branch statement once all blocks
// have been lowered: each placeholder target is replaced by the recorded
// first-statement index of its successor block. A successor missing from
// the offset table means the CFG was malformed or only partially lowered.
func (l *lowerer) resolveJumps() error {
	for _, pj := range l.pending {
		thenIdx, ok := l.blockStart[blockKey{fn: pj.fn, block: pj.then}]
		if !ok {
			return fmt.Errorf("%w: block handle %d", ErrUnresolvedBlock, pj.then)
		}
		elseIdx, ok := l.blockStart[blockKey{fn: pj.fn, block: pj.els}]
		if !ok {
			return fmt.Errorf("%w: block handle %d", ErrUnresolvedBlock, pj.els)
		}

		branches := l.stmts[pj.stmt].Invocation.Branches
		branches[0].Target = sierra.TargetStatement(thenIdx)
		branches[1].Target = sierra.TargetStatement(elseIdx)
	}
	return nil
}
