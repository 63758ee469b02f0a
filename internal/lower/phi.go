package lower

import (
	"siergen/internal/ir"
	"siergen/internal/sierra"
)

// phiCopy is one copy a predecessor block owes a merge point: on leaving
// the predecessor, Src is stored into Dst before any control transfer.
type phiCopy struct {
	Dst  sierra.VarID
	Type string
	Src  ir.ValueID
}

type phiCopyKey struct {
	dst uint64
	typ string
	src ir.ValueID
}

// scanPhis walks every phi of the function and builds, per predecessor
// block, the ordered set of copies that block must emit before branching.
// The phi result variable is allocated here (or reused if an earlier
// incoming already allocated it) and bound so later instructions can read
// the merged value. Duplicate (dst, type, src) entries for the same
// predecessor collapse into one copy.
//
// This runs to completion for all blocks before any statement is emitted:
// a predecessor may be lowered before the merge block whose phi depends on
// it, so the copy table is the forward-reference mechanism decoupling
// discovery order from emission order.
func scanPhis(f *ir.Func, vars *varAllocator) (map[ir.BlockID][]phiCopy, error) {
	copies := make(map[ir.BlockID][]phiCopy)
	seen := make(map[ir.BlockID]map[phiCopyKey]struct{})

	for bi := range f.Blocks {
		for ii := range f.Blocks[bi].Instrs {
			ins := &f.Blocks[bi].Instrs[ii]
			if ins.Kind != ir.InstrPhi {
				continue
			}

			result := f.Value(ins.Phi.Result)
			dst, ok := vars.binding(ins.Phi.Result)
			if !ok {
				dst = vars.allocate(result.Name)
				if err := vars.bind(ins.Phi.Result, dst); err != nil {
					return nil, err
				}
			}
			ty := canonicalTypeName(result.Type)

			for _, inc := range ins.Phi.Incomings {
				key := phiCopyKey{dst: dst.ID, typ: ty, src: inc.Value}
				if seen[inc.Pred] == nil {
					seen[inc.Pred] = make(map[phiCopyKey]struct{})
				}
				if _, dup := seen[inc.Pred][key]; dup {
					continue
				}
				seen[inc.Pred][key] = struct{}{}
				copies[inc.Pred] = append(copies[inc.Pred], phiCopy{Dst: dst, Type: ty, Src: inc.Value})
			}
		}
	}
	return copies, nil
}
