package lower

import (
	"fmt"

	"fortio.org/safecast"

	"siergen/internal/ir"
	"siergen/internal/sierra"
)

// varAllocator hands out destination variable ids and tracks which variable
// each source value was lowered to. One instance per function: ids
// 0..len(params)-1 are reserved for parameters, everything else (phi
// destinations first, then instruction results) continues from there.
type varAllocator struct {
	next     uint64
	bindings map[ir.ValueID]sierra.VarID
}

func newVarAllocator(f *ir.Func) *varAllocator {
	reserve, err := safecast.Conv[uint64](len(f.Params))
	if err != nil {
		panic(fmt.Errorf("param count overflow: %w", err))
	}
	return &varAllocator{
		next:     reserve,
		bindings: make(map[ir.ValueID]sierra.VarID, len(f.Values)),
	}
}

// allocate returns a fresh variable with an id one greater than the
// previous allocation. Ids are never reused.
func (a *varAllocator) allocate(debugName string) sierra.VarID {
	v := sierra.VarID{ID: a.next, DebugName: debugName}
	a.next++
	return v
}

// bind records the value -> variable association. Bindings are write-once;
// only constant materialization may rebind (via rebind).
func (a *varAllocator) bind(id ir.ValueID, v sierra.VarID) error {
	if _, ok := a.bindings[id]; ok {
		return fmt.Errorf("%w: value %d", ErrRebound, id)
	}
	a.bindings[id] = v
	return nil
}

// rebind overwrites the binding for a freshly materialized constant.
func (a *varAllocator) rebind(id ir.ValueID, v sierra.VarID) {
	a.bindings[id] = v
}

// lookup resolves a value to its destination variable. A miss is a caller
// logic error in the input CFG: SSA guarantees forward-only use.
func (a *varAllocator) lookup(id ir.ValueID) (sierra.VarID, error) {
	v, ok := a.bindings[id]
	if !ok {
		return sierra.VarID{}, fmt.Errorf("%w: value %d", ErrUnboundValue, id)
	}
	return v, nil
}

// binding reports the variable for a value without treating a miss as an
// error; the phi pre-pass uses it to reuse an already-allocated phi result.
func (a *varAllocator) binding(id ir.ValueID) (sierra.VarID, bool) {
	v, ok := a.bindings[id]
	return v, ok
}

// bindParam binds parameter idx to its reserved id and declares the
// parameter's type. Used once per function entry.
func (a *varAllocator) bindParam(reg *registry, f *ir.Func, idx int) error {
	id := f.Params[idx]
	val := f.Value(id)
	reg.declareType(val.Type)
	varIdx, err := safecast.Conv[uint64](idx)
	if err != nil {
		return fmt.Errorf("param index overflow: %w", err)
	}
	return a.bind(id, sierra.VarID{ID: varIdx, DebugName: val.Name})
}
