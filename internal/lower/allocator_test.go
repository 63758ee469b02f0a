package lower

import (
	"errors"
	"testing"

	"siergen/internal/ir"
)

func twoParamFunc() *ir.Func {
	f := &ir.Func{Name: "f", RetType: "i32"}
	a := f.AddValue(ir.Value{Kind: ir.ValueParam, Type: "i32", Name: "a"})
	b := f.AddValue(ir.Value{Kind: ir.ValueParam, Type: "i32", Name: "b"})
	f.Params = []ir.ValueID{a, b}
	return f
}

func TestVarAllocator_MonotonicIDs(t *testing.T) {
	f := twoParamFunc()
	a := newVarAllocator(f)

	prev := a.allocate("")
	for i := 0; i < 100; i++ {
		v := a.allocate("")
		if v.ID != prev.ID+1 {
			t.Fatalf("ids must increase by one: %d after %d", v.ID, prev.ID)
		}
		prev = v
	}
}

func TestVarAllocator_ReservesParamRange(t *testing.T) {
	f := twoParamFunc()
	a := newVarAllocator(f)

	// Allocations never collide with the parameter range 0..1.
	if v := a.allocate(""); v.ID != 2 {
		t.Fatalf("first allocation should be 2, got %d", v.ID)
	}

	reg := newRegistry()
	for i := range f.Params {
		if err := a.bindParam(reg, f, i); err != nil {
			t.Fatalf("bindParam: %v", err)
		}
	}
	va, err := a.lookup(f.Params[0])
	if err != nil {
		t.Fatalf("lookup param: %v", err)
	}
	if va.ID != 0 || va.DebugName != "a" {
		t.Errorf("param 0 should map to variable 0 named a, got %+v", va)
	}

	// bindParam declares the parameter type.
	if reg.declareType("i32") {
		t.Error("i32 should already be declared by bindParam")
	}
}

func TestVarAllocator_WriteOnceBindings(t *testing.T) {
	f := twoParamFunc()
	a := newVarAllocator(f)
	id := f.AddValue(ir.Value{Kind: ir.ValueInstrResult, Type: "i32", Name: "x"})

	v := a.allocate("x")
	if err := a.bind(id, v); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := a.bind(id, a.allocate("x")); !errors.Is(err, ErrRebound) {
		t.Fatalf("second bind must fail with ErrRebound, got %v", err)
	}

	// rebind is reserved for constant materialization and must not error.
	fresh := a.allocate("x2")
	a.rebind(id, fresh)
	got, err := a.lookup(id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != fresh.ID {
		t.Errorf("rebind should overwrite, got %d want %d", got.ID, fresh.ID)
	}
}

func TestVarAllocator_LookupUnbound(t *testing.T) {
	f := twoParamFunc()
	a := newVarAllocator(f)
	id := f.AddValue(ir.Value{Kind: ir.ValueInstrResult, Type: "i32", Name: "x"})

	if _, err := a.lookup(id); !errors.Is(err, ErrUnboundValue) {
		t.Fatalf("expected ErrUnboundValue, got %v", err)
	}
}
