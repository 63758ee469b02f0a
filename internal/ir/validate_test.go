package ir

import (
	"strings"
	"testing"
)

func retFunc(name string) *Func {
	f := &Func{Name: name, RetType: "i32"}
	v := f.AddValue(Value{Kind: ValueConstInt, Type: "i32", Text: "0"})
	f.Blocks = []Block{{
		ID:     0,
		Label:  "entry",
		Instrs: []Instr{{Kind: InstrRet, Ret: RetInstr{Args: []ValueID{v}}}},
	}}
	return f
}

func TestValidate_OK(t *testing.T) {
	m := &Module{Funcs: []*Func{retFunc("f"), retFunc("g")}}
	if err := Validate(m); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err != nil {
		t.Fatalf("nil module: %v", err)
	}
	if err := Validate(&Module{Funcs: []*Func{nil}}); err != nil {
		t.Fatalf("nil function entry: %v", err)
	}
}

func TestValidate_NoBlocks(t *testing.T) {
	m := &Module{Funcs: []*Func{{Name: "empty"}}}
	err := Validate(m)
	if err == nil || !strings.Contains(err.Error(), "no blocks") {
		t.Fatalf("expected no-blocks error, got %v", err)
	}
}

func TestValidate_Unterminated(t *testing.T) {
	f := retFunc("f")
	a := f.AddValue(Value{Kind: ValueInstrResult, Type: "i32", Name: "a"})
	f.Blocks[0].Instrs = []Instr{{
		Kind: InstrAdd,
		Add:  AddInstr{LHS: 0, RHS: 0, Result: a},
	}}
	err := Validate(&Module{Funcs: []*Func{f}})
	if err == nil || !strings.Contains(err.Error(), "not terminated") {
		t.Fatalf("expected termination error, got %v", err)
	}
}

func TestValidate_HandlesOutOfRange(t *testing.T) {
	f := retFunc("f")
	f.Blocks[0].Instrs = []Instr{
		{Kind: InstrCmp, Cmp: CmpInstr{Pred: "eq", LHS: 0, RHS: 99, Result: 0}},
		{Kind: InstrBr, Br: BrInstr{Cond: 0, Then: 7, Else: NoBlockID}},
	}
	err := Validate(&Module{Funcs: []*Func{f}})
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "value handle 99 out of range") {
		t.Errorf("missing value handle error in %q", msg)
	}
	if !strings.Contains(msg, "block handle 7 out of range") {
		t.Errorf("missing block handle error in %q", msg)
	}
}

func TestValidate_JoinsAllFunctions(t *testing.T) {
	bad := &Func{Name: "bad"}
	err := Validate(&Module{Funcs: []*Func{retFunc("ok"), bad}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "function bad:") {
		t.Errorf("error should name the offending function: %q", err.Error())
	}
}
