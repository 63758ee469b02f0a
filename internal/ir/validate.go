package ir

import (
	"errors"
	"fmt"
)

// Validate checks module invariants before lowering: every block is
// terminated, every block target exists, every value handle is in range.
// Returns an error joining all violations.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func) error {
	var errs []error

	if len(f.Blocks) == 0 {
		errs = append(errs, errors.New("no blocks"))
	}

	for i := range f.Blocks {
		b := &f.Blocks[i]
		if !b.Terminated() {
			errs = append(errs, fmt.Errorf("block %s: not terminated", b.Label))
		}
		for j := range b.Instrs {
			if err := validateInstr(f, &b.Instrs[j]); err != nil {
				errs = append(errs, fmt.Errorf("block %s: instr %d: %w", b.Label, j, err))
			}
		}
	}

	for _, p := range f.Params {
		if err := checkValue(f, p); err != nil {
			errs = append(errs, fmt.Errorf("param: %w", err))
		}
	}

	return errors.Join(errs...)
}

func validateInstr(f *Func, ins *Instr) error {
	var errs []error
	check := func(id ValueID) {
		if err := checkValue(f, id); err != nil {
			errs = append(errs, err)
		}
	}
	checkBlock := func(id BlockID) {
		if !id.IsValid() || int(id) >= len(f.Blocks) {
			errs = append(errs, fmt.Errorf("block handle %d out of range", id))
		}
	}

	switch ins.Kind {
	case InstrCmp:
		check(ins.Cmp.LHS)
		check(ins.Cmp.RHS)
		check(ins.Cmp.Result)
	case InstrAdd:
		check(ins.Add.LHS)
		check(ins.Add.RHS)
		check(ins.Add.Result)
	case InstrBr:
		check(ins.Br.Cond)
		checkBlock(ins.Br.Then)
		checkBlock(ins.Br.Else)
	case InstrRet:
		for _, a := range ins.Ret.Args {
			check(a)
		}
	case InstrPhi:
		check(ins.Phi.Result)
		for _, inc := range ins.Phi.Incomings {
			check(inc.Value)
			checkBlock(inc.Pred)
		}
	case InstrUnknown:
		// Carried through for reporting only.
	default:
		errs = append(errs, fmt.Errorf("unknown instruction kind %d", ins.Kind))
	}
	return errors.Join(errs...)
}

func checkValue(f *Func, id ValueID) error {
	if !id.IsValid() || int(id) >= len(f.Values) {
		return fmt.Errorf("value handle %d out of range", id)
	}
	return nil
}
