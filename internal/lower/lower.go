// Package lower converts a typed SSA control-flow graph into a linear,
// statement-indexed Sierra-style program. Merge points become explicit
// store_temp copies on predecessor edges, literal operands become
// const_as_immediate producer statements, and branch targets are resolved
// to absolute statement indices in a final rewrite pass.
package lower

import (
	"fmt"
	"strconv"

	"siergen/internal/ir"
	"siergen/internal/sierra"
)

// lowerer bundles all mutable builder state of one compilation unit: the
// declaration registry, the statement buffer, the block offset table and
// the pending jump list. Each Lower call builds a fresh one; there are no
// process-wide singletons.
type lowerer struct {
	opts       Options
	reg        *registry
	stmts      []sierra.Statement
	blockStart map[blockKey]sierra.StatementIdx
	pending    []pendingJump
	entries    []sierra.EntryPoint
	report     Report
}

// blockKey identifies a block across functions; BlockIDs are only unique
// within one function.
type blockKey struct {
	fn    int
	block ir.BlockID
}

// pendingJump records an emitted branch statement whose targets still hold
// the placeholder sentinel, plus the successor blocks it must resolve to.
type pendingJump struct {
	stmt sierra.StatementIdx
	fn   int
	then ir.BlockID
	els  ir.BlockID
}

// funcState is the per-function lowering state: the variable allocator
// with its binding table and the phi copy table from the pre-pass.
// Variable numbering is scoped strictly per function.
type funcState struct {
	idx    int
	f      *ir.Func
	vars   *varAllocator
	copies map[ir.BlockID][]phiCopy
}

// Lower converts a module into a Sierra-style program. Either the full
// artifact is produced or none is. The report lists instructions that
// were skipped as unsupported.
func Lower(m *ir.Module, opts Options) (*sierra.Program, *Report, error) {
	l := &lowerer{
		opts:       opts.withDefaults(),
		reg:        newRegistry(),
		blockStart: make(map[blockKey]sierra.StatementIdx),
	}

	// Phi pre-pass over the whole function set. It must finish before any
	// statement is emitted: a predecessor block can be lowered before the
	// merge block whose phi depends on it.
	states := make([]*funcState, 0, len(m.Funcs))
	for i, f := range m.Funcs {
		if f == nil {
			continue
		}
		vars := newVarAllocator(f)
		copies, err := scanPhis(f, vars)
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		states = append(states, &funcState{idx: i, f: f, vars: vars, copies: copies})
	}

	for _, fs := range states {
		if err := l.lowerFunc(fs); err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", fs.f.Name, err)
		}
	}

	if err := l.resolveJumps(); err != nil {
		return nil, nil, err
	}

	prog := &sierra.Program{
		Types:      l.reg.types,
		Libfuncs:   l.reg.libfuncs,
		Statements: l.stmts,
		Funcs:      l.entries,
	}
	return prog, &l.report, nil
}

func (l *lowerer) lowerFunc(fs *funcState) error {
	f := fs.f
	entry := sierra.StatementIdx(len(l.stmts))

	for i := range f.Params {
		if err := fs.vars.bindParam(l.reg, f, i); err != nil {
			return err
		}
	}

	for bi := range f.Blocks {
		if err := l.lowerBlock(fs, &f.Blocks[bi]); err != nil {
			return err
		}
	}

	paramTypes := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		paramTypes = append(paramTypes, canonicalTypeName(f.Value(p).Type))
	}
	var retTypes []string
	if f.RetType != "" && f.RetType != "void" {
		retTypes = []string{canonicalTypeName(f.RetType)}
	}
	l.entries = append(l.entries, sierra.EntryPoint{
		Name:       f.Name,
		Entry:      entry,
		ParamTypes: paramTypes,
		RetTypes:   retTypes,
	})
	return nil
}

// lowerBlock records the block's first statement index, then emits one
// statement per instruction (phis emit nothing; they were consumed by the
// pre-pass). A block that contributes no statements cannot be a branch
// target, so it is rejected as malformed input.
func (l *lowerer) lowerBlock(fs *funcState, b *ir.Block) error {
	start := sierra.StatementIdx(len(l.stmts))
	l.blockStart[blockKey{fn: fs.idx, block: b.ID}] = start

	for ii := range b.Instrs {
		if err := l.lowerInstr(fs, b, &b.Instrs[ii]); err != nil {
			return fmt.Errorf("block %s: %w", b.Label, err)
		}
	}

	if sierra.StatementIdx(len(l.stmts)) == start {
		return fmt.Errorf("%w: block %s emitted no statements", ErrUnresolvedBlock, b.Label)
	}
	return nil
}

func (l *lowerer) lowerInstr(fs *funcState, b *ir.Block, ins *ir.Instr) error {
	switch ins.Kind {
	case ir.InstrCmp:
		return l.lowerCmp(fs, ins)
	case ir.InstrAdd:
		return l.lowerAdd(fs, ins)
	case ir.InstrBr:
		return l.lowerBr(fs, b, ins)
	case ir.InstrRet:
		return l.lowerRet(fs, ins)
	case ir.InstrPhi:
		return nil
	case ir.InstrUnknown:
		l.report.skip(fs.f.Name, b.Label, ins.Unknown.Mnemonic)
		return nil
	default:
		return fmt.Errorf("unexpected instruction kind %d", ins.Kind)
	}
}

// lowerCmp emits one invocation of "<type>_<predicate>". Operand types
// must agree; predicates outside the configured set lower to the fallback
// name rather than being silently mis-named.
func (l *lowerer) lowerCmp(fs *funcState, ins *ir.Instr) error {
	lhsTy := canonicalTypeName(fs.f.Value(ins.Cmp.LHS).Type)
	rhsTy := canonicalTypeName(fs.f.Value(ins.Cmp.RHS).Type)
	if lhsTy != rhsTy {
		return fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, lhsTy, rhsTy)
	}
	l.reg.declareType(lhsTy)

	pred, ok := l.opts.Predicates[ins.Cmp.Pred]
	if !ok {
		pred = l.opts.FallbackPredicate
	}
	name := lhsTy + "_" + pred

	return l.lowerBinary(fs, name, ins.Cmp.LHS, ins.Cmp.RHS, ins.Cmp.Result)
}

// lowerAdd emits one invocation of "<type>_add". No type assertion and no
// predicate discrimination, otherwise the same shape as lowerCmp.
func (l *lowerer) lowerAdd(fs *funcState, ins *ir.Instr) error {
	ty := canonicalTypeName(fs.f.Value(ins.Add.LHS).Type)
	l.reg.declareType(ty)
	return l.lowerBinary(fs, ty+"_add", ins.Add.LHS, ins.Add.RHS, ins.Add.Result)
}

func (l *lowerer) lowerBinary(fs *funcState, name string, lhs, rhs, result ir.ValueID) error {
	a, err := l.resolveOperand(fs, lhs)
	if err != nil {
		return err
	}
	b, err := l.resolveOperand(fs, rhs)
	if err != nil {
		return err
	}

	res := fs.vars.allocate(fs.f.Value(result).Name)
	if err := fs.vars.bind(result, res); err != nil {
		return err
	}

	l.reg.declareLibfunc(name, name, nil)
	l.emitSimple(name, []sierra.VarID{a, b}, []sierra.VarID{res})
	return nil
}

// lowerBr first drains every phi copy owed by the current block, then
// emits the jump with placeholder targets and records the successor pair
// for the resolution pass. The copies must all precede the transfer.
func (l *lowerer) lowerBr(fs *funcState, b *ir.Block, ins *ir.Instr) error {
	for _, pc := range fs.copies[b.ID] {
		src, err := l.resolveOperand(fs, pc.Src)
		if err != nil {
			return err
		}
		name := "store_temp<" + pc.Type + ">"
		l.reg.declareType(pc.Type)
		l.reg.declareLibfunc(name, "store_temp", []sierra.GenericArg{
			{Kind: sierra.ArgType, Type: pc.Type},
		})
		l.emitSimple(name, []sierra.VarID{src}, []sierra.VarID{pc.Dst})
	}

	l.reg.declareLibfunc("jump", "jump", nil)
	idx := sierra.StatementIdx(len(l.stmts))
	l.stmts = append(l.stmts, sierra.Statement{
		Kind: sierra.StatementInvocation,
		Invocation: sierra.Invocation{
			Libfunc: "jump",
			Branches: []sierra.BranchInfo{
				{Target: sierra.TargetStatement(sierra.PlaceholderTarget)},
				{Target: sierra.TargetStatement(sierra.PlaceholderTarget)},
			},
		},
	})
	l.pending = append(l.pending, pendingJump{stmt: idx, fn: fs.idx, then: ins.Br.Then, els: ins.Br.Else})
	return nil
}

func (l *lowerer) lowerRet(fs *funcState, ins *ir.Instr) error {
	args := make([]sierra.VarID, 0, len(ins.Ret.Args))
	for _, a := range ins.Ret.Args {
		v, err := l.resolveOperand(fs, a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	l.stmts = append(l.stmts, sierra.Statement{
		Kind:   sierra.StatementReturn,
		Return: sierra.Return{Args: args},
	})
	return nil
}

// resolveOperand reads an operand through the binding table, materializing
// literal constants lazily right before they are consumed.
func (l *lowerer) resolveOperand(fs *funcState, id ir.ValueID) (sierra.VarID, error) {
	if fs.f.Value(id).Kind == ir.ValueConstInt {
		return l.materializeConst(fs, id)
	}
	return fs.vars.lookup(id)
}

// materializeConst synthesizes a zero-input const_as_immediate<T, v>
// producer so the literal can be used as a variable. The declaration is
// deduplicated by the registry, but every occurrence deliberately gets its
// own producer statement and fresh destination variable.
func (l *lowerer) materializeConst(fs *funcState, id ir.ValueID) (sierra.VarID, error) {
	val := fs.f.Value(id)
	ty := canonicalTypeName(val.Type)

	n, err := strconv.ParseInt(val.Text, 10, 64)
	if err != nil {
		return sierra.VarID{}, fmt.Errorf("%w: %q as %s", ErrMalformedConstant, val.Text, ty)
	}

	name := fmt.Sprintf("const_as_immediate<%s, %d>", ty, n)
	l.reg.declareType(ty)
	l.reg.declareLibfunc(name, "const", []sierra.GenericArg{
		{Kind: sierra.ArgType, Type: ty},
		{Kind: sierra.ArgValue, Value: n},
	})

	dst := fs.vars.allocate(fmt.Sprintf("const_%s<%d>", ty, n))
	l.emitSimple(name, nil, []sierra.VarID{dst})
	fs.vars.rebind(id, dst)
	return dst, nil
}

// emitSimple appends an invocation with a single fallthrough branch.
func (l *lowerer) emitSimple(libfunc string, args, results []sierra.VarID) {
	l.stmts = append(l.stmts, sierra.Statement{
		Kind: sierra.StatementInvocation,
		Invocation: sierra.Invocation{
			Libfunc:  libfunc,
			Args:     args,
			Branches: []sierra.BranchInfo{{Target: sierra.Fallthrough(), Results: results}},
		},
	})
}
