// Package irparse loads the textual SSA IR into the in-memory CFG the
// lowering pass consumes. The syntax is a small LLVM-flavored subset:
//
//	define i32 @fib(i32 %a, i32 %b) {
//	entry:
//	  %cmp = icmp eq i32 %a, %b
//	  br i1 %cmp, label %then, label %else
//	then:
//	  ret i32 1
//	else:
//	  %sum = add i32 %a, 1
//	  ret i32 %sum
//	}
//
// Value and block references become small integer handles during this
// single traversal; no pointer identity is load-bearing downstream.
package irparse

import (
	"fmt"

	"siergen/internal/diag"
	"siergen/internal/ir"
	"siergen/internal/source"
)

// Parse tokenizes and parses one file of the FileSet. Problems are
// reported into bag; the returned module contains whatever parsed cleanly
// and must not be lowered when bag has errors.
func Parse(fset *source.FileSet, id source.FileID, bag *diag.Bag) *ir.Module {
	file := fset.Get(id)
	p := &parser{
		toks: scan(file, bag),
		bag:  bag,
	}
	m := &ir.Module{}
	for {
		p.skipNewlines()
		if p.peek().Kind == TokEOF {
			return m
		}
		f := p.parseFunc()
		if f == nil {
			p.recoverToDefine()
			continue
		}
		m.Funcs = append(m.Funcs, f)
	}
}

type parser struct {
	toks []Token
	pos  int
	bag  *diag.Bag
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == TokNewline {
		p.pos++
	}
}

func (p *parser) skipLine() {
	for p.peek().Kind != TokNewline && p.peek().Kind != TokEOF {
		p.pos++
	}
}

func (p *parser) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	p.bag.Add(diag.NewError(code, sp, fmt.Sprintf(format, args...)))
}

// expect consumes the next token if it matches, otherwise reports and
// returns false without consuming.
func (p *parser) expect(kind TokKind, code diag.Code) (Token, bool) {
	t := p.peek()
	if t.Kind != kind {
		p.errorf(code, t.Span, "expected %s, found %s", kind, t.Kind)
		return t, false
	}
	return p.next(), true
}

// expectKeyword consumes an ident with the given text.
func (p *parser) expectKeyword(word string) bool {
	t := p.peek()
	if t.Kind != TokIdent || t.Text != word {
		p.errorf(diag.SynUnexpectedToken, t.Span, "expected %q, found %s", word, t.Kind)
		return false
	}
	p.next()
	return true
}

// recoverToDefine skips to the next "define" at line start to resume
// after a malformed function.
func (p *parser) recoverToDefine() {
	for {
		t := p.peek()
		if t.Kind == TokEOF {
			return
		}
		if t.Kind == TokIdent && t.Text == "define" {
			return
		}
		p.next()
	}
}

// funcBuilder interns value and label names for one function.
type funcBuilder struct {
	f       *ir.Func
	values  map[string]ir.ValueID // %name -> handle
	consts  map[string]ir.ValueID // "type text" -> handle
	defined map[string]bool       // result names already defined
	labels  map[string]ir.BlockID
}

func (p *parser) parseFunc() *ir.Func {
	if !p.expectKeyword("define") {
		return nil
	}
	retTy, ok := p.parseType()
	if !ok {
		return nil
	}
	nameTok, ok := p.expect(TokGlobal, diag.SynExpectValue)
	if !ok {
		return nil
	}

	fb := &funcBuilder{
		f:       &ir.Func{Name: nameTok.Text, RetType: retTy},
		values:  make(map[string]ir.ValueID),
		consts:  make(map[string]ir.ValueID),
		defined: make(map[string]bool),
		labels:  make(map[string]ir.BlockID),
	}

	if !p.parseParams(fb) {
		return nil
	}
	if _, ok := p.expect(TokLBrace, diag.SynUnexpectedToken); !ok {
		return nil
	}

	p.scanLabels(fb)

	for {
		p.skipNewlines()
		t := p.peek()
		switch t.Kind {
		case TokRBrace:
			p.next()
			return fb.f
		case TokEOF:
			p.errorf(diag.SynUnclosedFunction, t.Span, "unexpected end of file in function @%s", fb.f.Name)
			return fb.f
		case TokIdent:
			if p.toks[p.pos+1].Kind == TokColon {
				p.parseBlock(fb)
				continue
			}
			p.errorf(diag.SynExpectLabel, t.Span, "expected block label, found %q", t.Text)
			p.skipLine()
		default:
			p.errorf(diag.SynExpectLabel, t.Span, "expected block label, found %s", t.Kind)
			p.skipLine()
		}
	}
}

func (p *parser) parseParams(fb *funcBuilder) bool {
	if _, ok := p.expect(TokLParen, diag.SynUnexpectedToken); !ok {
		return false
	}
	if p.peek().Kind == TokRParen {
		p.next()
		return true
	}
	for {
		ty, ok := p.parseType()
		if !ok {
			return false
		}
		nameTok, ok := p.expect(TokLocal, diag.SynExpectValue)
		if !ok {
			return false
		}
		id := fb.f.AddValue(ir.Value{Kind: ir.ValueParam, Type: ty, Name: nameTok.Text})
		fb.values[nameTok.Text] = id
		fb.defined[nameTok.Text] = true
		fb.f.Params = append(fb.f.Params, id)

		if p.peek().Kind == TokComma {
			p.next()
			continue
		}
		_, ok = p.expect(TokRParen, diag.SynUnexpectedToken)
		return ok
	}
}

// scanLabels walks ahead to the closing brace and assigns a BlockID to
// every "label:" definition so branches and phis can reference blocks
// that are defined later in the body.
func (p *parser) scanLabels(fb *funcBuilder) {
	afterNewline := true
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == TokRBrace || t.Kind == TokEOF {
			return
		}
		if afterNewline && t.Kind == TokIdent && i+1 < len(p.toks) && p.toks[i+1].Kind == TokColon {
			if _, dup := fb.labels[t.Text]; dup {
				p.errorf(diag.SynDuplicateLabel, t.Span, "duplicate label %q", t.Text)
			} else {
				id := ir.BlockID(len(fb.f.Blocks))
				fb.labels[t.Text] = id
				fb.f.Blocks = append(fb.f.Blocks, ir.Block{ID: id, Label: t.Text})
			}
		}
		afterNewline = t.Kind == TokNewline
	}
}

func (p *parser) parseBlock(fb *funcBuilder) {
	labelTok := p.next() // ident, checked by caller
	p.next()             // colon
	block := &fb.f.Blocks[fb.labels[labelTok.Text]]

	for {
		p.skipNewlines()
		t := p.peek()
		if t.Kind == TokRBrace || t.Kind == TokEOF {
			break
		}
		if t.Kind == TokIdent && p.toks[p.pos+1].Kind == TokColon {
			break // next block
		}
		if ins, ok := p.parseInstr(fb); ok {
			block.Instrs = append(block.Instrs, ins)
		}
	}

	if !block.Terminated() {
		p.errorf(diag.SynUnterminatedBlock, labelTok.Span, "block %q does not end in a terminator", labelTok.Text)
	}
}

func (p *parser) parseInstr(fb *funcBuilder) (ir.Instr, bool) {
	t := p.peek()
	switch t.Kind {
	case TokLocal:
		p.next()
		if _, ok := p.expect(TokEq, diag.SynUnexpectedToken); !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		return p.parseValueInstr(fb, t)
	case TokIdent:
		return p.parseVoidInstr(fb)
	default:
		p.errorf(diag.SynUnexpectedToken, t.Span, "expected instruction, found %s", t.Kind)
		p.skipLine()
		return ir.Instr{}, false
	}
}

// parseValueInstr parses "%res = <mnemonic> ...".
func (p *parser) parseValueInstr(fb *funcBuilder, result Token) (ir.Instr, bool) {
	mn := p.peek()
	if mn.Kind != TokIdent {
		p.errorf(diag.SynUnexpectedToken, mn.Span, "expected instruction mnemonic, found %s", mn.Kind)
		p.skipLine()
		return ir.Instr{}, false
	}
	p.next()

	switch mn.Text {
	case "icmp":
		predTok, ok := p.expect(TokIdent, diag.SynUnexpectedToken)
		if !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		_, lhs, rhs, ok := p.parseBinaryOperands(fb)
		if !ok {
			return ir.Instr{}, false
		}
		res, ok := p.defineResult(fb, result, "i1")
		if !ok {
			return ir.Instr{}, false
		}
		return ir.Instr{Kind: ir.InstrCmp, Cmp: ir.CmpInstr{Pred: predTok.Text, LHS: lhs, RHS: rhs, Result: res}}, true

	case "add":
		ty, lhs, rhs, ok := p.parseBinaryOperands(fb)
		if !ok {
			return ir.Instr{}, false
		}
		res, ok := p.defineResult(fb, result, ty)
		if !ok {
			return ir.Instr{}, false
		}
		return ir.Instr{Kind: ir.InstrAdd, Add: ir.AddInstr{LHS: lhs, RHS: rhs, Result: res}}, true

	case "phi":
		ty, ok := p.parseType()
		if !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		res, ok := p.defineResult(fb, result, ty)
		if !ok {
			return ir.Instr{}, false
		}
		phi := ir.PhiInstr{Result: res}
		for {
			if _, ok := p.expect(TokLBracket, diag.SynUnexpectedToken); !ok {
				p.skipLine()
				return ir.Instr{}, false
			}
			val, ok := p.parseOperand(fb, ty)
			if !ok {
				return ir.Instr{}, false
			}
			if _, ok := p.expect(TokComma, diag.SynUnexpectedToken); !ok {
				p.skipLine()
				return ir.Instr{}, false
			}
			pred, ok := p.parseLabelRef(fb)
			if !ok {
				return ir.Instr{}, false
			}
			if _, ok := p.expect(TokRBracket, diag.SynUnexpectedToken); !ok {
				p.skipLine()
				return ir.Instr{}, false
			}
			phi.Incomings = append(phi.Incomings, ir.PhiIncoming{Value: val, Pred: pred})
			if p.peek().Kind != TokComma {
				break
			}
			p.next()
		}
		return ir.Instr{Kind: ir.InstrPhi, Phi: phi}, true

	default:
		// Unsupported mnemonic: keep it so lowering can report the skip.
		p.skipLine()
		return ir.Instr{Kind: ir.InstrUnknown, Unknown: ir.UnknownInstr{Mnemonic: mn.Text}}, true
	}
}

// parseVoidInstr parses instructions without a result binding.
func (p *parser) parseVoidInstr(fb *funcBuilder) (ir.Instr, bool) {
	mn := p.next() // ident

	switch mn.Text {
	case "br":
		// br i1 %cond, label %then, label %else
		if _, ok := p.parseType(); !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		condTok, ok := p.expect(TokLocal, diag.SynExpectValue)
		if !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		cond := fb.valueRef(condTok.Text, "i1")
		if _, ok := p.expect(TokComma, diag.SynUnexpectedToken); !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		then, ok := p.parseLabelKeywordRef(fb)
		if !ok {
			return ir.Instr{}, false
		}
		if _, ok := p.expect(TokComma, diag.SynUnexpectedToken); !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		els, ok := p.parseLabelKeywordRef(fb)
		if !ok {
			return ir.Instr{}, false
		}
		return ir.Instr{Kind: ir.InstrBr, Br: ir.BrInstr{Cond: cond, Then: then, Else: els}}, true

	case "ret":
		ty, ok := p.parseType()
		if !ok {
			p.skipLine()
			return ir.Instr{}, false
		}
		if ty == "void" {
			return ir.Instr{Kind: ir.InstrRet}, true
		}
		arg, ok := p.parseOperand(fb, ty)
		if !ok {
			return ir.Instr{}, false
		}
		return ir.Instr{Kind: ir.InstrRet, Ret: ir.RetInstr{Args: []ir.ValueID{arg}}}, true

	default:
		p.skipLine()
		return ir.Instr{Kind: ir.InstrUnknown, Unknown: ir.UnknownInstr{Mnemonic: mn.Text}}, true
	}
}

// parseBinaryOperands parses "<ty> <op>, <op>" shared by icmp and add.
func (p *parser) parseBinaryOperands(fb *funcBuilder) (string, ir.ValueID, ir.ValueID, bool) {
	ty, ok := p.parseType()
	if !ok {
		p.skipLine()
		return "", ir.NoValueID, ir.NoValueID, false
	}
	lhs, ok := p.parseOperand(fb, ty)
	if !ok {
		return "", ir.NoValueID, ir.NoValueID, false
	}
	if _, ok := p.expect(TokComma, diag.SynUnexpectedToken); !ok {
		p.skipLine()
		return "", ir.NoValueID, ir.NoValueID, false
	}
	rhs, ok := p.parseOperand(fb, ty)
	if !ok {
		return "", ir.NoValueID, ir.NoValueID, false
	}
	return ty, lhs, rhs, true
}

// parseType accepts an identifier, optionally followed by '*'s kept in
// the spelling.
func (p *parser) parseType() (string, bool) {
	t := p.peek()
	if t.Kind != TokIdent {
		p.errorf(diag.SynExpectType, t.Span, "expected type, found %s", t.Kind)
		return "", false
	}
	p.next()
	ty := t.Text
	for p.peek().Kind == TokStar {
		p.next()
		ty += "*"
	}
	return ty, true
}

func (p *parser) parseOperand(fb *funcBuilder, ty string) (ir.ValueID, bool) {
	t := p.peek()
	switch t.Kind {
	case TokLocal:
		p.next()
		return fb.valueRef(t.Text, ty), true
	case TokInt:
		p.next()
		return fb.constRef(ty, t.Text), true
	default:
		p.errorf(diag.SynExpectValue, t.Span, "expected operand, found %s", t.Kind)
		p.skipLine()
		return ir.NoValueID, false
	}
}

// parseLabelKeywordRef parses "label %name".
func (p *parser) parseLabelKeywordRef(fb *funcBuilder) (ir.BlockID, bool) {
	if !p.expectKeyword("label") {
		p.skipLine()
		return ir.NoBlockID, false
	}
	return p.parseLabelRef(fb)
}

// parseLabelRef parses "%name" as a block reference.
func (p *parser) parseLabelRef(fb *funcBuilder) (ir.BlockID, bool) {
	t, ok := p.expect(TokLocal, diag.SynExpectLabel)
	if !ok {
		p.skipLine()
		return ir.NoBlockID, false
	}
	id, ok := fb.labels[t.Text]
	if !ok {
		p.errorf(diag.SynUndefinedLabel, t.Span, "undefined label %q", t.Text)
		return ir.NoBlockID, false
	}
	return id, true
}

// defineResult binds the result name of an instruction. A second
// definition of the same name violates single static assignment.
func (p *parser) defineResult(fb *funcBuilder, result Token, ty string) (ir.ValueID, bool) {
	if fb.defined[result.Text] {
		p.errorf(diag.SynDuplicateValue, result.Span, "value %%%s defined twice", result.Text)
		return ir.NoValueID, false
	}
	fb.defined[result.Text] = true
	id := fb.valueRef(result.Text, ty)
	v := fb.f.Value(id)
	v.Kind = ir.ValueInstrResult
	v.Type = ty
	return id, true
}

// valueRef interns a named value, creating the arena entry on first
// mention so forward references (phi incomings) get a stable handle.
func (fb *funcBuilder) valueRef(name, ty string) ir.ValueID {
	if id, ok := fb.values[name]; ok {
		v := fb.f.Value(id)
		if v.Type == "" {
			v.Type = ty
		}
		return id
	}
	id := fb.f.AddValue(ir.Value{Kind: ir.ValueInstrResult, Type: ty, Name: name})
	fb.values[name] = id
	return id
}

// constRef interns a literal per (type, spelling) pair, matching value
// identity semantics where every use of the same typed literal denotes
// the same producer.
func (fb *funcBuilder) constRef(ty, text string) ir.ValueID {
	key := ty + " " + text
	if id, ok := fb.consts[key]; ok {
		return id
	}
	id := fb.f.AddValue(ir.Value{Kind: ir.ValueConstInt, Type: ty, Text: text})
	fb.consts[key] = id
	return id
}
