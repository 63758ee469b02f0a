// Package sierra defines the linear, statement-indexed program artifact
// produced by lowering, together with its declaration tables.
package sierra

// VarID identifies one destination variable. IDs are monotonic within one
// lowered function and are never reused.
type VarID struct {
	ID        uint64
	DebugName string
}

// TypeDeclaration declares one value type by canonical name. The program
// carries at most one declaration per name.
type TypeDeclaration struct {
	Name string
}

// GenericArgKind distinguishes generic argument payloads.
type GenericArgKind uint8

const (
	// ArgType is a type argument.
	ArgType GenericArgKind = iota
	// ArgValue is an integer argument.
	ArgValue
)

// GenericArg is one generic argument of a libfunc declaration.
type GenericArg struct {
	Kind  GenericArgKind
	Type  string
	Value int64
}

// LibfuncDeclaration declares one callable operation. The program carries
// at most one declaration per concrete Name.
type LibfuncDeclaration struct {
	Name      string
	GenericID string
	Args      []GenericArg
}

// StatementIdx is an absolute position in the statement sequence.
type StatementIdx int

// PlaceholderTarget is the sentinel index branches carry while their
// successor blocks have no statement offsets yet. It must never survive
// branch resolution.
const PlaceholderTarget StatementIdx = StatementIdx(^uint(0) >> 1)

// BranchTarget is either the next statement (fallthrough) or an absolute
// statement index.
type BranchTarget struct {
	Fallthrough bool
	Statement   StatementIdx
}

// Fallthrough returns the fallthrough target.
func Fallthrough() BranchTarget {
	return BranchTarget{Fallthrough: true}
}

// TargetStatement returns an absolute target.
func TargetStatement(idx StatementIdx) BranchTarget {
	return BranchTarget{Statement: idx}
}

// BranchInfo is one outcome of an invocation: where control goes and which
// variables the outcome produces.
type BranchInfo struct {
	Target  BranchTarget
	Results []VarID
}

// StatementKind distinguishes statement payloads.
type StatementKind uint8

const (
	// StatementInvocation invokes a declared libfunc.
	StatementInvocation StatementKind = iota
	// StatementReturn returns from the function.
	StatementReturn
)

// Invocation calls a libfunc with input variables and one or more
// branch outcomes.
type Invocation struct {
	Libfunc  string
	Args     []VarID
	Branches []BranchInfo
}

// Return carries the returned variables in order.
type Return struct {
	Args []VarID
}

// Statement is a tagged union over invocation and return.
type Statement struct {
	Kind       StatementKind
	Invocation Invocation
	Return     Return
}

// EntryPoint records where a lowered function starts in the statement
// sequence.
type EntryPoint struct {
	Name       string
	Entry      StatementIdx
	ParamTypes []string
	RetTypes   []string
}

// Program is the final artifact: ordered declaration tables, the resolved
// statement sequence, and per-function entry points. Immutable once
// assembled.
type Program struct {
	Types      []TypeDeclaration
	Libfuncs   []LibfuncDeclaration
	Statements []Statement
	Funcs      []EntryPoint
}
