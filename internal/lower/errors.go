package lower

import "errors"

// Lowering failures are fatal for the compilation unit: the input CFG is a
// pure value, so retrying without changing it reproduces the same failure.
// There is no partial-success mode.
var (
	// ErrUnboundValue means a value was used before lowering bound it; the
	// input does not satisfy SSA ordering.
	ErrUnboundValue = errors.New("value used before binding")

	// ErrTypeMismatch means comparison operands disagree in type.
	ErrTypeMismatch = errors.New("comparison operand types differ")

	// ErrUnresolvedBlock means a branch references a block that was never
	// lowered to any statement.
	ErrUnresolvedBlock = errors.New("branch target block was never lowered")

	// ErrMalformedConstant means a literal could not be parsed as an
	// integer of the expected width.
	ErrMalformedConstant = errors.New("malformed integer constant")

	// ErrRebound means a non-constant value was bound twice; bindings are
	// write-once outside constant materialization.
	ErrRebound = errors.New("value bound twice")
)
