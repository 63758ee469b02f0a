package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind.
type Code uint16

const (
	UnknownCode Code = 0

	// Scanner codes.
	LexUnknownChar Code = 1001
	LexBadNumber   Code = 1002

	// IR parser codes.
	SynUnexpectedToken   Code = 2001
	SynExpectType        Code = 2002
	SynExpectValue       Code = 2003
	SynExpectLabel       Code = 2004
	SynDuplicateLabel    Code = 2005
	SynUndefinedLabel    Code = 2006
	SynUnclosedFunction  Code = 2007
	SynUnterminatedBlock Code = 2008
	SynDuplicateValue    Code = 2009

	// Lowering notes (informational; hard failures are Go errors).
	LowSkippedInstruction Code = 3001
)

func (c Code) String() string {
	return fmt.Sprintf("SG%04d", uint16(c))
}
