package irparse

import (
	"siergen/internal/source"
)

// TokKind enumerates token kinds of the textual IR.
type TokKind uint8

const (
	TokEOF TokKind = iota
	TokNewline
	TokIdent  // define, icmp, i32, label, ...
	TokLocal  // %name
	TokGlobal // @name
	TokInt    // 42, -7
	TokComma
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokEq
	TokColon
	TokStar
	TokError
)

// Token is one lexeme with its source span.
type Token struct {
	Kind TokKind
	Text string
	Span source.Span
}

func (k TokKind) String() string {
	switch k {
	case TokEOF:
		return "end of file"
	case TokNewline:
		return "end of line"
	case TokIdent:
		return "identifier"
	case TokLocal:
		return "local value"
	case TokGlobal:
		return "global name"
	case TokInt:
		return "integer"
	case TokComma:
		return "','"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokLBrace:
		return "'{'"
	case TokRBrace:
		return "'}'"
	case TokLBracket:
		return "'['"
	case TokRBracket:
		return "']'"
	case TokEq:
		return "'='"
	case TokColon:
		return "':'"
	case TokStar:
		return "'*'"
	case TokError:
		return "invalid token"
	}
	return "unknown token"
}
