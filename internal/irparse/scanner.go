package irparse

import (
	"fmt"

	"fortio.org/safecast"

	"siergen/internal/diag"
	"siergen/internal/source"
)

// scan tokenizes the whole file up front. Comments (';' to end of line)
// are dropped; newlines are kept because instructions are line-oriented
// and unsupported mnemonics are skipped to the end of their line.
func scan(file *source.File, bag *diag.Bag) []Token {
	content := file.Content
	toks := make([]Token, 0, len(content)/4)
	i := 0

	span := func(start, end int) source.Span {
		s, err := safecast.Conv[uint32](start)
		if err != nil {
			panic(fmt.Errorf("offset overflow: %w", err))
		}
		e, err := safecast.Conv[uint32](end)
		if err != nil {
			panic(fmt.Errorf("offset overflow: %w", err))
		}
		return source.Span{File: file.ID, Start: s, End: e}
	}

	emit := func(kind TokKind, start, end int) {
		toks = append(toks, Token{Kind: kind, Text: string(content[start:end]), Span: span(start, end)})
	}

	for i < len(content) {
		c := content[i]
		switch {
		case c == '\n':
			// Collapse runs of blank lines into one newline token.
			if len(toks) > 0 && toks[len(toks)-1].Kind != TokNewline {
				emit(TokNewline, i, i+1)
			}
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == ';':
			for i < len(content) && content[i] != '\n' {
				i++
			}
		case c == '%' || c == '@':
			start := i
			i++
			for i < len(content) && isIdentChar(content[i]) {
				i++
			}
			kind := TokLocal
			if c == '@' {
				kind = TokGlobal
			}
			if i == start+1 {
				bag.Add(diag.NewError(diag.LexUnknownChar, span(start, i), fmt.Sprintf("dangling %q", string(c))))
				emit(TokError, start, i)
				continue
			}
			// Text excludes the sigil.
			toks = append(toks, Token{Kind: kind, Text: string(content[start+1 : i]), Span: span(start, i)})
		case isDigit(c) || (c == '-' && i+1 < len(content) && isDigit(content[i+1])):
			start := i
			i++
			for i < len(content) && isDigit(content[i]) {
				i++
			}
			// Digits running into identifier characters (12ab, 1.5) are a
			// single malformed literal, not two tokens.
			if i < len(content) && isIdentStart(content[i]) {
				for i < len(content) && isIdentChar(content[i]) {
					i++
				}
				bag.Add(diag.NewError(diag.LexBadNumber, span(start, i), fmt.Sprintf("malformed number %q", string(content[start:i]))))
				emit(TokError, start, i)
				continue
			}
			emit(TokInt, start, i)
		case isIdentStart(c):
			start := i
			for i < len(content) && isIdentChar(content[i]) {
				i++
			}
			emit(TokIdent, start, i)
		default:
			switch c {
			case ',':
				emit(TokComma, i, i+1)
			case '(':
				emit(TokLParen, i, i+1)
			case ')':
				emit(TokRParen, i, i+1)
			case '{':
				emit(TokLBrace, i, i+1)
			case '}':
				emit(TokRBrace, i, i+1)
			case '[':
				emit(TokLBracket, i, i+1)
			case ']':
				emit(TokRBracket, i, i+1)
			case '=':
				emit(TokEq, i, i+1)
			case ':':
				emit(TokColon, i, i+1)
			case '*':
				emit(TokStar, i, i+1)
			default:
				bag.Add(diag.NewError(diag.LexUnknownChar, span(i, i+1), fmt.Sprintf("unknown character %q", string(c))))
				emit(TokError, i, i+1)
			}
			i++
		}
	}

	end := len(content)
	toks = append(toks, Token{Kind: TokEOF, Span: span(end, end)})
	return toks
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '.'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
