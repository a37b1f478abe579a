// Package lexer turns a raw input line into a stream of shell tokens.
package lexer

import (
	"strings"
	"unicode"
)

// Kind identifies an operator token's role in the grammar.
type Kind int

// Operator kinds recognized by the lexer.
const (
	And Kind = iota
	AndAnd
	Or
	OrOr
	Pipe
	Less
	LessLess
	Greater
	GreaterGreater
	ErrRedirect
	Semicolon
)

func (k Kind) String() string {
	switch k {
	case And:
		return "&"
	case AndAnd:
		return "&&"
	case Or:
		return "|"
	case OrOr:
		return "||"
	case Pipe:
		return "|"
	case Less:
		return "<"
	case LessLess:
		return "<<"
	case Greater:
		return ">"
	case GreaterGreater:
		return ">>"
	case ErrRedirect:
		return "2>"
	case Semicolon:
		return ";"
	default:
		return "?"
	}
}

// Token is a single lexical unit: either an operator or a string run.
type Token struct {
	Text string
	Op   Kind
	IsOp bool
}

func opToken(op Kind) Token   { return Token{IsOp: true, Op: op, Text: op.String()} }
func strToken(s string) Token { return Token{Text: s} }

// operators is checked in order at every scan position so the longer,
// maximal-munch form always wins over its single-character prefix:
// "2>" beats a Str starting with '2', "&&" beats two "&", "||"/"<<"/">>"
// beat their singleton forms.
var operators = []struct {
	text string
	kind Kind
}{
	{"2>", ErrRedirect},
	{"&&", AndAnd},
	{"||", OrOr},
	{"<<", LessLess},
	{">>", GreaterGreater},
	{"&", And},
	{"|", Pipe},
	{"<", Less},
	{">", Greater},
	{";", Semicolon},
}

// Lex scans a line into a token stream. The accepted surface never fails:
// any byte sequence degrades to Str tokens around the recognized operators.
func Lex(line string) []Token {
	var tokens []Token
	runes := []rune(line)
	runes = append(runes, ' ') // sentinel to flush the trailing run
	n := len(runes)

	i := 0
	start := 0
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, strToken(string(runes[start:end])))
		}
	}

	for i < n {
		if op, size, ok := matchOperator(runes, i); ok {
			flush(i)
			tokens = append(tokens, opToken(op))
			i += size
			start = i
			continue
		}
		if unicode.IsSpace(runes[i]) {
			flush(i)
			i++
			start = i
			continue
		}
		i++
	}
	return tokens
}

// matchOperator reports the longest operator starting at runes[i], if any.
func matchOperator(runes []rune, i int) (Kind, int, bool) {
	for _, o := range operators {
		oprunes := []rune(o.text)
		if i+len(oprunes) > len(runes) {
			continue
		}
		match := true
		for k, r := range oprunes {
			if runes[i+k] != r {
				match = false
				break
			}
		}
		if match {
			return o.kind, len(oprunes), true
		}
	}
	return 0, 0, false
}

// String renders a token stream back to a line, for round-trip tests.
func String(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
