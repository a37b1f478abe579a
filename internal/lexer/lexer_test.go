package lexer_test

import (
	"testing"

	"github.com/kvch/myshell/internal/lexer"
	"github.com/stretchr/testify/assert"
)

func kinds(tokens []lexer.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if t.IsOp {
			out[i] = "op:" + t.Op.String()
		} else {
			out[i] = "str:" + t.Text
		}
	}
	return out
}

func TestMaximalMunch(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"2>", []string{"op:2>"}},
		{"2 >", []string{"str:2", "op:>"}},
		{"&&", []string{"op:&&"}},
		{"& &", []string{"op:&", "op:&"}},
		{"||", []string{"op:||"}},
		{"<<", []string{"op:<<"}},
		{">>", []string{"op:>>"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, kinds(lexer.Lex(c.in)), "input %q", c.in)
	}
}

func TestWordsAndOperators(t *testing.T) {
	got := kinds(lexer.Lex("ls -la | grep foo > out.txt"))
	want := []string{"str:ls", "str:-la", "op:|", "str:grep", "str:foo", "op:>", "str:out.txt"}
	assert.Equal(t, want, got)
}

func TestIdempotentRoundTrip(t *testing.T) {
	line := "echo hi && false || true ; ls | wc -l 2> err.txt"
	tokens := lexer.Lex(line)
	again := lexer.Lex(lexer.String(tokens))
	assert.Equal(t, kinds(tokens), kinds(again))
}

func TestEmptyLine(t *testing.T) {
	assert.Empty(t, lexer.Lex(""))
	assert.Empty(t, lexer.Lex("   "))
}
