package parser_test

import (
	"testing"

	"github.com/kvch/myshell/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleCommand(t *testing.T) {
	stmt, err := parser.Parse("ls -la", "/home/user")
	require.NoError(t, err)
	require.Len(t, stmt.Elements, 1)
	assert.Equal(t, []string{"ls", "-la"}, stmt.Elements[0].Commands.Head.Command.Args)
	assert.False(t, stmt.Elements[0].Background)
}

func TestParsePipeline(t *testing.T) {
	stmt, err := parser.Parse("ls -la | grep foo | wc -l", "/home/user")
	require.NoError(t, err)
	block := stmt.Elements[0].Commands.Head
	stages := block.Stages()
	require.Len(t, stages, 3)
	assert.Equal(t, []string{"ls", "-la"}, stages[0].Args)
	assert.Equal(t, []string{"grep", "foo"}, stages[1].Args)
	assert.Equal(t, []string{"wc", "-l"}, stages[2].Args)
}

func TestParseRedirectionsOnSingleStage(t *testing.T) {
	stmt, err := parser.Parse("sort < in.txt > out.txt 2> err.txt", "/home/user")
	require.NoError(t, err)
	block := stmt.Elements[0].Commands.Head
	require.NotNil(t, block.From)
	require.NotNil(t, block.To)
	require.NotNil(t, block.ToErr)
	assert.Equal(t, "in.txt", *block.From)
	assert.Equal(t, "out.txt", *block.To)
	assert.Equal(t, "err.txt", *block.ToErr)
	assert.Nil(t, block.Tail)
}

func TestParseRedirectionAfterPipeTail(t *testing.T) {
	stmt, err := parser.Parse("ls | wc -l > out.txt", "/home/user")
	require.NoError(t, err)
	block := stmt.Elements[0].Commands.Head
	require.NotNil(t, block.Tail)
	require.NotNil(t, block.To)
	assert.Equal(t, "out.txt", *block.To)
}

func TestParseConjunctions(t *testing.T) {
	stmt, err := parser.Parse("false || true && echo ok", "/home/user")
	require.NoError(t, err)
	cmds := stmt.Elements[0].Commands
	assert.Equal(t, []string{"false"}, cmds.Head.Command.Args)
	require.NotNil(t, cmds.Tail)
	assert.Equal(t, []string{"true"}, cmds.Tail.Head.Command.Args)
	require.NotNil(t, cmds.Tail.Tail)
	assert.Equal(t, []string{"echo", "ok"}, cmds.Tail.Tail.Head.Command.Args)
}

func TestParseSequenceAndBackground(t *testing.T) {
	stmt, err := parser.Parse("sleep 1 & ; echo done", "/home/user")
	require.NoError(t, err)
	require.Len(t, stmt.Elements, 2)
	assert.True(t, stmt.Elements[0].Background)
	assert.False(t, stmt.Elements[1].Background)
}

func TestParseHomeExpansion(t *testing.T) {
	stmt, err := parser.Parse("cat ~/notes.txt", "/home/user")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "/home/user/notes.txt"}, stmt.Elements[0].Commands.Head.Command.Args)
}

func TestParseErrorCommandIsEmpty(t *testing.T) {
	_, err := parser.Parse("| ls", "/home/user")
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.CommandIsEmpty, perr.Kind)
}

func TestParseErrorRedirectIsEmpty(t *testing.T) {
	_, err := parser.Parse("ls >", "/home/user")
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.RedirectIsEmpty, perr.Kind)
}

func TestParseErrorMultiRedirect(t *testing.T) {
	_, err := parser.Parse("ls > a > b", "/home/user")
	require.Error(t, err)
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.MultiRedirect, perr.Kind)
}

func TestParseRoundTrip(t *testing.T) {
	lines := []string{
		"echo hi",
		"ls -la | grep foo",
		"false || true && echo ok",
		"sort < in.txt > out.txt",
	}
	for _, line := range lines {
		stmt, err := parser.Parse(line, "/home/user")
		require.NoError(t, err, "line %q", line)
		again, err := parser.Parse(stmt.String(), "/home/user")
		require.NoError(t, err, "re-parsing %q", stmt.String())
		assert.Equal(t, stmt, again, "round-trip mismatch for %q", line)
	}
}
