// Package parser builds a typed command tree out of a lexer token stream.
package parser

import (
	"fmt"
	"strings"

	"github.com/kvch/myshell/internal/lexer"
)

// ErrKind identifies the shape of a parse failure.
type ErrKind int

// Parse error kinds, each carrying the offending token index.
const (
	CommandIsEmpty ErrKind = iota
	RedirectIsEmpty
	MultiRedirect
	InvalidToken
	ParseFinished
)

// Error is a structured parse failure.
type Error struct {
	Kind  ErrKind
	Token int
}

func (e *Error) Error() string {
	switch e.Kind {
	case CommandIsEmpty:
		return fmt.Sprintf("command is empty (at token %d)", e.Token)
	case RedirectIsEmpty:
		return fmt.Sprintf("redirection target is empty (at token %d)", e.Token)
	case MultiRedirect:
		return fmt.Sprintf("redirected multiple times (at token %d)", e.Token)
	case InvalidToken:
		return fmt.Sprintf("token is invalid (at token %d)", e.Token)
	case ParseFinished:
		return fmt.Sprintf("parser did not reach the end of input (finished at token %d)", e.Token)
	default:
		return "parse error"
	}
}

// Command is a non-empty ordered argv.
type Command struct {
	Args []string
}

func (c Command) String() string { return strings.Join(c.Args, " ") }

// Pipe is a linked list of downstream pipeline stages: command [| command]*.
type Pipe struct {
	Command Command
	Tail    *Pipe
}

// Stages flattens a Pipe chain into a slice, head-first.
func (p *Pipe) Stages() []Command {
	var out []Command
	for p != nil {
		out = append(out, p.Command)
		p = p.Tail
	}
	return out
}

// PipeBlock is one pipeline: a head command, an optional tail of further
// stages, and optional redirection targets.
type PipeBlock struct {
	Command Command
	Tail    *Pipe
	From    *string // < file, stdin of the first stage
	To      *string // > file, stdout of the last stage
	ToErr   *string // 2> file, stderr of the last stage
}

// Stages returns every command in this pipeline, head first.
func (b *PipeBlock) Stages() []Command {
	stages := []Command{b.Command}
	if b.Tail != nil {
		stages = append(stages, b.Tail.Stages()...)
	}
	return stages
}

// Commands is a left-associative chain of PipeBlocks joined by && / ||.
// Represented right-recursively (head + optional tail), evaluated
// left-to-right: the head runs first, and the tail's operator decides
// whether the tail runs at all.
type Commands struct {
	Head PipeBlock
	Op   lexer.Kind // valid only if Tail != nil
	Tail *Commands
}

// Element is one Statement member: a Commands chain plus its background flag.
type Element struct {
	Commands   Commands
	Background bool
}

// Statement is the top-level, ';'-separated sequence of pipeline elements.
type Statement struct {
	Elements []Element
}

// ExpandHome replaces a leading '~' in every Str token with home. This is
// the only expansion the shell performs — no quoting, no globbing, no
// variables.
func ExpandHome(tokens []lexer.Token, home string) []lexer.Token {
	out := make([]lexer.Token, len(tokens))
	for i, t := range tokens {
		if !t.IsOp && strings.HasPrefix(t.Text, "~") {
			t.Text = home + strings.TrimPrefix(t.Text, "~")
		}
		out[i] = t
	}
	return out
}

// Parse lexes and parses a full input line. home is used for '~' expansion.
func Parse(line string, home string) (Statement, error) {
	tokens := lexer.Lex(line)
	return ParseTokens(tokens, home)
}

// ParseTokens parses an already-lexed token stream.
func ParseTokens(tokens []lexer.Token, home string) (Statement, error) {
	tokens = ExpandHome(tokens, home)
	p := &parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return Statement{}, err
	}
	if p.pos != len(p.tokens) {
		return Statement{}, &Error{Kind: ParseFinished, Token: p.pos}
	}
	return stmt, nil
}

// ParsePrefix is the completer's helper: it parses a token prefix (the
// input line with its trailing partial Str removed) and reports either
// the resulting Statement or the first structural error encountered,
// without requiring the whole prefix to form a complete statement.
func ParsePrefix(tokens []lexer.Token, home string) (Statement, error) {
	tokens = ExpandHome(tokens, home)
	p := &parser{tokens: tokens}
	return p.parseStatement()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) at(i int) (lexer.Token, bool) {
	if i < 0 || i >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[i], true
}

func (p *parser) parseStatement() (Statement, error) {
	var stmt Statement
	for p.pos < len(p.tokens) {
		if t := p.tokens[p.pos]; t.IsOp && t.Op == lexer.Semicolon {
			p.pos++
			continue
		}
		cmds, err := p.parseCommands()
		if err != nil {
			return Statement{}, err
		}
		background := false
		if t, ok := p.at(p.pos); ok && t.IsOp && t.Op == lexer.And {
			background = true
			p.pos++
		}
		stmt.Elements = append(stmt.Elements, Element{Commands: cmds, Background: background})
	}
	return stmt, nil
}

func (p *parser) parseCommands() (Commands, error) {
	head, err := p.parsePipeBlock()
	if err != nil {
		return Commands{}, err
	}
	t, ok := p.at(p.pos)
	if !ok || !t.IsOp || (t.Op != lexer.AndAnd && t.Op != lexer.OrOr) {
		return Commands{Head: head}, nil
	}
	p.pos++
	tail, err := p.parseCommands()
	if err != nil {
		return Commands{}, err
	}
	return Commands{Head: head, Op: t.Op, Tail: &tail}, nil
}

func (p *parser) parseCommand() (Command, error) {
	start := p.pos
	var args []string
	for {
		t, ok := p.at(p.pos)
		if !ok || t.IsOp {
			break
		}
		args = append(args, t.Text)
		p.pos++
	}
	if len(args) == 0 {
		return Command{}, &Error{Kind: CommandIsEmpty, Token: start}
	}
	return Command{Args: args}, nil
}

func (p *parser) parsePipe() (*Pipe, error) {
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	pipe := &Pipe{Command: cmd}
	if t, ok := p.at(p.pos); ok && t.IsOp && t.Op == lexer.Pipe {
		p.pos++
		tail, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		pipe.Tail = tail
	}
	return pipe, nil
}

// parseRedirections consumes up to two redirection operators (> and 2>,
// in either order), writing into to/toErr. It stops (without consuming
// or erroring) as soon as the current token isn't a redirection operator.
func (p *parser) parseRedirections(to, toErr **string) error {
	for range [2]struct{}{} {
		t, ok := p.at(p.pos)
		if !ok || !t.IsOp || (t.Op != lexer.Greater && t.Op != lexer.ErrRedirect) {
			return nil
		}
		target := to
		if t.Op == lexer.ErrRedirect {
			target = toErr
		}
		valTok, ok := p.at(p.pos + 1)
		if !ok || valTok.IsOp {
			return &Error{Kind: RedirectIsEmpty, Token: p.pos}
		}
		if *target != nil {
			return &Error{Kind: MultiRedirect, Token: p.pos}
		}
		v := valTok.Text
		*target = &v
		p.pos += 2
	}
	return nil
}

func (p *parser) parsePipeBlock() (PipeBlock, error) {
	cmd, err := p.parseCommand()
	if err != nil {
		return PipeBlock{}, err
	}
	block := PipeBlock{Command: cmd}

	if t, ok := p.at(p.pos); ok && t.IsOp && t.Op == lexer.Less {
		valTok, ok := p.at(p.pos + 1)
		if !ok || valTok.IsOp {
			return PipeBlock{}, &Error{Kind: RedirectIsEmpty, Token: p.pos}
		}
		v := valTok.Text
		block.From = &v
		p.pos += 2
	}

	if err := p.parseRedirections(&block.To, &block.ToErr); err != nil {
		return PipeBlock{}, err
	}
	if block.To != nil || block.ToErr != nil {
		// A redirect bound directly to the head means this PipeBlock has
		// no further stages — redirects only ever target the tail.
		return block, nil
	}

	if t, ok := p.at(p.pos); ok && t.IsOp && t.Op == lexer.Pipe {
		p.pos++
		tail, err := p.parsePipe()
		if err != nil {
			return PipeBlock{}, err
		}
		block.Tail = tail
		if err := p.parseRedirections(&block.To, &block.ToErr); err != nil {
			return PipeBlock{}, err
		}
	}
	return block, nil
}

// String renders a Statement back to a line, used by the round-trip tests.
func (s Statement) String() string {
	var b strings.Builder
	for i, e := range s.Elements {
		if i > 0 {
			b.WriteString(" ; ")
		}
		b.WriteString(e.Commands.String())
		if e.Background {
			b.WriteString(" &")
		}
	}
	return b.String()
}

func (c Commands) String() string {
	s := c.Head.String()
	if c.Tail != nil {
		s += " " + c.Op.String() + " " + c.Tail.String()
	}
	return s
}

func (b PipeBlock) String() string {
	s := b.Command.String()
	if b.From != nil {
		s += " < " + *b.From
	}
	for p := b.Tail; p != nil; p = p.Tail {
		s += " | " + p.Command.String()
	}
	if b.To != nil {
		s += " > " + *b.To
	}
	if b.ToErr != nil {
		s += " 2> " + *b.ToErr
	}
	return s
}
