// Package editor implements the raw-mode line editor: a byte-at-a-time
// state machine over stdin that accumulates a command buffer, tracks an
// in-line cursor, and renders ghost-text completion suggestions.
package editor

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/kvch/myshell/internal/ui"
)

// Event is either a finished command line or an in-progress edit that
// should re-run completion.
type Event interface{ isEvent() }

// CommandEvent carries a finished line, ready for the lexer.
type CommandEvent struct{ Line string }

// PartialEvent carries the current buffer after an insertion or
// deletion, so the completer can refresh its suggestions.
type PartialEvent struct{ Line string }

func (CommandEvent) isEvent() {}
func (PartialEvent) isEvent() {}

const (
	escape = '\x1b'
	del    = '\x7f'
)

// LineEditor owns the terminal fd and the in-progress command buffer.
// cur counts runes from the END of buffer — the distance the visual
// cursor sits behind the last character — which makes the right/left
// arrow handlers a plain increment/decrement against len(buffer).
type LineEditor struct {
	in  *os.File
	out *os.File

	buffer     []rune
	cur        int
	historyCur *int
	suggestion []rune
}

// New builds a LineEditor reading from in and writing to out.
func New(in, out *os.File) *LineEditor {
	return &LineEditor{in: in, out: out}
}

// WriteHeader prints the prompt. Callers print it once before the first
// ReadEvent of a line, and RenderCompletion reprints it on every redraw.
func (e *LineEditor) WriteHeader(prompt string) {
	fmt.Fprint(e.out, prompt)
}

// ReadEvent enters raw mode, reads and interprets keystrokes until a
// full command line or an edit worth re-completing is produced, then
// restores the prior terminal mode before returning.
func (e *LineEditor) ReadEvent(history []string) (Event, error) {
	oldState, err := term.MakeRaw(int(e.in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		e.restoreCursor()
		_ = term.Restore(int(e.in.Fd()), oldState)
	}()

	var b [1]byte
	var pending []byte
	escapeState := 0

	for {
		n, err := e.in.Read(b[:])
		if err != nil {
			// A closed stdin delivers EOF here; propagating it (rather
			// than executing whatever is left in buffer) lets the REPL
			// shut down cleanly instead of spinning on a stream that will
			// never produce another byte. Ctrl-D itself arrives as byte
			// 0x04 in raw mode and is ignored like other control bytes.
			return nil, err
		}
		if n == 0 {
			continue
		}
		pending = append(pending, b[0])
		if !utf8.FullRune(pending) {
			continue
		}
		c, _ := utf8.DecodeRune(pending)
		pending = pending[:0]

		if escapeState == 1 {
			if c == '[' {
				escapeState = 2
				continue
			}
			escapeState = 0
		} else if escapeState == 2 {
			e.handleCSI(c, history)
			escapeState = 0
			continue
		}

		switch {
		case c == '\n' || c == '\r':
			e.restoreCursor()
			fmt.Fprint(e.out, "\x1b[J\r\n")
			line := string(e.buffer)
			e.buffer = nil
			e.cur = 0
			e.historyCur = nil
			return CommandEvent{Line: line}, nil
		case c == '\t':
			e.restoreCursor()
			e.applySuggestion()
		case c == del:
			if e.deleteBeforeCursor() {
				fmt.Fprint(e.out, "\x1b[D\x1b[J")
			}
			return PartialEvent{Line: string(e.buffer)}, nil
		case c == escape:
			escapeState = 1
		case isControl(c):
			// ignored
		default:
			e.insertChar(c)
			return PartialEvent{Line: string(e.buffer)}, nil
		}
	}
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func (e *LineEditor) handleCSI(final rune, history []string) {
	switch final {
	case 'A':
		e.resetDisplay()
		e.historyBack(history)
	case 'B':
		e.resetDisplay()
		e.historyForward(history)
	case 'C':
		if e.cur != 0 {
			e.cur--
			fmt.Fprint(e.out, "\x1b[C")
		}
	case 'D':
		if e.cur != len(e.buffer) {
			e.cur++
			fmt.Fprint(e.out, "\x1b[D")
		}
	}
}

func (e *LineEditor) historyBack(history []string) {
	switch {
	case e.historyCur == nil:
		if len(history) == 0 {
			return
		}
		idx := len(history) - 1
		e.historyCur = &idx
	case *e.historyCur == 0:
		e.historyCur = nil
	default:
		idx := *e.historyCur - 1
		e.historyCur = &idx
	}
	if e.historyCur != nil {
		e.setBuffer(history[*e.historyCur])
	}
}

func (e *LineEditor) historyForward(history []string) {
	switch {
	case e.historyCur == nil:
		if len(history) == 0 {
			return
		}
		idx := 0
		e.historyCur = &idx
	case *e.historyCur+1 == len(history):
		e.historyCur = nil
	default:
		idx := *e.historyCur + 1
		e.historyCur = &idx
	}
	if e.historyCur != nil {
		e.setBuffer(history[*e.historyCur])
	}
}

// setBuffer overwrites the buffer (used by history browsing) and prints
// the new content; resetDisplay must have cleared the old line first.
func (e *LineEditor) setBuffer(line string) {
	fmt.Fprint(e.out, line)
	e.buffer = []rune(line)
	e.cur = 0
}

// resetDisplay erases the current line's on-screen content back to the
// prompt, without touching e.buffer — the caller replaces it next.
func (e *LineEditor) resetDisplay() {
	diff := len(e.buffer) - e.cur
	if diff != 0 {
		fmt.Fprintf(e.out, "\x1b[%dD", diff)
	}
	fmt.Fprint(e.out, "\x1b[J")
	e.buffer = nil
	e.cur = 0
}

// restoreCursor moves the physical cursor back to the end of the buffer
// (undoing any left-arrow moves) before the terminal mode is restored
// or the line is finalized.
func (e *LineEditor) restoreCursor() {
	if e.cur != 0 {
		fmt.Fprintf(e.out, "\x1b[%dC", e.cur)
	}
	e.cur = 0
}

// insertChar inserts ch at the cursor: it pops the e.cur trailing runes,
// appends ch, then replays the popped runes back on top, redrawing as
// it goes — mirroring the terminal side-effects of an in-place insert
// without ever shifting a slice.
func (e *LineEditor) insertChar(ch rune) {
	tail := make([]rune, e.cur)
	for i := 0; i < e.cur; i++ {
		tail[i] = e.buffer[len(e.buffer)-1]
		e.buffer = e.buffer[:len(e.buffer)-1]
	}
	fmt.Fprint(e.out, "\x1b[J")
	e.buffer = append(e.buffer, ch)
	fmt.Fprintf(e.out, "%c", ch)
	for i := len(tail) - 1; i >= 0; i-- {
		e.buffer = append(e.buffer, tail[i])
		fmt.Fprintf(e.out, "%c", tail[i])
	}
	if e.cur != 0 {
		fmt.Fprintf(e.out, "\x1b[%dD", e.cur)
	}
}

// deleteBeforeCursor removes the rune immediately before the cursor, if
// any, reporting whether it removed one.
func (e *LineEditor) deleteBeforeCursor() bool {
	pos := len(e.buffer) - e.cur - 1
	if pos < 0 {
		return false
	}
	e.buffer = append(e.buffer[:pos], e.buffer[pos+1:]...)
	return true
}

func (e *LineEditor) applySuggestion() {
	if e.suggestion != nil {
		fmt.Fprint(e.out, string(e.suggestion))
		e.buffer = append(e.buffer, e.suggestion...)
	}
	e.suggestion = nil
}

// RenderCompletion redraws the completion scratch area below the
// prompt: the current line, a dimmed ghost-text suffix for the best
// match (anchored at offset, the start of the active Str), and the
// full tab-separated suggestion list, then restores the saved cursor
// position. It is the Go translation of the original `write_comp`
// redraw contract.
func (e *LineEditor) RenderCompletion(prompt string, offset int, matches []string) {
	fmt.Fprint(e.out, "\x1b[J")
	fmt.Fprint(e.out, "\x1b[3B\x1b[3A\x1b[J")
	fmt.Fprint(e.out, "\x1b[1000D")
	fmt.Fprint(e.out, prompt)
	input := string(e.buffer)
	fmt.Fprint(e.out, input)

	fmt.Fprint(e.out, "\x1b7") // save cursor

	pattern := ""
	if len(matches) > 0 && offset <= len(input) {
		pattern = input[offset:]
	}
	if len(matches) > 0 && len(pattern) < len(matches[0]) {
		suffix := matches[0][len(pattern):]
		fmt.Fprint(e.out, ui.RenderGhostText(suffix))
		fmt.Fprintf(e.out, "\x1b[%dD", runewidth.StringWidth(suffix))
		e.suggestion = []rune(suffix)
	} else {
		e.suggestion = nil
	}

	fmt.Fprint(e.out, "\r\n")
	if len(matches) > 0 {
		fmt.Fprint(e.out, "\x1b[?7l")
		fmt.Fprint(e.out, ui.RenderSuggestions(matches))
		fmt.Fprint(e.out, "\x1b[?7h")
	}

	fmt.Fprint(e.out, "\x1b8") // restore cursor
}

// Clear resets the in-progress buffer, used after a Command event has
// been fully handled.
func (e *LineEditor) Clear() {
	e.buffer = nil
	e.cur = 0
	e.historyCur = nil
	e.suggestion = nil
}
