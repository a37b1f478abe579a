package editor

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	buf  bytes.Buffer
	done chan struct{}
}

func (c *capture) String() string {
	<-c.done
	return c.buf.String()
}

func newTestEditor() (*LineEditor, *capture) {
	e := &LineEditor{out: nil}
	// out is an *os.File in production; tests redirect via a pipe so
	// fmt.Fprint still lands in a buffer we can assert against.
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	e.out = w
	cap := &capture{done: make(chan struct{})}
	go func() {
		cap.buf.ReadFrom(r)
		close(cap.done)
	}()
	return e, cap
}

func TestInsertCharAtEndOfBuffer(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.insertChar('a')
	e.insertChar('b')
	e.insertChar('c')
	assert.Equal(t, "abc", string(e.buffer))
	assert.Equal(t, 0, e.cur)
}

func TestInsertCharAtCursorMidBuffer(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.buffer = []rune("ac")
	e.cur = 1 // cursor sits before the trailing 'c'
	e.insertChar('b')
	assert.Equal(t, "abc", string(e.buffer))
	assert.Equal(t, 1, e.cur)
}

func TestDeleteBeforeCursor(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.buffer = []rune("abc")
	e.cur = 0
	require.True(t, e.deleteBeforeCursor())
	assert.Equal(t, "ab", string(e.buffer))
}

func TestDeleteBeforeCursorRespectsOffset(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.buffer = []rune("abc")
	e.cur = 1 // cursor between 'b' and 'c'
	require.True(t, e.deleteBeforeCursor())
	assert.Equal(t, "ac", string(e.buffer))
}

func TestDeleteBeforeCursorAtStartIsNoOp(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.buffer = []rune("abc")
	e.cur = 3 // cursor at the very start
	assert.False(t, e.deleteBeforeCursor())
	assert.Equal(t, "abc", string(e.buffer))
}

func TestHistoryBackAndForwardWraps(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	hist := []string{"echo one", "echo two", "echo three"}

	e.historyBack(hist)
	require.NotNil(t, e.historyCur)
	assert.Equal(t, 2, *e.historyCur)
	assert.Equal(t, "echo three", string(e.buffer))

	e.historyBack(hist)
	assert.Equal(t, 1, *e.historyCur)

	e.historyForward(hist)
	assert.Equal(t, 2, *e.historyCur)

	e.historyForward(hist)
	assert.Nil(t, e.historyCur)
}

func TestApplySuggestionAppendsAndClears(t *testing.T) {
	e, cap := newTestEditor()
	e.buffer = []rune("ec")
	e.suggestion = []rune("ho")
	e.applySuggestion()
	e.out.Close()
	assert.Equal(t, "echo", string(e.buffer))
	assert.Nil(t, e.suggestion)
	assert.Contains(t, cap.String(), "ho")
}

func TestRenderCompletionSetsGhostSuggestion(t *testing.T) {
	e, cap := newTestEditor()
	e.buffer = []rune("ec")
	e.RenderCompletion("prompt> ", 0, []string{"echo", "exit"})
	e.out.Close()
	assert.Equal(t, []rune("ho"), e.suggestion)
	out := cap.String()
	assert.True(t, strings.Contains(out, "echo") || strings.Contains(out, "exit"))
}

func TestRenderCompletionNoMatchesClearsSuggestion(t *testing.T) {
	e, _ := newTestEditor()
	defer e.out.Close()
	e.buffer = []rune("zz")
	e.RenderCompletion("prompt> ", 0, nil)
	assert.Nil(t, e.suggestion)
}
