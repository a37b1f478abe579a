// Package completion implements the ranked-prefix completion algorithm:
// classify the cursor position (a new command, or mid-command path
// argument), then consult either the trie or the filesystem.
package completion

import (
	"errors"
	"os"
	"sort"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/kvch/myshell/internal/environment"
	"github.com/kvch/myshell/internal/lexer"
	"github.com/kvch/myshell/internal/parser"
)

// Complete returns the byte offset in line at which suggestions should
// replace, and the ordered suggestion list.
func Complete(line string, env *environment.Environment) (int, []string) {
	tokens := lexer.Lex(line)
	if len(tokens) == 0 {
		return 0, nil
	}

	var active string
	var checkTokens []lexer.Token
	anchor := len(line)

	if endsInWhitespace(line) || tokens[len(tokens)-1].IsOp {
		checkTokens = tokens
	} else {
		last := tokens[len(tokens)-1]
		active = last.Text
		checkTokens = tokens[:len(tokens)-1]
		anchor = len(line) - len(active)
	}

	mode, precededByCd := classify(checkTokens, env.Home)

	if mode == modeBin && startsWithPathHint(active) {
		mode = modePath
	}
	dirsOnly := mode == modePath && precededByCd

	var matches []string
	switch mode {
	case modeBin:
		anchor, matches = anchor, binCompletion(active, env)
	case modePath:
		anchor, matches = pathCompletion(active, anchor, env.Home, dirsOnly)
	default:
		return 0, nil
	}
	return anchor, capMatches(matches, env.Config.MaxSuggestions)
}

// capMatches truncates the ranked match list to the user's configured
// max, leaving it untouched when the config value is non-positive.
func capMatches(matches []string, max int) []string {
	if max > 0 && len(matches) > max {
		return matches[:max]
	}
	return matches
}

func endsInWhitespace(line string) bool {
	if line == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(line)
	return r == ' ' || r == '\t' || r == '\n'
}

type completionMode int

const (
	modeInvalid completionMode = iota
	modeBin
	modePath
)

// classify determines whether the tokens preceding the active Str leave
// the cursor at a fresh command position (Bin) or mid-command (Path),
// and whether the immediately preceding token is the "cd" builtin.
func classify(checkTokens []lexer.Token, home string) (completionMode, bool) {
	precededByCd := len(checkTokens) > 0 && !checkTokens[len(checkTokens)-1].IsOp && checkTokens[len(checkTokens)-1].Text == "cd"

	_, err := parser.ParsePrefix(checkTokens, home)
	if err == nil {
		if len(checkTokens) == 0 || checkTokens[len(checkTokens)-1].IsOp {
			return modeBin, precededByCd
		}
		return modePath, precededByCd
	}

	var perr *parser.Error
	if errors.As(err, &perr) {
		switch perr.Kind {
		case parser.CommandIsEmpty:
			if perr.Token == len(checkTokens) {
				return modeBin, precededByCd
			}
		case parser.RedirectIsEmpty:
			return modePath, precededByCd
		}
	}
	return modeInvalid, false
}

func startsWithPathHint(active string) bool {
	return strings.HasPrefix(active, "~") || strings.HasPrefix(active, ".") || strings.HasPrefix(active, "/")
}

func binCompletion(active string, env *environment.Environment) []string {
	env.Trie.Reset()
	for _, c := range active {
		env.Trie.Search(c)
	}
	matches := env.Trie.GetMatchTexts()
	env.Trie.Reset()
	return matches
}

func pathCompletion(active string, activeAnchor int, home string, dirsOnly bool) (int, []string) {
	if active == "~" || (strings.HasPrefix(active, "~") && !strings.HasPrefix(active, "~/")) {
		return 0, nil
	}

	expanded := active
	if strings.HasPrefix(expanded, "~") {
		expanded = home + strings.TrimPrefix(expanded, "~")
	} else if !strings.HasPrefix(expanded, "/") && !strings.HasPrefix(expanded, ".") {
		expanded = "./" + expanded
	}

	idx := strings.LastIndexByte(expanded, '/')
	parentDir, query := ".", expanded
	if idx >= 0 {
		parentDir, query = expanded[:idx], expanded[idx+1:]
		if parentDir == "" {
			parentDir = "/"
		}
	}

	// The anchor always points at the final segment of the ORIGINAL,
	// unexpanded active text: expansion only ever rewrites a prefix
	// (the leading "~" or an implicit "./"), never the trailing segment
	// that is still being typed, so its position in line is just the
	// byte after the last '/' in active itself.
	anchor := activeAnchor
	if slash := strings.LastIndexByte(active, '/'); slash >= 0 {
		anchor = activeAnchor + slash + 1
	}

	entries, err := os.ReadDir(parentDir)
	if err != nil {
		return anchor, nil
	}

	type candidate struct {
		display string
		dotfile bool
		atime   int64
	}
	var cands []candidate
	for _, e := range entries {
		if dirsOnly && !e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(query, ".") {
			continue
		}
		if !strings.HasPrefix(name, query) {
			continue
		}
		display := name
		if e.IsDir() {
			display += "/"
		}
		cands = append(cands, candidate{
			display: display,
			dotfile: strings.HasPrefix(name, "."),
			atime:   accessedTime(parentDir, e),
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dotfile != cands[j].dotfile {
			return !cands[i].dotfile
		}
		return cands[i].atime > cands[j].atime
	})

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.display
	}
	return anchor, out
}

func accessedTime(dir string, e os.DirEntry) int64 {
	info, err := e.Info()
	if err != nil {
		return 0
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return stat.Atim.Sec
}
