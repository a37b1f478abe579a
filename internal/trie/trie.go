// Package trie is a byte-level compressed trie over a fixed, deduplicated
// set of candidate strings, ranked by historical usage.
package trie

import (
	"sort"
	"unicode/utf8"
)

// node covers the half-open range [l, r) of Trie.texts that share the
// path from the root down to this node.
type node struct {
	l, r     int
	end      bool
	maxIdx   int
	children map[byte]int
}

// HistEntry is one recorded shell invocation, used only for its leading
// whitespace-separated token when the trie ingests usage counts.
type HistEntry struct {
	Status int
	Line   string
}

// Trie is a compressed trie over Texts, with a cursor for incremental
// byte-by-byte search and a per-node "best guess" (MaxIdx) kept up to
// date as usage counts change.
type Trie struct {
	Texts  []string
	counts []int
	nodes  []node

	cursor int
	ok     bool
}

// New deduplicates and sorts texts, builds the compressed trie over them,
// then ingests hist to seed per-node usage counts.
func New(texts []string, hist []HistEntry) *Trie {
	uniq := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		uniq[t] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for t := range uniq {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	t := &Trie{
		Texts:  sorted,
		counts: make([]int, len(sorted)),
	}
	build(0, len(sorted), 0, sorted, &t.nodes)
	t.reset()
	t.readHistory(hist)
	return t
}

// build recursively emits the node covering [l, r) at depth d and returns
// its id: nodes are appended in pre-order, so a node's id is always
// len(*nodes) at the moment it is pushed.
func build(l, r, d int, texts []string, nodes *[]node) int {
	id := len(*nodes)
	*nodes = append(*nodes, node{l: l, r: r, maxIdx: l, children: map[byte]int{}})

	hasGroup := false
	groupStart := 0
	var groupByte byte
	for i := l; i <= r; i++ {
		if i != r && len(texts[i]) <= d {
			(*nodes)[id].end = true
			continue
		}
		if hasGroup {
			if i == r || groupByte != texts[i][d] {
				childID := build(groupStart, i, d+1, texts, nodes)
				(*nodes)[id].children[groupByte] = childID
				if i < r {
					groupStart = i
					groupByte = texts[i][d]
				}
			}
		} else if i < r {
			hasGroup = true
			groupStart = i
			groupByte = texts[i][d]
		}
	}
	return id
}

func (t *Trie) readHistory(hist []HistEntry) {
	for _, h := range hist {
		head := firstToken(h.Line)
		if head == "" {
			continue
		}
		for _, c := range head {
			t.Search(c)
		}
		if t.ok && t.nodes[t.cursor].end {
			t.counts[t.nodes[t.cursor].l]++
		}
		t.reset()
	}
	for i := range t.nodes {
		n := &t.nodes[i]
		best := n.l
		for j := n.l; j < n.r; j++ {
			if t.counts[j] > t.counts[best] {
				best = j
			}
		}
		n.maxIdx = best
	}
}

func firstToken(line string) string {
	start := -1
	for i, r := range line {
		if r == ' ' || r == '\t' || r == '\n' {
			if start >= 0 {
				return line[start:i]
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start < 0 {
		return ""
	}
	return line[start:]
}

// reset moves the cursor back to the root.
func (t *Trie) reset() {
	t.cursor = 0
	t.ok = true
}

// Reset moves the cursor back to the root; it is always matched there.
func (t *Trie) Reset() { t.reset() }

// Search advances the cursor by one UTF-8 code point, byte by byte. Once
// unmatched, the cursor stays unmatched until Reset.
func (t *Trie) Search(c rune) {
	if !t.ok {
		return
	}
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], c)
	for _, b := range tmp[:n] {
		next, found := t.nodes[t.cursor].children[b]
		if !found {
			t.ok = false
			return
		}
		t.cursor = next
	}
}

// GetRange returns the [l, r) index range of Texts matching the current
// cursor position, or (0, 0) if unmatched.
func (t *Trie) GetRange() (int, int) {
	if !t.ok {
		return 0, 0
	}
	n := t.nodes[t.cursor]
	return n.l, n.r
}

// GetMatchTexts returns the concrete matched texts at the cursor, with
// the node's best-guess text first followed by the rest of the range in
// sorted order.
func (t *Trie) GetMatchTexts() []string {
	if !t.ok {
		return nil
	}
	n := t.nodes[t.cursor]
	if n.r <= n.l {
		return nil
	}
	out := make([]string, 0, n.r-n.l)
	out = append(out, t.Texts[n.maxIdx])
	for i := n.l; i < n.r; i++ {
		if i == n.maxIdx {
			continue
		}
		out = append(out, t.Texts[i])
	}
	return out
}

// AddCnt increments the usage count for the exact text, then walks the
// same path updating every ancestor's best guess. It is a no-op if text
// is not present in the trie.
func (t *Trie) AddCnt(text string) {
	for _, c := range text {
		t.Search(c)
	}
	matched, cursor := t.ok, t.cursor
	t.reset()
	if !matched || !t.nodes[cursor].end {
		return
	}
	leaf := t.nodes[cursor].l
	t.counts[leaf]++

	for _, c := range text {
		cur := &t.nodes[t.cursor]
		if t.counts[leaf] > t.counts[cur.maxIdx] {
			cur.maxIdx = leaf
		}
		t.Search(c)
	}
	cur := &t.nodes[t.cursor]
	if t.counts[leaf] > t.counts[cur.maxIdx] {
		cur.maxIdx = leaf
	}
	t.reset()
}
