// Package environment owns process-wide shell state: identity, the
// config/history files, the PATH-derived binary list, and the
// completion trie built over it.
package environment

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/kvch/myshell/internal/logging"
	"github.com/kvch/myshell/internal/trie"
	"github.com/kvch/myshell/internal/util"
)

const (
	configDirName  = ".myshell_conf"
	historyName    = "history.txt"
	rcName         = "myshellrc"
	startupUmask   = 0o022
	builtinCd      = "cd"
	builtinExit    = "exit"
	builtinHistory = "history"
)

// HistoryEntry is one recorded invocation: its exit status and the
// literal command line that produced it.
type HistoryEntry struct {
	Status int
	Line   string
}

// Environment is the shell's process-wide, shared mutable state. It is
// created once at startup and owns the completion trie, mutating it
// only from PushHistory.
type Environment struct {
	User string
	Host string
	Home string

	ConfigDir string
	Config    Config

	historyPath string
	historyFile *os.File
	historyW    *bufio.Writer
	History     []HistoryEntry

	bins map[string]struct{}
	Trie *trie.Trie
}

// New constructs the Environment: resolves identity, ensures the config
// directory and its files exist, loads history and config, scans PATH,
// and builds the completion trie.
func New() (*Environment, error) {
	syscall.Umask(startupUmask)

	if warning, ok := util.CheckStartupMemory(); ok && warning != "" {
		logging.Warn("%s", warning)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	rcPath := filepath.Join(configDir, rcName)
	if err := ensureFile(rcPath); err != nil {
		logging.Warn("ensure %s: %v", rcPath, err)
	}

	historyPath := filepath.Join(configDir, historyName)
	if err := ensureFile(historyPath); err != nil {
		logging.Warn("ensure %s: %v", historyPath, err)
	}

	env := &Environment{
		User:        currentUser(),
		Host:        currentHost(),
		Home:        home,
		ConfigDir:   configDir,
		Config:      loadConfig(configDir),
		historyPath: historyPath,
	}

	if f, err := os.OpenFile(historyPath, os.O_RDWR|os.O_APPEND, 0o644); err != nil {
		logging.Warn("open history file: %v", err)
	} else {
		env.historyFile = f
		env.historyW = bufio.NewWriter(f)
		env.History = capHistory(readHistory(f), env.Config.HistorySize)
	}

	bins := scanPath()
	env.bins = make(map[string]struct{}, len(bins))
	for _, b := range bins {
		env.bins[b] = struct{}{}
	}

	histEntries := make([]trie.HistEntry, len(env.History))
	for i, h := range env.History {
		histEntries[i] = trie.HistEntry{Status: h.Status, Line: h.Line}
	}
	env.Trie = trie.New(bins, histEntries)

	return env, nil
}

func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

func currentHost() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// scanPath enumerates PATH directories for regular-file names and
// appends the hard-wired builtins. Duplicates are fine; the trie
// deduplicates.
func scanPath() []string {
	var bins []string
	for _, dir := range strings.Split(os.Getenv("PATH"), ":") {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			bins = append(bins, e.Name())
		}
	}
	bins = append(bins, builtinCd, builtinExit, builtinHistory)
	sort.Strings(bins)
	return bins
}

// readHistory parses "<int_status> <command_text>" lines, skipping any
// line that doesn't match silently.
func readHistory(f *os.File) []HistoryEntry {
	if _, err := f.Seek(0, 0); err != nil {
		return nil
	}
	var entries []HistoryEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.IndexByte(line, ' ')
		if idx < 0 {
			continue
		}
		status, err := strconv.Atoi(line[:idx])
		if err != nil {
			continue
		}
		entries = append(entries, HistoryEntry{Status: status, Line: line[idx+1:]})
	}
	if _, err := f.Seek(0, 2); err != nil {
		logging.Warn("seek history file to end: %v", err)
	}
	return entries
}

// capHistory keeps at most max entries, dropping the oldest ones. A
// non-positive max leaves the slice untouched.
func capHistory(entries []HistoryEntry, max int) []HistoryEntry {
	if max > 0 && len(entries) > max {
		return entries[len(entries)-max:]
	}
	return entries
}

// PushHistory records a completed Statement: appends to the in-memory
// vector, trims it to Config.HistorySize, appends "<status> <line>\n"
// to the history file, and bumps the trie's usage count if the line's
// first token is a known binary.
func (e *Environment) PushHistory(line string, status int) {
	e.History = capHistory(append(e.History, HistoryEntry{Status: status, Line: line}), e.Config.HistorySize)

	if e.historyW != nil {
		fmt.Fprintf(e.historyW, "%d %s\n", status, line)
		if err := e.historyW.Flush(); err != nil {
			logging.Warn("flush history file: %v", err)
		}
	}

	head := firstToken(line)
	if head == "" {
		return
	}
	if _, known := e.bins[head]; known {
		e.Trie.AddCnt(head)
	}
}

func firstToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// HistoryLines returns just the command text of every history entry, in
// recorded order, for the editor's up/down browsing.
func (e *Environment) HistoryLines() []string {
	lines := make([]string, len(e.History))
	for i, h := range e.History {
		lines[i] = h.Line
	}
	return lines
}

// Close flushes and closes the history file, if one was opened.
func (e *Environment) Close() error {
	if e.historyFile == nil {
		return nil
	}
	if e.historyW != nil {
		_ = e.historyW.Flush()
	}
	return e.historyFile.Close()
}
