package executor

import (
	"fmt"
	"io"
	"os"

	"github.com/kvch/myshell/internal/environment"
)

// Builtin is a command that runs in-process rather than forking a child.
// isTail tells a builtin whether it is the last stage of its pipeline:
// only a tail builtin's side effects (cd's directory change) should
// escape to the shell process itself, matching what a forked child
// could and couldn't leave behind.
type Builtin struct {
	Name string
	Run  func(env *environment.Environment, args []string, isTail bool, stdout, stderr io.Writer) int
}

// Registry maps a builtin's name to its implementation; executePipeBlock
// looks a stage's argv[0] up here before falling back to exec.LookPath.
var Registry = make(map[string]*Builtin)

func register(b *Builtin) { Registry[b.Name] = b }

func init() {
	register(&Builtin{Name: "cd", Run: cdBuiltin})
	register(&Builtin{Name: "history", Run: historyBuiltin})
}

// cdBuiltin changes the shell process's working directory when it is
// the tail of its pipeline. Anywhere else it only validates the target
// directory, since a forked child's cwd change would never outlive it.
func cdBuiltin(env *environment.Environment, args []string, isTail bool, stdout, stderr io.Writer) int {
	var err error
	switch {
	case len(args) == 0:
		err = &CdError{Kind: CdMissingArgument}
	case len(args) > 1:
		err = &CdError{Kind: CdTooManyArguments}
	case isTail:
		if chErr := os.Chdir(args[0]); chErr != nil {
			err = &CdError{Kind: CdChdirFailed, Err: chErr}
		}
	default:
		if _, statErr := os.Stat(args[0]); statErr != nil {
			err = &CdError{Kind: CdChdirFailed, Err: statErr}
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return -1
	}
	return 0
}

// historyBuiltin prints every recorded entry as "[idx][status]\tcmd".
// args must be empty: history takes no flags or filters.
func historyBuiltin(env *environment.Environment, args []string, isTail bool, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, (&HistoryError{}).Error())
		return -1
	}
	for i, h := range env.History {
		fmt.Fprintf(stdout, "[%3d][%3d]\t%s\n", i, h.Status, h.Line)
	}
	return 0
}
