// Command myshell is the interactive POSIX-style shell entry point: it
// wires the environment, raw-mode editor, completion and executor
// packages into the read-eval-print loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kvch/myshell/internal/buildinfo"
	"github.com/kvch/myshell/internal/completion"
	"github.com/kvch/myshell/internal/editor"
	"github.com/kvch/myshell/internal/environment"
	"github.com/kvch/myshell/internal/executor"
	"github.com/kvch/myshell/internal/parser"
	"github.com/kvch/myshell/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the shell's process exit code: -1 if the outermost loop
// terminated abnormally, 0 on a clean exit (the exit builtin, or EOF).
func run(args []string) int {
	switch len(args) {
	case 0:
	case 1:
		if args[0] == "--version" {
			fmt.Println(buildinfo.String())
			return 0
		}
		fmt.Fprintf(os.Stderr, "myshell: unrecognized argument: %s\n", args[0])
		return -1
	default:
		fmt.Fprintln(os.Stderr, "myshell: too many arguments")
		return -1
	}

	env, err := environment.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "myshell: %v\n", err)
		return -1
	}
	defer env.Close()

	ui.SetTheme(ui.Theme(env.Config.Theme))
	executor.IgnoreInteractiveSignals()

	ed := editor.New(os.Stdin, os.Stdout)
	ctx := context.Background()

	for {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "?"
		}
		prompt := ui.RenderPrompt(env.User, env.Host, cwd)
		ed.WriteHeader(prompt)

		line, err := readLine(ed, env, prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stdout)
				return 0
			}
			fmt.Fprintf(os.Stderr, "myshell: %v\n", err)
			return -1
		}
		ed.Clear()

		if isBlank(line) {
			continue
		}

		stmt, err := parser.Parse(line, env.Home)
		if err != nil {
			fmt.Fprintf(os.Stderr, "myshell: %v\n", err)
			env.PushHistory(line, -1)
			continue
		}
		if len(stmt.Elements) == 0 {
			continue
		}

		outcome := executor.Execute(ctx, stmt, env, os.Stdin, os.Stdout, os.Stderr)
		if outcome.Exit {
			return 0
		}
		env.PushHistory(line, outcome.Status)
	}
}

// readLine drives the editor until a full command line is produced,
// re-running completion on every PartialEvent in between.
func readLine(ed *editor.LineEditor, env *environment.Environment, prompt string) (string, error) {
	for {
		ev, err := ed.ReadEvent(env.HistoryLines())
		if err != nil {
			return "", err
		}

		switch e := ev.(type) {
		case editor.CommandEvent:
			return e.Line, nil
		case editor.PartialEvent:
			anchor, matches := completion.Complete(e.Line, env)
			ed.RenderCompletion(prompt, anchor, matches)
		}
	}
}

func isBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

