// Package executor runs a parsed Statement against real OS processes:
// pipelines wired with os.Pipe the way cmd/wsh/pipeline.go wires its
// stages, short-circuit conjunctions, a single background fork per
// element, and the cd/history/exit builtins.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/kvch/myshell/internal/environment"
	"github.com/kvch/myshell/internal/lexer"
	"github.com/kvch/myshell/internal/parser"
)

// Outcome is the result of running a Commands chain or Statement: either
// a plain exit status, or the exit sentinel that unwinds the whole
// shell. A sum type reads more plainly here than using a sentinel error
// to unwind the call stack on exit.
type Outcome struct {
	Status int
	Exit   bool
}

// IgnoreInteractiveSignals installs no-op handlers for SIGINT/SIGQUIT in
// the shell process itself, so Ctrl-C/Ctrl-\ never kill the interactive
// loop while a foreground child is running. The signals are caught and
// dropped rather than set to SIG_IGN, so exec'd children start with the
// default disposition and can still be killed by them.
func IgnoreInteractiveSignals() {
	signal.Notify(make(chan os.Signal, 1), syscall.SIGINT, syscall.SIGQUIT)
}

// Execute runs every element of stmt in order. A background element
// does not block its successor — it fires a goroutine and Execute
// proceeds immediately (Go cannot double-fork without re-exec'ing
// itself, so a goroutine stands in for the forked parent of the
// background pipeline). Its launch notice, completion status, and
// errors land on the same stdout/stderr passed in here.
func Execute(ctx context.Context, stmt parser.Statement, env *environment.Environment, stdin, stdout, stderr *os.File) Outcome {
	var last Outcome

	for _, elem := range stmt.Elements {
		if elem.Background {
			go runBackground(ctx, elem.Commands, env, stdin, stdout, stderr)
			last = Outcome{Status: 0}
			continue
		}

		last = executeCommands(ctx, elem.Commands, env, stdin, stdout, stderr)
		if last.Exit {
			return last
		}
	}
	return last
}

func runBackground(ctx context.Context, cmds parser.Commands, env *environment.Environment, stdin, stdout, stderr *os.File) {
	pid := os.Getpid()
	fmt.Fprintf(stdout, "[background pid %d]\n", pid)
	outcome := executeCommands(ctx, cmds, env, stdin, stdout, stderr)
	if outcome.Exit {
		fmt.Fprintf(stdout, "[pid %d] exit\n", pid)
		return
	}
	fmt.Fprintf(stdout, "[pid %d] done (status %d)\n", pid, outcome.Status)
}

// executeCommands evaluates a left-associative &&/|| chain: head runs
// first, and Op decides whether Tail runs at all.
func executeCommands(ctx context.Context, cmds parser.Commands, env *environment.Environment, stdin, stdout, stderr *os.File) Outcome {
	s := executePipeBlock(ctx, cmds.Head, env, stdin, stdout, stderr)
	if s.Exit || cmds.Tail == nil {
		return s
	}

	switch cmds.Op {
	case lexer.AndAnd:
		if s.Status == 0 {
			return executeCommands(ctx, *cmds.Tail, env, stdin, stdout, stderr)
		}
		return s
	case lexer.OrOr:
		if s.Status != 0 {
			return executeCommands(ctx, *cmds.Tail, env, stdin, stdout, stderr)
		}
		return s
	default:
		fmt.Fprintln(stderr, "myshell: invalid operator in parsed chain")
		return Outcome{Status: -1}
	}
}

// executePipeBlock opens the pipeline's redirections, wires a pipe
// between every consecutive pair of stages the way cmd/wsh/pipeline.go's
// Pipeline.SetupPipes/Run does — every stage is Start()-ed before any is
// Wait()-ed, and the parent closes its copy of every fd it hands to a
// child immediately after that child is started.
func executePipeBlock(ctx context.Context, pb parser.PipeBlock, env *environment.Environment, stdin, stdout, stderr *os.File) Outcome {
	stages := pb.Stages()

	in := stdin
	out := stdout
	errOut := stderr

	if pb.From != nil {
		f, err := os.OpenFile(*pb.From, os.O_RDONLY, 0)
		if err != nil {
			fmt.Fprintf(stderr, "myshell: %v\n", err)
			return Outcome{Status: -1}
		}
		defer f.Close()
		in = f
	}
	if pb.To != nil {
		f, err := os.OpenFile(*pb.To, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			fmt.Fprintf(stderr, "myshell: %v\n", err)
			return Outcome{Status: -1}
		}
		defer f.Close()
		out = f
	}
	if pb.ToErr != nil {
		f, err := os.OpenFile(*pb.ToErr, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			fmt.Fprintf(stderr, "myshell: %v\n", err)
			return Outcome{Status: -1}
		}
		defer f.Close()
		errOut = f
	}

	n := len(stages)
	stageIn := make([]*os.File, n)
	stageOut := make([]*os.File, n)
	var toClose []*os.File

	stageIn[0] = in
	stageOut[n-1] = out
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(stderr, "myshell: %v\n", err)
			return Outcome{Status: -1}
		}
		stageOut[i] = w
		stageIn[i+1] = r
		toClose = append(toClose, r, w)
	}
	defer func() {
		for _, f := range toClose {
			f.Close()
		}
	}()

	var cmds []*exec.Cmd
	var exitHit bool
	var tailStatus Outcome

	for i, stage := range stages {
		isTail := i == n-1
		argv := stage.Args
		if len(argv) == 0 {
			continue
		}

		if argv[0] == "exit" {
			exitHit = true
			break
		}

		if b, ok := Registry[argv[0]]; ok {
			status := b.Run(env, argv[1:], isTail, stageOut[i], errOut)
			if isTail {
				tailStatus = Outcome{Status: status}
			}
			continue
		}

		path, lookErr := exec.LookPath(argv[0])
		if lookErr != nil {
			fmt.Fprintln(errOut, (&CommandNotFoundError{Name: argv[0]}).Error())
			if isTail {
				tailStatus = Outcome{Status: -1}
			}
			continue
		}

		cmd := exec.CommandContext(ctx, path, argv[1:]...)
		cmd.Stdin = stageIn[i]
		cmd.Stdout = stageOut[i]
		cmd.Stderr = errOut
		cmd.Env = os.Environ()

		if err := cmd.Start(); err != nil {
			fmt.Fprintf(errOut, "myshell: %v\n", err)
			if isTail {
				tailStatus = Outcome{Status: -1}
			}
			continue
		}
		cmds = append(cmds, cmd)

		// Parent closes its copy of every pipe fd handed to this child
		// immediately after the fork, so downstream EOF propagates.
		if stageIn[i] != in && stageIn[i] != nil {
			stageIn[i].Close()
		}
		if stageOut[i] != out && stageOut[i] != nil {
			stageOut[i].Close()
		}

		if isTail {
			err := cmd.Wait()
			tailStatus = Outcome{Status: mapWaitErr(err, errOut)}
		}
	}

	// Reap every non-tail child so none are left as zombies; their
	// status, other than the tail's, is not part of the pipeline result.
	for _, cmd := range cmds {
		if cmd.ProcessState == nil {
			_ = cmd.Wait()
		}
	}

	if exitHit {
		return Outcome{Exit: true}
	}
	return tailStatus
}

// mapWaitErr turns a tail child's wait error into the pipeline's status,
// printing a signal-specific message when the child died from SIGINT or
// SIGQUIT.
func mapWaitErr(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			sig := status.Signal()
			if sig == syscall.SIGINT || sig == syscall.SIGQUIT {
				fmt.Fprintln(stderr, (&SignalError{Sig: sig}).Error())
			}
			return 128 + int(sig)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintf(stderr, "myshell: %v\n", err)
	return -1
}
