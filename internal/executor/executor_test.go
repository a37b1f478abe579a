package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kvch/myshell/internal/environment"
	"github.com/kvch/myshell/internal/executor"
	"github.com/kvch/myshell/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) *environment.Environment {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	env, err := environment.New()
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func runLine(t *testing.T, env *environment.Environment, line string) (executor.Outcome, string, string) {
	t.Helper()
	stmt, err := parser.Parse(line, env.Home)
	require.NoError(t, err)

	outFile, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	errFile, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)

	outcome := executor.Execute(context.Background(), stmt, env, os.Stdin, outFile, errFile)

	outFile.Close()
	errFile.Close()
	out, err := os.ReadFile(outFile.Name())
	require.NoError(t, err)
	errOut, err := os.ReadFile(errFile.Name())
	require.NoError(t, err)
	return outcome, string(out), string(errOut)
}

func TestExecuteSimpleCommand(t *testing.T) {
	env := newTestEnv(t)
	outcome, stdout, _ := runLine(t, env, "echo hi")
	assert.Equal(t, 0, outcome.Status)
	assert.False(t, outcome.Exit)
	assert.Equal(t, "hi\n", stdout)
}

func TestExecuteShortCircuitAndSequence(t *testing.T) {
	env := newTestEnv(t)
	outcome, stdout, _ := runLine(t, env, "false && echo x ; echo y")
	assert.Equal(t, 0, outcome.Status)
	assert.Equal(t, "y\n", stdout)
}

func TestExecutePipeline(t *testing.T) {
	env := newTestEnv(t)
	outcome, stdout, _ := runLine(t, env, "echo one | wc -l")
	assert.Equal(t, 0, outcome.Status)
	assert.Equal(t, "1\n", stdout)
}

func TestExecuteRedirectToFile(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	outcome, _, _ := runLine(t, env, "echo hello > out.txt")
	assert.Equal(t, 0, outcome.Status)
	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}

func TestExecuteCdChangesDirectory(t *testing.T) {
	env := newTestEnv(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(cwd) })

	outcome, _, _ := runLine(t, env, "cd /tmp")
	assert.Equal(t, 0, outcome.Status)
	newCwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "/tmp", newCwd)
}

func TestExecuteCdMissingArgument(t *testing.T) {
	env := newTestEnv(t)
	outcome, _, stderr := runLine(t, env, "cd")
	assert.NotEqual(t, 0, outcome.Status)
	assert.Contains(t, stderr, "cd: missing argument")
}

func TestExecuteExitReturnsExitOutcome(t *testing.T) {
	env := newTestEnv(t)
	outcome, _, _ := runLine(t, env, "exit")
	assert.True(t, outcome.Exit)
}

func TestExecuteCommandNotFound(t *testing.T) {
	env := newTestEnv(t)
	outcome, _, stderr := runLine(t, env, "definitely-not-a-real-binary-xyz")
	assert.Equal(t, -1, outcome.Status)
	assert.Contains(t, stderr, "command not found")
}

func TestExecuteHistoryBuiltin(t *testing.T) {
	env := newTestEnv(t)
	env.PushHistory("echo hi", 0)
	outcome, stdout, _ := runLine(t, env, "history")
	assert.Equal(t, 0, outcome.Status)
	assert.Contains(t, stdout, "echo hi")
}

func TestExecuteBackgroundDoesNotBlockNextElement(t *testing.T) {
	env := newTestEnv(t)
	stmt, err := parser.Parse("sleep 5 & echo done", env.Home)
	require.NoError(t, err)

	start := time.Now()
	outFile, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer outFile.Close()

	outcome := executor.Execute(context.Background(), stmt, env, os.Stdin, outFile, outFile)
	elapsed := time.Since(start)

	assert.Equal(t, 0, outcome.Status)
	assert.Less(t, elapsed, 2*time.Second, "foreground element must not wait on the background one")
}
