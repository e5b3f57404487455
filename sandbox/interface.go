package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// File permission constants
const (
	DirPermission           = 0o755
	FilePermission          = 0o600
	ContainerFilePermission = 0o644
)

// waitDelay bounds how long Wait keeps draining pipes after the process
// was killed, in case a grandchild inherited them.
const waitDelay = 500 * time.Millisecond

// Output is what a guest run produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes a complete guest program.
type Runner interface {
	Run(ctx context.Context, program string) (Output, error)
}

// Command describes one process invocation.
type Command struct {
	Args []string
	Env  []string
	Dir  string

	// MaxOutputBytes caps stdout+stderr combined; zero means unlimited.
	MaxOutputBytes int

	// Isolate requests Linux namespace isolation where supported.
	Isolate bool
}

// CommandResult holds the captured streams and exit status of a process.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, cmd Command) (CommandResult, error)
}

// RealCommandRunner implements CommandRunner using os/exec. The child is
// placed in its own process group and the whole group is killed when ctx
// ends or the output cap is hit.
type RealCommandRunner struct{}

// RunCommand executes cmd. It returns ErrTimedOut when ctx's deadline
// expires and ErrOutputTooLarge when the output cap is exceeded; the
// partial output captured so far is returned alongside either error.
func (RealCommandRunner) RunCommand(ctx context.Context, cmd Command) (CommandResult, error) {
	if len(cmd.Args) < 1 {
		return CommandResult{}, errors.New("no command provided")
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	c := exec.CommandContext(runCtx, cmd.Args[0], cmd.Args[1:]...) //nolint:gosec // argv is built by the runners
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	if c.Env == nil {
		c.Env = minimalEnv()
	}
	c.WaitDelay = waitDelay
	configureProcess(c, cmd.Isolate)

	var stdoutBuf, stderrBuf bytes.Buffer
	budget := newOutputBudget(cmd.MaxOutputBytes, func() { cancel(ErrOutputTooLarge) })
	c.Stdout = budget.writer(&stdoutBuf)
	c.Stderr = budget.writer(&stderrBuf)

	err := c.Run()

	result := CommandResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(c, err),
	}

	if budget.exceeded() {
		return result, ErrOutputTooLarge
	}
	return result, classifyRunError(ctx, cmd.Args[0], err)
}

// classifyRunError maps the error from exec.Cmd.Run. A guest that exited on
// its own is never reported as timed out, even when ctx expired just after.
func classifyRunError(ctx context.Context, name string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimedOut
		}
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return fmt.Errorf("failed to run %s: %w", name, err)
}

func exitCode(c *exec.Cmd, err error) int {
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// minimalEnv is the environment given to guest processes. Nothing from the
// server's own environment leaks through.
func minimalEnv() []string {
	return []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"LANG=C.UTF-8",
		"LC_ALL=C.UTF-8",
		"PYTHONIOENCODING=utf-8",
		"PYTHONDONTWRITEBYTECODE=1",
		"PYTHONHASHSEED=0",
	}
}

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
	Remove(path string) error
	Glob(pattern string) ([]string, error)
	Stat(path string) (os.FileInfo, error)
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (RealFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (RealFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}
