package sandbox

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	containerProgramPath = "/sandbox/main.py"
	containerPidsLimit   = 64
	containerStopTimeout = 10 * time.Second
)

// ContainerRunner runs the guest inside a throwaway container started
// through a docker-compatible CLI.
type ContainerRunner struct {
	runner
	engine    string
	extraArgs []string
}

// Engine returns the container CLI in use ("docker" or "podman").
func (c *ContainerRunner) Engine() string {
	return c.engine
}

// Run executes program in a fresh container and returns its output.
func (c *ContainerRunner) Run(ctx context.Context, program string) (Output, error) {
	dir, err := filepath.Abs(scratchDir(c.config.ScratchDir))
	if err != nil {
		return Output{}, fmt.Errorf("failed to resolve scratch dir: %w", err)
	}

	path, cleanup, err := writeArtifact(c.fs, c.logger, dir, program, ContainerFilePermission)
	if err != nil {
		return Output{}, err
	}
	defer cleanup()

	name := "questbox-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := c.cmdRunner.RunCommand(ctxWithTimeout, Command{
		Args:           c.runArgs(name, path),
		MaxOutputBytes: c.config.MaxOutputBytes,
	})
	out := Output{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Duration: time.Since(start),
	}

	if err != nil {
		// Killing the CLI does not stop the container it started.
		c.stop(name)
		if isLimitError(err) {
			c.logger.Debug("guest stopped", zap.String("container", name), zap.Error(err))
			return out, err
		}
		return out, fmt.Errorf("failed to execute container: %w", err)
	}

	return out, nil
}

func (c *ContainerRunner) runArgs(name, artifact string) []string {
	network := "none"
	if c.config.NetworkEnabled {
		network = "bridge"
	}

	args := []string{
		c.engine, "run",
		"--rm",
		"--name", name,
		"--network", network,
		"--memory", fmt.Sprintf("%dm", c.config.MemoryMB),
		"--pids-limit", strconv.Itoa(containerPidsLimit),
		"--read-only",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges",
		"--user", "nobody",
	}
	for _, kv := range minimalEnv() {
		if strings.HasPrefix(kv, "PYTHON") {
			args = append(args, "-e", kv)
		}
	}
	args = append(args, c.extraArgs...)
	args = append(args,
		"-v", artifact+":"+containerProgramPath+":ro",
		c.config.Image,
		"python3",
	)
	args = append(args, GuestArgs...)
	return append(args, containerProgramPath)
}

// stop kills a container left running after its CLI was cancelled.
func (c *ContainerRunner) stop(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), containerStopTimeout)
	defer cancel()

	if _, err := c.cmdRunner.RunCommand(ctx, Command{Args: []string{c.engine, "rm", "-f", name}}); err != nil {
		c.logger.Warn("failed to stop container", zap.String("container", name), zap.Error(err))
	}
}

func isLimitError(err error) bool {
	return errors.Is(err, ErrTimedOut) || errors.Is(err, ErrOutputTooLarge)
}
