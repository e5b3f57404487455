package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GuestArgs are the interpreter flags used for every guest: isolated mode
// (no user site-packages, no PYTHON* variables, no script dir on sys.path),
// no bytecode files, UTF-8 streams.
var GuestArgs = []string{"-I", "-B", "-X", "utf8"}

// LocalRunner runs the guest interpreter directly on the host, optionally
// inside fresh Linux namespaces.
type LocalRunner struct {
	runner
}

// NewLocalRunner creates a LocalRunner.
func NewLocalRunner(logger *zap.Logger, config Config, opts ...Option) *LocalRunner {
	return &LocalRunner{runner: newRunner(logger.Named("local"), config, opts)}
}

// Run executes program and returns its captured output.
func (l *LocalRunner) Run(ctx context.Context, program string) (Output, error) {
	dir := scratchDir(l.config.ScratchDir)

	path, cleanup, err := writeArtifact(l.fs, l.logger, dir, program, FilePermission)
	if err != nil {
		return Output{}, err
	}
	defer cleanup()

	args := make([]string, 0, len(GuestArgs)+2)
	args = append(args, l.config.PythonBin)
	args = append(args, GuestArgs...)
	args = append(args, path)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := l.cmdRunner.RunCommand(ctxWithTimeout, Command{
		Args:           args,
		Dir:            dir,
		Env:            minimalEnv(),
		MaxOutputBytes: l.config.MaxOutputBytes,
		Isolate:        l.config.IsolateNamespaces,
	})
	out := Output{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Duration: time.Since(start),
	}

	if err != nil {
		if isLimitError(err) {
			l.logger.Debug("guest stopped", zap.Error(err), zap.Duration("duration", out.Duration))
			return out, err
		}
		return out, fmt.Errorf("failed to execute guest: %w", err)
	}

	return out, nil
}
