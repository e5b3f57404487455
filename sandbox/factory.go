package sandbox

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/isdmx/questbox/config"
)

// ConfigFromApp extracts the runner settings from the application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Timeout:           cfg.Timeout(),
		MaxOutputBytes:    cfg.Sandbox.MaxOutputBytes,
		ScratchDir:        cfg.Sandbox.ScratchDir,
		PythonBin:         cfg.Sandbox.PythonBin,
		Image:             cfg.Sandbox.Image,
		MemoryMB:          cfg.Sandbox.MemoryMB,
		NetworkEnabled:    cfg.Sandbox.NetworkEnabled,
		IsolateNamespaces: cfg.Sandbox.IsolateNamespaces,
	}
}

// NewRunner creates the runner for the configured backend
func NewRunner(logger *zap.Logger, cfg *config.Config, opts ...Option) (Runner, error) {
	runnerConfig := ConfigFromApp(cfg)
	logger = logger.Named("sandbox")

	switch cfg.Sandbox.Backend {
	case "local":
		return NewLocalRunner(logger, runnerConfig, opts...), nil
	case "docker":
		return NewDockerRunner(logger, runnerConfig, opts...), nil
	case "podman":
		return NewPodmanRunner(logger, runnerConfig, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Sandbox.Backend)
	}
}
