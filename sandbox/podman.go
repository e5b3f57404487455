package sandbox

import "go.uber.org/zap"

// NewPodmanRunner creates a ContainerRunner backed by the podman CLI.
func NewPodmanRunner(logger *zap.Logger, config Config, opts ...Option) *ContainerRunner {
	return &ContainerRunner{
		runner: newRunner(logger.Named("podman"), config, opts),
		engine: "podman",
		extraArgs: []string{
			"--ulimit", "nofile=64:64",
			"--pull", "never",
		},
	}
}
