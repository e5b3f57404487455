package sandbox

import "go.uber.org/zap"

// NewDockerRunner creates a ContainerRunner backed by the docker CLI.
func NewDockerRunner(logger *zap.Logger, config Config, opts ...Option) *ContainerRunner {
	return &ContainerRunner{
		runner: newRunner(logger.Named("docker"), config, opts),
		engine: "docker",
		extraArgs: []string{
			"--ulimit", "nofile=64:64",
		},
	}
}
