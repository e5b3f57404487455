package sandbox

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the settings shared by every runner backend.
type Config struct {
	Timeout           time.Duration
	MaxOutputBytes    int
	ScratchDir        string
	PythonBin         string
	Image             string
	MemoryMB          int
	NetworkEnabled    bool
	IsolateNamespaces bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:        5 * time.Second,
		MaxOutputBytes: 1 << 20,
		PythonBin:      "python3",
		Image:          "python:3.11-slim",
		MemoryMB:       128,
	}
}

// runner carries the collaborators shared by the backends.
type runner struct {
	logger    *zap.Logger
	config    Config
	cmdRunner CommandRunner
	fs        FileSystem
}

// Option defines a functional option for the runners
type Option func(*runner)

// WithCommandRunner sets the CommandRunner used to spawn processes
func WithCommandRunner(cmdRunner CommandRunner) Option {
	return func(r *runner) {
		r.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem used for program artifacts
func WithFileSystem(fs FileSystem) Option {
	return func(r *runner) {
		r.fs = fs
	}
}

func newRunner(logger *zap.Logger, config Config, opts []Option) runner {
	r := runner{
		logger:    logger,
		config:    config,
		cmdRunner: RealCommandRunner{},
		fs:        RealFileSystem{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
