package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Validator ValidatorConfig `mapstructure:"validator"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds sandbox configuration
type SandboxConfig struct {
	Backend           string        `mapstructure:"backend"`
	TimeoutMS         int           `mapstructure:"timeout_ms"`
	MaxOutputBytes    int           `mapstructure:"max_output_bytes"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	PythonBin         string        `mapstructure:"python_bin"`
	Image             string        `mapstructure:"image"`
	MemoryMB          int           `mapstructure:"memory_mb"`
	NetworkEnabled    bool          `mapstructure:"network_enabled"`
	IsolateNamespaces bool          `mapstructure:"isolate_namespaces"`
	ScratchDir        string        `mapstructure:"scratch_dir"`
	SweepSchedule     string        `mapstructure:"sweep_schedule"`
	SweepMaxAge       time.Duration `mapstructure:"sweep_max_age"`
}

// ValidatorConfig holds static validation settings
type ValidatorConfig struct {
	RulesFile      string `mapstructure:"rules_file"`
	MaxSourceBytes int    `mapstructure:"max_source_bytes"`
}

// HistoryConfig holds submission history settings
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration from the default
// search paths.
func New() (*Config, error) {
	return Load("")
}

// Load reads the configuration from path, or from config.yaml in the
// default search paths when path is empty. Environment variables prefixed
// with QUESTBOX_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("QUESTBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_port", 8080)

	v.SetDefault("sandbox.backend", "local")
	v.SetDefault("sandbox.timeout_ms", 5000)
	v.SetDefault("sandbox.max_output_bytes", 1<<20)
	v.SetDefault("sandbox.max_concurrency", 8)
	v.SetDefault("sandbox.python_bin", "python3")
	v.SetDefault("sandbox.image", "python:3.11-slim")
	v.SetDefault("sandbox.memory_mb", 128)
	v.SetDefault("sandbox.network_enabled", false)
	v.SetDefault("sandbox.isolate_namespaces", false)
	v.SetDefault("sandbox.scratch_dir", "")
	v.SetDefault("sandbox.sweep_schedule", "@every 10m")
	v.SetDefault("sandbox.sweep_max_age", "5m")

	v.SetDefault("validator.rules_file", "")
	v.SetDefault("validator.max_source_bytes", 64*1024)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", "questbox.db")

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	switch c.Server.Transport {
	case "stdio", "http", "rest":
	default:
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio', 'http' or 'rest'", c.Server.Transport)
	}

	if c.Server.Transport != "stdio" && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("server.http_port must be between 1 and 65535, got: %d", c.Server.HTTPPort)
	}

	switch c.Sandbox.Backend {
	case "local", "docker", "podman":
	default:
		return fmt.Errorf("unsupported sandbox.backend: %s", c.Sandbox.Backend)
	}

	if c.Sandbox.TimeoutMS <= 0 {
		return fmt.Errorf("sandbox.timeout_ms must be positive, got: %d", c.Sandbox.TimeoutMS)
	}

	if c.Sandbox.MaxOutputBytes <= 0 {
		return fmt.Errorf("sandbox.max_output_bytes must be positive, got: %d", c.Sandbox.MaxOutputBytes)
	}

	if c.Sandbox.MaxConcurrency <= 0 {
		return fmt.Errorf("sandbox.max_concurrency must be positive, got: %d", c.Sandbox.MaxConcurrency)
	}

	if c.Sandbox.MemoryMB <= 0 {
		return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
	}

	if c.Sandbox.PythonBin == "" {
		return errors.New("sandbox.python_bin must not be empty")
	}

	if c.Sandbox.Backend != "local" && c.Sandbox.Image == "" {
		return fmt.Errorf("sandbox.image is required for the %s backend", c.Sandbox.Backend)
	}

	if c.Sandbox.SweepMaxAge < 0 {
		return fmt.Errorf("sandbox.sweep_max_age must not be negative, got: %s", c.Sandbox.SweepMaxAge)
	}

	if c.Validator.MaxSourceBytes < 0 {
		return fmt.Errorf("validator.max_source_bytes must not be negative, got: %d", c.Validator.MaxSourceBytes)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return errors.New("history.db_path is required when history is enabled")
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// Timeout returns the execution timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutMS) * time.Millisecond
}
