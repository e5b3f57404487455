// Package config provides application configuration management.
//
// The config package loads questbox settings from a YAML file, applies
// QUESTBOX_-prefixed environment overrides, and validates the result. It
// covers the transport, the sandbox runner, the static validator, the
// submission history, and logging.
//
// Usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Sandbox backend: %s\n", cfg.Sandbox.Backend)
package config
