package validator

import (
	"fmt"
	"os"

	"github.com/isdmx/questbox/config"
)

// NewFromConfig builds a Validator from the built-in rules plus the rules
// file named in the configuration, if any.
func NewFromConfig(cfg *config.Config) (*Validator, error) {
	rules := DefaultRules()

	if path := cfg.Validator.RulesFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open rules file: %w", err)
		}
		defer f.Close()

		extra, err := LoadRules(f)
		if err != nil {
			return nil, fmt.Errorf("load rules file %s: %w", path, err)
		}
		rules = append(rules, extra...)
	}

	return New(rules, cfg.Validator.MaxSourceBytes), nil
}
