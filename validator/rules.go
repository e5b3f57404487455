package validator

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule severities.
const (
	SeverityCritical = "critical"
	SeverityWarn     = "warn"
)

// Rule is a pattern matched against each line of the source.
type Rule struct {
	Name     string
	Severity string
	Pattern  *regexp.Regexp
	Message  string
}

// blockedModules are modules that expose process, OS, file or interpreter
// internals.
var blockedModules = []string{
	"os", "sys", "subprocess", "shutil", "socket", "ctypes", "multiprocessing",
	"pty", "signal", "importlib", "builtins", "posix", "nt", "pathlib", "io",
	"threading", "_thread", "resource", "runpy", "code", "codeop", "pickle",
	"marshal", "gc", "inspect", "tempfile", "glob", "fcntl", "mmap", "asyncio",
	"urllib", "http", "ftplib", "telnetlib", "smtplib", "webbrowser",
}

// DefaultRules returns the built-in deny-list.
func DefaultRules() []Rule {
	modules := strings.Join(blockedModules, "|")
	return []Rule{
		{
			Name:     "import-system-module",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(^|[;:])\s*import\s+.*\b(` + modules + `)\b`),
			Message:  "importing system modules is not allowed",
		},
		{
			Name:     "from-system-module",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(^|[;:])\s*from\s+(` + modules + `)\b`),
			Message:  "importing system modules is not allowed",
		},
		{
			Name:     "dynamic-import",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`__import__|\bimportlib\b`),
			Message:  "dynamic imports are not allowed",
		},
		{
			Name:     "dynamic-evaluation",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`\b(eval|exec|compile)\s*\(`),
			Message:  "running code from text (eval, exec, compile) is not allowed",
		},
		{
			Name:     "file-access",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`\bopen\s*\(`),
			Message:  "opening files is not allowed",
		},
		{
			Name:     "interactive-input",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`\b(input|raw_input)\s*\(`),
			Message:  "asking for keyboard input is not allowed",
		},
		{
			Name:     "interpreter-introspection",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`__(builtins|subclasses|globals|code|class|bases|mro|loader|spec|dict)__`),
			Message:  "reaching into Python internals is not allowed",
		},
		{
			Name:     "namespace-access",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`\b(globals|locals|vars|getattr|setattr|delattr|breakpoint)\s*\(`),
			Message:  "reaching into Python internals is not allowed",
		},
	}
}

// ruleFile is the YAML layout accepted by LoadRules.
type ruleFile struct {
	Rules []struct {
		Name     string `yaml:"name"`
		Severity string `yaml:"severity"`
		Pattern  string `yaml:"pattern"`
		Message  string `yaml:"message"`
	} `yaml:"rules"`
}

// LoadRules reads additional rules from YAML:
//
//	rules:
//	  - name: no-while-true
//	    severity: warn
//	    pattern: 'while\s+True'
//	    message: "loops that never stop will time out"
func LoadRules(r io.Reader) ([]Rule, error) {
	var file ruleFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, raw := range file.Rules {
		if raw.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		severity := raw.Severity
		if severity == "" {
			severity = SeverityCritical
		}
		if severity != SeverityCritical && severity != SeverityWarn {
			return nil, fmt.Errorf("rule %q: invalid severity %q, must be %q or %q", raw.Name, raw.Severity, SeverityCritical, SeverityWarn)
		}
		if raw.Pattern == "" {
			return nil, fmt.Errorf("rule %q: pattern is required", raw.Name)
		}
		pattern, err := regexp.Compile(raw.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", raw.Name, err)
		}
		message := raw.Message
		if message == "" {
			message = "this is not allowed"
		}
		rules = append(rules, Rule{
			Name:     raw.Name,
			Severity: severity,
			Pattern:  pattern,
			Message:  message,
		})
	}
	return rules, nil
}
