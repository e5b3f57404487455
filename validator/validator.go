package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxSourceBytes caps the size of a submission.
const DefaultMaxSourceBytes = 64 * 1024

// ConditionalHint is the warning returned for code without any branching.
const ConditionalHint = "Your code has no if or else. Try using a condition to make a decision!"

var conditionalPattern = regexp.MustCompile(`\b(if|elif|else)\b`)

// Finding is one rule match.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Content  string `json:"content"`
}

// Result is the outcome of Validate.
type Result struct {
	Valid    bool      `json:"valid"`
	Error    string    `json:"error,omitempty"`
	Warning  string    `json:"warning,omitempty"`
	Findings []Finding `json:"findings,omitempty"`
}

// Validator scans source text against a fixed rule set.
type Validator struct {
	rules          []Rule
	maxSourceBytes int
}

// New creates a Validator. maxSourceBytes <= 0 disables the size cap.
func New(rules []Rule, maxSourceBytes int) *Validator {
	return &Validator{rules: rules, maxSourceBytes: maxSourceBytes}
}

// Default returns a Validator with the built-in rules and size cap.
func Default() *Validator {
	return New(DefaultRules(), DefaultMaxSourceBytes)
}

// Validate scans code. It has no side effects.
func (v *Validator) Validate(code string) Result {
	if strings.TrimSpace(code) == "" {
		return Result{Error: "Your code is empty. Write some Python to get started!"}
	}
	if v.maxSourceBytes > 0 && len(code) > v.maxSourceBytes {
		return Result{Error: fmt.Sprintf("Your code is too long (%d bytes, the limit is %d).", len(code), v.maxSourceBytes)}
	}

	findings := v.Scan(code)

	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return Result{
				Error:    fmt.Sprintf("Line %d: %s.", f.Line, capitalize(f.Message)),
				Findings: findings,
			}
		}
	}

	res := Result{Valid: true, Findings: findings}
	var warnings []string
	for _, f := range findings {
		warnings = append(warnings, fmt.Sprintf("Line %d: %s.", f.Line, capitalize(f.Message)))
	}
	if !conditionalPattern.MatchString(code) {
		warnings = append(warnings, ConditionalHint)
	}
	res.Warning = strings.Join(warnings, " ")
	return res
}

// Scan returns every rule match, line by line.
func (v *Validator) Scan(code string) []Finding {
	var findings []Finding
	for i, line := range strings.Split(code, "\n") {
		for _, rule := range v.rules {
			if rule.Pattern.MatchString(line) {
				findings = append(findings, Finding{
					Rule:     rule.Name,
					Severity: rule.Severity,
					Message:  rule.Message,
					Line:     i + 1,
					Content:  strings.TrimSpace(line),
				})
			}
		}
	}
	return findings
}

// HasCritical reports whether any finding blocks execution.
func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
