package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	resultTag = "__QUEST_RESULT"
	errorTag  = "__QUEST_ERROR"
)

// Sentinels are the line prefixes that tag the result and error lines.
type Sentinels struct {
	Result string
	Error  string
}

// DefaultSentinels is the fixed pair used by the package-level Decode.
var DefaultSentinels = Sentinels{
	Result: resultTag + "__:",
	Error:  errorTag + "__:",
}

// NewSentinels returns a pair carrying a random nonce, so that text printed
// by student code cannot impersonate the harness.
func NewSentinels() Sentinels {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Sentinels{
		Result: resultTag + "_" + nonce + "__:",
		Error:  errorTag + "_" + nonce + "__:",
	}
}

// Encode renders the result line the harness writes for r, including the
// trailing newline.
func (s Sentinels) Encode(r ActionResult) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode action result: %w", err)
	}
	return s.Result + string(payload) + "\n", nil
}

// Decode classifies captured stdout.
//
// The error sentinel wins over the result sentinel. Output with neither, or
// with a result line that does not parse, degrades to a continue action
// carrying the printed text.
func (s Sentinels) Decode(stdout string) Outcome {
	if i := lineIndex(stdout, s.Error); i >= 0 {
		return ApplicationError(strings.TrimSpace(stdout[i+len(s.Error):]))
	}

	i := lineIndex(stdout, s.Result)
	if i < 0 {
		return Malformed(stdout)
	}

	line := stdout[i+len(s.Result):]
	if j := strings.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}

	var r ActionResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &r); err != nil {
		return Malformed(stdout)
	}

	if !r.hasOutput() {
		if printed := strings.TrimSpace(stdout[:i]); printed != "" {
			r.Output = printed
		}
	}
	return Success(r)
}

// Decode classifies stdout using DefaultSentinels.
func Decode(stdout string) Outcome {
	return DefaultSentinels.Decode(stdout)
}

// lineIndex returns the index of the last occurrence of prefix that starts a
// line, or -1.
func lineIndex(s, prefix string) int {
	for end := len(s); end > 0; {
		i := strings.LastIndex(s[:end], prefix)
		if i < 0 {
			return -1
		}
		if i == 0 || s[i-1] == '\n' {
			return i
		}
		end = i
	}
	return -1
}
