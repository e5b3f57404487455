package protocol

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies the outcome of one execution.
type Kind int

const (
	KindSuccess Kind = iota
	KindApplicationError
	KindTimedOut
	KindOutputTooLarge
	KindMalformedOutput
	KindRejected
)

var kindNames = map[Kind]string{
	KindSuccess:          "success",
	KindApplicationError: "application_error",
	KindTimedOut:         "timed_out",
	KindOutputTooLarge:   "output_too_large",
	KindMalformedOutput:  "malformed_output",
	KindRejected:         "rejected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.TrimSpace(string(text))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown outcome kind: %q", name)
}

// User-facing messages for the process-level failures.
const (
	MessageTimedOut       = "Your code took too long to run. Look for a loop that never ends and try again."
	MessageOutputTooLarge = "Your code printed too much output. Try printing less."
)

// Outcome is the classified result of one execution.
//
// Result is set for KindSuccess and KindMalformedOutput (the permissive
// continue record). Message is set for the failure kinds.
type Outcome struct {
	Kind     Kind          `json:"kind"`
	Result   *ActionResult `json:"result,omitempty"`
	Message  string        `json:"message,omitempty"`
	Raw      string        `json:"raw,omitempty"`
	Warning  string        `json:"warning,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the outcome carries an action the game may apply.
// Malformed output degrades to a continue action and therefore counts.
func (o Outcome) Succeeded() bool {
	return o.Kind == KindSuccess || o.Kind == KindMalformedOutput
}

func Success(r ActionResult) Outcome {
	return Outcome{Kind: KindSuccess, Result: &r}
}

func ApplicationError(message string) Outcome {
	return Outcome{Kind: KindApplicationError, Message: message}
}

func TimedOut() Outcome {
	return Outcome{Kind: KindTimedOut, Message: MessageTimedOut}
}

func OutputTooLarge() Outcome {
	return Outcome{Kind: KindOutputTooLarge, Message: MessageOutputTooLarge}
}

func Rejected(message string) Outcome {
	return Outcome{Kind: KindRejected, Message: message}
}

// Malformed wraps raw output into the permissive continue record.
func Malformed(raw string) Outcome {
	r := Continue(strings.TrimSpace(raw))
	return Outcome{Kind: KindMalformedOutput, Result: &r, Raw: raw}
}
