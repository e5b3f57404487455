package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Action tags reported by the game action primitives.
const (
	ActionContinue = "continue"
	ActionOpenDoor = "open_door"
	ActionMove     = "move"
	ActionCollect  = "collect"
	ActionMessage  = "message"
)

// ActionResult is the flat record produced by one execution.
//
// Keys other than the well-known ones are kept verbatim in Extra so that a
// record survives an encode/decode cycle unchanged. Numbers in Extra are
// decoded as json.Number.
type ActionResult struct {
	Action   string
	Success  bool
	Location string
	Item     string
	Text     string
	Output   string
	Extra    map[string]any
}

// MarshalJSON flattens the record into a single JSON object.
func (r ActionResult) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		m[k] = v
	}
	m["action"] = r.Action
	m["success"] = r.Success
	for key, value := range r.stringFields() {
		if value != "" {
			m[key] = value
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads a flat JSON object. "action" must be a string and
// "success" a boolean; the optional string fields are only lifted out of the
// object when they are non-empty strings.
func (r *ActionResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode action result: %w", err)
	}
	if raw == nil {
		return errors.New("action result must be a JSON object")
	}

	action, ok := raw["action"].(string)
	if !ok {
		return errors.New(`action result: "action" must be a string`)
	}
	success, ok := raw["success"].(bool)
	if !ok {
		return errors.New(`action result: "success" must be a boolean`)
	}
	delete(raw, "action")
	delete(raw, "success")

	out := ActionResult{Action: action, Success: success}
	targets := map[string]*string{
		"location": &out.Location,
		"item":     &out.Item,
		"text":     &out.Text,
		"output":   &out.Output,
	}
	for key, dst := range targets {
		if s, isString := raw[key].(string); isString && s != "" {
			*dst = s
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*r = out
	return nil
}

func (r ActionResult) stringFields() map[string]string {
	return map[string]string{
		"location": r.Location,
		"item":     r.Item,
		"text":     r.Text,
		"output":   r.Output,
	}
}

// hasOutput reports whether the record already carries an output value,
// either as the typed field or verbatim in Extra.
func (r ActionResult) hasOutput() bool {
	if r.Output != "" {
		return true
	}
	_, ok := r.Extra["output"]
	return ok
}

// Continue returns the default record used when a program produced nothing.
func Continue(output string) ActionResult {
	return ActionResult{Action: ActionContinue, Success: true, Output: output}
}
