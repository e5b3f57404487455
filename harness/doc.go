// Package harness turns a student submission into a complete guest program.
//
// The guest program binds the caller's context variables as Python literals,
// defines the game action primitives over a per-execution last-action cell,
// runs the student's source inside a guarded region and reports exactly one
// sentinel-tagged line (see package protocol).
//
// Context values are never spliced into the program as free text: every
// value is type-checked and rendered by a strict literal encoder.
//
// Usage:
//
//	program, err := harness.BuildProgram(code, map[string]any{
//	    "location":  "forest_path",
//	    "inventory": []string{"lamp", "rope"},
//	}, protocol.NewSentinels())
package harness
