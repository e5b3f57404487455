// Package protocol defines the wire contract between the guest program and
// the host.
//
// The guest program reports exactly one sentinel-tagged line on stdout:
// either a result line carrying a compact JSON action record, or an error
// line carrying the message of the fault raised by student code. The
// package provides the ActionResult record, the Outcome variant returned to
// callers, and the decoder that classifies captured output.
//
// Usage:
//
//	sentinels := protocol.NewSentinels()
//	outcome := sentinels.Decode(stdout)
//	if outcome.Kind == protocol.KindSuccess {
//	    fmt.Println(outcome.Result.Action)
//	}
package protocol
