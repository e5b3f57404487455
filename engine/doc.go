// Package engine is the entry point for running a student's submission.
//
// ExecuteUserCode validates the code, synthesizes the guest program,
// runs it through a sandbox.Runner under a concurrency cap, and decodes
// the result into a protocol.Outcome. Every classified failure (rejected
// code, runtime error, timeout, oversized or malformed output) is an
// Outcome value; the error return is reserved for infrastructure faults.
package engine
