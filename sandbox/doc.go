// Package sandbox runs generated guest programs in an isolated process.
//
// A Runner writes the program to a short-lived artifact file, starts the
// Python interpreter on it (directly on the host or inside a docker/podman
// container), and waits with a wall-clock timeout and a cap on combined
// output. Timeouts and oversized output are reported as ErrTimedOut and
// ErrOutputTooLarge. The artifact is removed on every exit path; the
// Sweeper removes anything a crashed process left behind.
//
// Process and file-system access go through the CommandRunner and
// FileSystem interfaces so the runners can be tested without spawning
// anything.
package sandbox
