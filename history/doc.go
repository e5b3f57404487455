// Package history keeps a log of executed submissions in SQLite.
//
// Each execution outcome is stored with the submitted code, the outcome
// kind, the resulting action, and the duration, so that instructors can see
// what a class has been running. It is not game-state storage.
package history
