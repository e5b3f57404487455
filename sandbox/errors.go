package sandbox

import "errors"

var (
	// ErrTimedOut is returned when the guest exceeds its wall-clock budget.
	ErrTimedOut = errors.New("execution timed out")

	// ErrOutputTooLarge is returned when stdout and stderr together exceed
	// the configured output cap.
	ErrOutputTooLarge = errors.New("output exceeded the size limit")
)
