package errors

import "errors"

var (
	ErrNotFound = errors.New("trip not found")

	ErrInvalidID = errors.New("invalid trip ID format")

	// ErrNoMatch means a conditional update matched no document: the trip is
	// gone, out of seats, or the targeted reservation is not active. Callers
	// re-read the trip to tell those apart.
	ErrNoMatch = errors.New("no trip matched the conditional update")
)
