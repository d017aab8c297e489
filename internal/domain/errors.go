package domain

import "errors"

// Domain errors represent error conditions in the rc522assist domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrTerminated is returned when Activate() is called after Terminate().
	ErrTerminated = errors.New("rc522assist: helper terminated")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed.
	ErrInvalidTransition = errors.New("rc522assist: invalid state transition")

	// ErrNoTag is returned by a reader device when no card answered a request.
	ErrNoTag = errors.New("rc522assist: no tag detected")

	// ErrMalformedUID is returned when a card identifier cannot be decoded.
	ErrMalformedUID = errors.New("rc522assist: malformed card identifier")

	// ErrChecksum is returned when the anti-collision check byte does not match.
	ErrChecksum = errors.New("rc522assist: identifier checksum mismatch")

	// ErrPollPanic wraps a panic recovered inside the polling phase.
	ErrPollPanic = errors.New("rc522assist: panic while polling")

	// ErrShutdownTimeout is returned when the worker did not exit in time.
	ErrShutdownTimeout = errors.New("rc522assist: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("rc522assist: invalid configuration")
)
