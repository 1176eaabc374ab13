package hook

import "errors"

// Sentinel errors for hook request parsing.
var (
	// ErrEmptyInput is returned when stdin carries no request.
	ErrEmptyInput = errors.New("empty hook input")

	// ErrInvalidInput is returned when stdin is not a JSON object.
	ErrInvalidInput = errors.New("invalid hook input")

	// ErrInputTooLarge is returned when stdin exceeds MaxRequestBytes.
	ErrInputTooLarge = errors.New("hook input too large")
)
