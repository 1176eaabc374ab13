package policy

import (
	"errors"
	"fmt"
)

// Sentinel errors for policy tier reads. Callers match them with errors.Is
// through the LoadError wrapper.
var (
	// ErrPolicyNotFound is returned when a tier's policy file does not exist.
	ErrPolicyNotFound = errors.New("policy file not found")

	// ErrPolicyNotRegular is returned when a tier's path is a directory or device.
	ErrPolicyNotRegular = errors.New("policy path is not a regular file")

	// ErrPolicyTooLarge is returned when a policy file exceeds MaxPolicyBytes.
	ErrPolicyTooLarge = fmt.Errorf("policy file exceeds %d bytes", MaxPolicyBytes)

	// ErrPolicyMalformed is returned when a policy file is not a JSON object.
	ErrPolicyMalformed = errors.New("policy file is not a JSON object")

	// ErrPolicyReadTimeout is returned when reading a policy file takes longer than ReadTimeout.
	ErrPolicyReadTimeout = fmt.Errorf("policy read timeout after %s", ReadTimeout)

	// ErrNoPath is returned when a tier has no path to read.
	ErrNoPath = errors.New("no policy path for tier")
)

// LoadError records why one tier did not produce a policy.
type LoadError struct {
	Tier Tier
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s policy: %v", e.Tier, e.Err)
	}
	return fmt.Sprintf("%s policy %s: %v", e.Tier, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
