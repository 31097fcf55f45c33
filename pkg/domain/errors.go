package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidInput is returned when a programmatic caller passes a value outside
// of the accepted domain (unknown band key, enrollment, household size).
// Conversational input never produces it; the router re-prompts instead.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidFlow is returned when a persisted (mode, step) pair cannot be decoded.
var ErrInvalidFlow = errors.New("invalid flow")

// PreconditionError is returned when an estimate is requested before every
// required answer has been collected. It signals a programming error in the
// caller, never a user-facing condition.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("estimate requires %s", strings.Join(e.Missing, ", "))
}

// ConfigurationError is returned when no award-year configuration exists for
// the requested year.
type ConfigurationError struct {
	AwardYear string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no grant configuration for award year %q", e.AwardYear)
}

// IsPrecondition reports whether err carries a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
