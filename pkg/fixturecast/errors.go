package fixturecast

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData signals the caller to abstain: a team has too few recent
	// games, or there are too few examples to train on
	ErrInsufficientData = errors.New("insufficient data")
	// ErrEmptyTrainingSet is returned when no finished match yields a feature vector
	ErrEmptyTrainingSet = fmt.Errorf("empty training set: %w", ErrInsufficientData)
	// ErrModelNotFound is returned when a named model artifact does not exist
	ErrModelNotFound = errors.New("model not found")
	// ErrUpstreamData is returned when remote match or standings data is absent or malformed
	ErrUpstreamData = errors.New("upstream data unavailable")
)

// IsAbstention reports whether err means "not enough usable data" rather than a fault.
// Upstream failures are treated the same way as insufficient history.
func IsAbstention(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrUpstreamData)
}

func upstreamError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstreamData, fmt.Sprintf(format, args...))
}
