package review

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an id that is not in the relevant sequence.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCommand is returned for an unknown command tag or a malformed payload.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrPersistenceUnavailable is returned when a snapshot cannot be read or written.
	// It never reaches the command path; the gateway logs and recovers from it.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrConflict is returned when a state replacement was prepared from a state that has changed since.
	ErrConflict = errors.New("conflict")

	ErrItemNotFound    = fmt.Errorf("%w: item", ErrNotFound)
	ErrSubjectNotFound = fmt.Errorf("%w: subject", ErrNotFound)
)
