package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad marks a missing or malformed corpus source. Fatal at
	// startup: there are no partial loads.
	ErrDataLoad = errors.New("corpus load failed")
	// ErrModelNotLoaded marks use of the embedding encoder before Init.
	// A programming error, fatal when it occurs.
	ErrModelNotLoaded = errors.New("embedding model not loaded")
	// ErrBackendUnavailable marks an unreachable or erroring vector
	// backend. Absorbed at the retrieval boundary, never shown to users.
	ErrBackendUnavailable = errors.New("vector backend unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
