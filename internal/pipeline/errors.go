package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"hkxshift/internal/preflight"
)

var (
	ErrInvalidScale    = preflight.ErrInvalidScale
	ErrNoopScale       = preflight.ErrNoopScale
	ErrScaleOutOfRange = preflight.ErrScaleOutOfRange
	// ErrConfirmationRequired reports advisories the caller has not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrRunLocked reports another run holding the results root.
	ErrRunLocked = errors.New("results directory is locked by another run")
)

// AdvisoryError carries the advisories that need confirmation. It matches
// ErrConfirmationRequired.
type AdvisoryError struct {
	Advisories []preflight.Advisory
}

func (e *AdvisoryError) Error() string {
	messages := make([]string, 0, len(e.Advisories))
	for _, adv := range e.Advisories {
		messages = append(messages, adv.Message)
	}
	return fmt.Sprintf("%s: %s", ErrConfirmationRequired, strings.Join(messages, "; "))
}

func (e *AdvisoryError) Unwrap() error {
	return ErrConfirmationRequired
}
