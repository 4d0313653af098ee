// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds returned by the service layer. Handlers map them to HTTP
// status codes and localized messages.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrAlreadyOwned          = errors.New("product already owned")
	ErrSelfPurchaseForbidden = errors.New("cannot purchase own product")
	ErrSplitOverAllocated    = errors.New("split percentages exceed 100")
	ErrUnknownCollaborator   = errors.New("unknown collaborator")
	ErrPurchaseRequired      = errors.New("purchase required")
	ErrAlreadyReviewed       = errors.New("product already reviewed")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrStorageFailure        = errors.New("storage failure")
)

// storageError wraps a database error so callers can match both the kind
// and the driver error.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}

// invalidInput wraps a validation error as ErrInvalidInput.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
