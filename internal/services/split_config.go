// internal/services/split_config.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

// SplitRequest names a collaborator by email and the share of the creator
// amount they receive.
type SplitRequest struct {
	Email           string          `json:"email" validate:"required,email"`
	Percentage      decimal.Decimal `json:"percentage" validate:"gt=0"`
	RoleDescription string          `json:"role_description,omitempty" validate:"max=255"`
}

// ValidateSplitPercentages checks the requested shares before any lookup or
// write happens.
func ValidateSplitPercentages(reqs []SplitRequest) error {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(reqs))

	for _, req := range reqs {
		if !req.Percentage.IsPositive() {
			return fmt.Errorf("%w: split percentage must be positive", ErrInvalidInput)
		}
		if !req.Percentage.Equal(req.Percentage.Round(2)) {
			return fmt.Errorf("%w: split percentage has more than two decimals", ErrInvalidInput)
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if _, dup := seen[email]; dup {
			return fmt.Errorf("%w: duplicate collaborator %s", ErrInvalidInput, email)
		}
		seen[email] = struct{}{}

		total = total.Add(req.Percentage)
	}

	if total.GreaterThan(hundred) {
		return ErrSplitOverAllocated
	}
	return nil
}

// BuildSplits resolves collaborators and returns the split rows for a new
// product. Collaborators that cannot be resolved are rejected. The creator
// receives the unallocated remainder as an explicit row, or 100% when no
// collaborator is named.
func BuildSplits(tx *gorm.DB, creatorID uuid.UUID, reqs []SplitRequest) ([]models.Split, error) {
	if err := ValidateSplitPercentages(reqs); err != nil {
		return nil, err
	}

	collaborators := make([]models.Split, 0, len(reqs))
	allocated := decimal.Zero

	for _, req := range reqs {
		email := strings.ToLower(strings.TrimSpace(req.Email))

		var profile models.Profile
		if err := tx.Where("LOWER(email) = ?", email).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCollaborator, email)
			}
			return nil, storageError("resolve collaborator", err)
		}

		if profile.ID == creatorID {
			return nil, fmt.Errorf("%w: creator cannot be listed as a collaborator", ErrInvalidInput)
		}

		split := models.Split{
			UserID:     profile.ID,
			Percentage: req.Percentage,
		}
		if role := strings.TrimSpace(req.RoleDescription); role != "" {
			split.RoleDescription = &role
		}
		collaborators = append(collaborators, split)
		allocated = allocated.Add(req.Percentage)
	}

	splits := make([]models.Split, 0, len(collaborators)+1)
	if remainder := hundred.Sub(allocated); remainder.IsPositive() {
		splits = append(splits, models.Split{UserID: creatorID, Percentage: remainder})
	}
	return append(splits, collaborators...), nil
}
