// internal/services/review_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

const (
	MinRating = 1
	MaxRating = 5
)

type ReviewService struct {
	db         *gorm.DB
	aggregator RatingAggregator
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty" validate:"max=5000"`
}

// NewReviewService creates the review gate. aggregator may be nil.
func NewReviewService(db *gorm.DB, aggregator RatingAggregator) *ReviewService {
	return &ReviewService{
		db:         db,
		aggregator: aggregator,
	}
}

// SubmitReview records a review from a buyer of the product. Each buyer may
// review a product once.
func (s *ReviewService) SubmitReview(ctx context.Context, user Identity, productID uuid.UUID, req *SubmitReviewRequest) (*models.Review, error) {
	if !user.Authenticated() {
		return nil, ErrUnauthenticated
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	var review *models.Review
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("load product", err)
		}

		var entitled int64
		if err := tx.Model(&models.UserPurchase{}).
			Where("user_id = ? AND product_id = ?", user.UserID, productID).
			Count(&entitled).Error; err != nil {
			return storageError("check entitlement", err)
		}
		if entitled == 0 {
			return ErrPurchaseRequired
		}

		if product.CreatorID == user.UserID {
			return ErrForbidden
		}

		var reviewed int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND product_id = ?", user.UserID, productID).
			Count(&reviewed).Error; err != nil {
			return storageError("check review", err)
		}
		if reviewed > 0 {
			return ErrAlreadyReviewed
		}

		if req.Rating < MinRating || req.Rating > MaxRating {
			return ErrInvalidRating
		}

		review = &models.Review{
			ProductID:          productID,
			UserID:             user.UserID,
			Rating:             req.Rating,
			Comment:            optionalString(req.Comment),
			IsVerifiedPurchase: true,
		}
		if err := tx.Create(review).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyReviewed
			}
			return storageError("create review", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"product_id": productID,
		"user_id":    user.UserID,
		"rating":     review.Rating,
	}).Info("Review submitted")

	if s.aggregator != nil {
		if err := s.aggregator.Recompute(ctx, productID); err != nil {
			logrus.WithError(err).WithField("product_id", productID).Error("Failed to recompute ratings")
		}
	}

	return review, nil
}
