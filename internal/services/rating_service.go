// internal/services/rating_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

// Bayesian prior used for weighted_score: products with few reviews are
// pulled towards the prior mean.
var (
	RatingPriorMean   = decimal.NewFromInt(3)
	RatingPriorWeight = decimal.NewFromInt(5)
)

// RatingAggregator keeps the denormalized rating columns of a product in
// sync with its reviews.
type RatingAggregator interface {
	Recompute(ctx context.Context, productID uuid.UUID) error
}

type RatingService struct {
	db    *gorm.DB
	cache *CacheService
}

func NewRatingService(db *gorm.DB, cache *CacheService) *RatingService {
	return &RatingService{
		db:    db,
		cache: cache,
	}
}

type ratingStats struct {
	Count int64
	Sum   float64
}

func (s *RatingService) Recompute(ctx context.Context, productID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var stats ratingStats
	if err := db.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("product_id = ?", productID).
		Scan(&stats).Error; err != nil {
		return storageError("aggregate ratings", err)
	}

	avg, weighted := RatingScores(stats.Count, decimal.NewFromFloat(stats.Sum))

	if err := db.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"avg_rating":     avg,
		"rating_count":   stats.Count,
		"weighted_score": weighted,
	}).Error; err != nil {
		return storageError("update ratings", err)
	}

	s.cache.Invalidate(ctx, CacheKeyHomepage)

	logrus.WithFields(logrus.Fields{
		"product_id":     productID,
		"rating_count":   stats.Count,
		"avg_rating":     avg.String(),
		"weighted_score": weighted.String(),
	}).Debug("Ratings recomputed")

	return nil
}

// RatingScores returns the plain average and the Bayesian weighted score
// for count ratings adding up to sum.
func RatingScores(count int64, sum decimal.Decimal) (avg, weighted decimal.Decimal) {
	n := decimal.NewFromInt(count)
	if count > 0 {
		avg = sum.Div(n).Round(2)
	}

	weighted = RatingPriorWeight.Mul(RatingPriorMean).Add(sum).
		Div(RatingPriorWeight.Add(n)).
		Round(4)
	return avg, weighted
}
