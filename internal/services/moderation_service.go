// internal/services/moderation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

// ModerationService drives product status transitions. Any status may move
// to approved or rejected; there are no transition guards.
type ModerationService struct {
	db    *gorm.DB
	cache *CacheService
}

func NewModerationService(db *gorm.DB, cache *CacheService) *ModerationService {
	return &ModerationService{
		db:    db,
		cache: cache,
	}
}

// ApproveProduct makes a product visible to buyers. published_at is only
// set on the first approval.
func (s *ModerationService) ApproveProduct(ctx context.Context, admin Identity, productID uuid.UUID) (*models.Product, error) {
	return s.transition(ctx, admin, productID, models.ProductStatusApproved, models.AuditActionProductApprove)
}

// RejectProduct hides a product from buyers. published_at is left as is.
func (s *ModerationService) RejectProduct(ctx context.Context, admin Identity, productID uuid.UUID) (*models.Product, error) {
	return s.transition(ctx, admin, productID, models.ProductStatusRejected, models.AuditActionProductReject)
}

func (s *ModerationService) transition(ctx context.Context, admin Identity, productID uuid.UUID, status models.ProductStatus, action string) (*models.Product, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var product models.Product
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("load product", err)
		}

		oldStatus := product.Status
		updates := map[string]interface{}{"status": status}
		if status == models.ProductStatusApproved && product.PublishedAt == nil {
			now := time.Now()
			updates["published_at"] = now
			product.PublishedAt = &now
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Updates(updates).Error; err != nil {
			return storageError("update product status", err)
		}
		product.Status = status

		return writeAuditLog(ctx, tx, admin.UserID, action, "product", productID,
			models.JSONB{"status": string(oldStatus)},
			models.JSONB{"status": string(status)},
		)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, CacheKeyHomepage)

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"admin_id":   admin.UserID,
		"status":     status,
	}).Info("Product moderated")

	return &product, nil
}

// DeleteProduct soft deletes a product and removes its splits and reviews.
// Transactions, split payments and entitlements are kept as history. The
// owner or an admin may delete, whatever the status.
func (s *ModerationService) DeleteProduct(ctx context.Context, caller Identity, productID uuid.UUID) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("load product", err)
		}

		if !caller.CanManage(product.CreatorID) {
			return ErrForbidden
		}

		if err := tx.Where("product_id = ?", productID).Delete(&models.Split{}).Error; err != nil {
			return storageError("delete splits", err)
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.Review{}).Error; err != nil {
			return storageError("delete reviews", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return storageError("delete product", err)
		}

		return writeAuditLog(ctx, tx, caller.UserID, models.AuditActionProductDelete, "product", productID,
			models.JSONB{"status": string(product.Status), "title": product.Title},
			nil,
		)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, CacheKeyHomepage)

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"user_id":    caller.UserID,
	}).Info("Product deleted")

	return nil
}

// ListProductsForModeration returns the admin review queue, pending by default.
func (s *ModerationService) ListProductsForModeration(ctx context.Context, admin Identity, status models.ProductStatus, params utils.PaginationParams) ([]models.Product, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}

	if status == "" {
		status = models.ProductStatusPending
	}
	if !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count products", err)
	}

	var products []models.Product
	if err := utils.ApplyPagination(query.Preload("Creator").Order("created_at asc"), params).Find(&products).Error; err != nil {
		return nil, 0, storageError("fetch products", err)
	}

	return products, total, nil
}

func requireAdmin(caller Identity) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// lockForUpdate adds SELECT ... FOR UPDATE on engines that support it.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
