// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

// PaymentService serves the read side of settlement: purchases, earnings
// and downloads.
type PaymentService struct {
	db      *gorm.DB
	storage *StorageService
}

type EarningsSummary struct {
	TotalEarnings  decimal.Decimal       `json:"total_earnings"`
	MonthEarnings  decimal.Decimal       `json:"month_earnings"`
	PaymentCount   int64                 `json:"payment_count"`
	RecentPayments []models.SplitPayment `json:"recent_payments"`
	DisplayBalance decimal.Decimal       `json:"balance"`
}

type CreatorDashboard struct {
	ProductCount   int64            `json:"product_count"`
	ApprovedCount  int64            `json:"approved_count"`
	PendingCount   int64            `json:"pending_count"`
	PurchaseCount  int64            `json:"purchase_count"`
	TotalEarnings  decimal.Decimal  `json:"total_earnings"`
	RecentProducts []models.Product `json:"recent_products"`
}

type DownloadLink struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

const recentLimit = 10

func NewPaymentService(db *gorm.DB, storage *StorageService) *PaymentService {
	return &PaymentService{
		db:      db,
		storage: storage,
	}
}

// ListPurchases returns the caller's entitlements. Products deleted after
// purchase are still listed.
func (s *PaymentService) ListPurchases(ctx context.Context, user Identity, params utils.PaginationParams) ([]models.UserPurchase, int64, error) {
	if !user.Authenticated() {
		return nil, 0, ErrUnauthenticated
	}

	query := s.db.WithContext(ctx).Model(&models.UserPurchase{}).Where("user_id = ?", user.UserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count purchases", err)
	}

	var purchases []models.UserPurchase
	if err := utils.ApplyPagination(query, params).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Transaction").
		Order("created_at desc").
		Find(&purchases).Error; err != nil {
		return nil, 0, storageError("fetch purchases", err)
	}

	return purchases, total, nil
}

// GetEarnings sums the split payments received by the caller.
func (s *PaymentService) GetEarnings(ctx context.Context, user Identity) (*EarningsSummary, error) {
	if !user.Authenticated() {
		return nil, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx)
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	total, count, err := sumSplitPayments(db, user.UserID, nil)
	if err != nil {
		return nil, err
	}
	month, _, err := sumSplitPayments(db, user.UserID, &monthStart)
	if err != nil {
		return nil, err
	}

	var recent []models.SplitPayment
	if err := completedSplitPayments(db, user.UserID).
		Preload("Transaction").
		Preload("Transaction.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("split_payments.created_at desc").
		Limit(recentLimit).
		Find(&recent).Error; err != nil {
		return nil, storageError("fetch split payments", err)
	}

	var profile models.Profile
	if err := db.Where("id = ?", user.UserID).First(&profile).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("load profile", err)
	}

	return &EarningsSummary{
		TotalEarnings:  total,
		MonthEarnings:  month,
		PaymentCount:   count,
		RecentPayments: recent,
		DisplayBalance: profile.Balance,
	}, nil
}

func (s *PaymentService) GetCreatorDashboard(ctx context.Context, user Identity) (*CreatorDashboard, error) {
	if !user.Authenticated() {
		return nil, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx)
	dashboard := &CreatorDashboard{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&dashboard.ProductCount, db.Model(&models.Product{}).Where("creator_id = ?", user.UserID)},
		{&dashboard.ApprovedCount, db.Model(&models.Product{}).Where("creator_id = ? AND status = ?", user.UserID, models.ProductStatusApproved)},
		{&dashboard.PendingCount, db.Model(&models.Product{}).Where("creator_id = ? AND status = ?", user.UserID, models.ProductStatusPending)},
		{&dashboard.PurchaseCount, db.Model(&models.UserPurchase{}).
			Joins("JOIN products ON products.id = user_purchases.product_id").
			Where("products.creator_id = ?", user.UserID)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, storageError("count dashboard", err)
		}
	}

	total, _, err := sumSplitPayments(db, user.UserID, nil)
	if err != nil {
		return nil, err
	}
	dashboard.TotalEarnings = total

	if err := db.Where("creator_id = ?", user.UserID).
		Order("created_at desc").
		Limit(5).
		Find(&dashboard.RecentProducts).Error; err != nil {
		return nil, storageError("fetch products", err)
	}

	return dashboard, nil
}

// GetDownloadURL returns a download link for buyers, the creator and
// admins.
func (s *PaymentService) GetDownloadURL(ctx context.Context, user Identity, productID uuid.UUID) (*DownloadLink, error) {
	if !user.Authenticated() {
		return nil, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.Unscoped().Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("load product", err)
	}

	if !user.CanManage(product.CreatorID) {
		var entitled int64
		if err := db.Model(&models.UserPurchase{}).
			Where("user_id = ? AND product_id = ?", user.UserID, productID).
			Count(&entitled).Error; err != nil {
			return nil, storageError("check entitlement", err)
		}
		if entitled == 0 {
			if product.DeletedAt.Valid || !product.IsVisible() {
				return nil, ErrNotFound
			}
			return nil, ErrPurchaseRequired
		}
	}

	if product.FileURL == nil || *product.FileURL == "" {
		return nil, fmt.Errorf("%w: product has no file", ErrNotFound)
	}

	link, err := s.storage.DownloadURL(*product.FileURL)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Product{}).Unscoped().Where("id = ?", productID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error; err != nil {
		logrus.WithError(err).WithField("product_id", productID).Warn("Failed to increment download count")
	}

	result := &DownloadLink{URL: link}
	if link != *product.FileURL {
		expires := time.Now().Add(s.storage.presignTTL)
		result.ExpiresAt = &expires
	}
	return result, nil
}

func completedSplitPayments(db *gorm.DB, recipientID uuid.UUID) *gorm.DB {
	return db.Model(&models.SplitPayment{}).
		Joins("JOIN transactions ON transactions.id = split_payments.transaction_id").
		Where("split_payments.recipient_id = ? AND transactions.status = ?", recipientID, models.TransactionStatusCompleted)
}

type paymentTotals struct {
	Total decimal.Decimal
	Count int64
}

func sumSplitPayments(db *gorm.DB, recipientID uuid.UUID, since *time.Time) (decimal.Decimal, int64, error) {
	query := completedSplitPayments(db, recipientID)
	if since != nil {
		query = query.Where("split_payments.created_at >= ?", *since)
	}

	var totals paymentTotals
	if err := query.Select("COALESCE(SUM(split_payments.amount), 0) AS total, COUNT(*) AS count").
		Scan(&totals).Error; err != nil {
		return decimal.Zero, 0, storageError("sum split payments", err)
	}
	return totals.Total.Round(2), totals.Count, nil
}
