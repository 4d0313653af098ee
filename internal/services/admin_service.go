// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type PlatformStats struct {
	TotalUsers            int64           `json:"total_users"`
	TotalCreators         int64           `json:"total_creators"`
	NewUsersThisMonth     int64           `json:"new_users_this_month"`
	ApprovedProducts      int64           `json:"approved_products"`
	PendingProducts       int64           `json:"pending_products"`
	CompletedTransactions int64           `json:"completed_transactions"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	MonthlyRevenue        decimal.Decimal `json:"monthly_revenue"`
	PlatformFees          decimal.Decimal `json:"platform_fees"`
	CreatorPayouts        decimal.Decimal `json:"creator_payouts"`
	PublishedPosts        int64           `json:"published_posts"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	Action       string `json:"action,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type revenueTotals struct {
	Revenue decimal.Decimal
	Fees    decimal.Decimal
	Payouts decimal.Decimal
}

// GetPlatformStats aggregates the admin dashboard figures.
func (s *AdminService) GetPlatformStats(ctx context.Context, admin Identity) (*PlatformStats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &PlatformStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.Profile{})},
		{&stats.TotalCreators, db.Model(&models.Profile{}).Where("role = ?", models.UserRoleCreator)},
		{&stats.NewUsersThisMonth, db.Model(&models.Profile{}).Where("created_at >= ?", monthStart)},
		{&stats.ApprovedProducts, db.Model(&models.Product{}).Where("status = ?", models.ProductStatusApproved)},
		{&stats.PendingProducts, db.Model(&models.Product{}).Where("status = ?", models.ProductStatusPending)},
		{&stats.CompletedTransactions, db.Model(&models.Transaction{}).Where("status = ?", models.TransactionStatusCompleted)},
		{&stats.PublishedPosts, db.Model(&models.Post{}).Where("is_published = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, storageError("count stats", err)
		}
	}

	// Revenue statistics
	var totals revenueTotals
	if err := db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionStatusCompleted).
		Select("COALESCE(SUM(amount), 0) AS revenue, COALESCE(SUM(platform_fee), 0) AS fees, COALESCE(SUM(creator_amount), 0) AS payouts").
		Scan(&totals).Error; err != nil {
		return nil, storageError("sum revenue", err)
	}
	stats.TotalRevenue = totals.Revenue.Round(2)
	stats.PlatformFees = totals.Fees.Round(2)
	stats.CreatorPayouts = totals.Payouts.Round(2)

	var monthly revenueTotals
	if err := db.Model(&models.Transaction{}).
		Where("status = ? AND created_at >= ?", models.TransactionStatusCompleted, monthStart).
		Select("COALESCE(SUM(amount), 0) AS revenue").
		Scan(&monthly).Error; err != nil {
		return nil, storageError("sum monthly revenue", err)
	}
	stats.MonthlyRevenue = monthly.Revenue.Round(2)

	return stats, nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, admin Identity, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count audit logs", err)
	}

	var logs []models.AuditLog
	sorted := utils.ApplySort(query.Preload("User"), filter.PaginationParams, "created_at", "action", "resource_type")
	if err := utils.ApplyPagination(sorted, filter.PaginationParams).
		Find(&logs).Error; err != nil {
		return nil, 0, storageError("fetch audit logs", err)
	}

	return logs, total, nil
}
