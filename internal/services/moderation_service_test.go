// internal/services/moderation_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapstudio/marketplace-backend/internal/models"
	"github.com/snapstudio/marketplace-backend/internal/utils"
)

func TestApproveSetsPublishedAtOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, NewCacheService(configWithoutRedis()))
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	product := createProduct(t, db, creator.ID, "10", models.ProductStatusPending)

	approved, err := svc.ApproveProduct(ctx, identityOf(admin), product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusApproved, approved.Status)
	require.NotNil(t, approved.PublishedAt)

	var first models.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&first).Error)
	require.NotNil(t, first.PublishedAt)

	_, err = svc.ApproveProduct(ctx, identityOf(admin), product.ID)
	require.NoError(t, err)

	var second models.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&second).Error)
	require.NotNil(t, second.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt))

	// reject keeps published_at, re-approval keeps the original value
	rejected, err := svc.RejectProduct(ctx, identityOf(admin), product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusRejected, rejected.Status)

	var third models.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&third).Error)
	assert.Equal(t, models.ProductStatusRejected, third.Status)
	require.NotNil(t, third.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*third.PublishedAt))

	assert.EqualValues(t, 2, countRows(t, db, &models.AuditLog{}, "action = ?", models.AuditActionProductApprove))
	assert.EqualValues(t, 1, countRows(t, db, &models.AuditLog{}, "action = ?", models.AuditActionProductReject))
}

func TestRejectPendingLeavesPublishedAtUnset(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	product := createProduct(t, db, creator.ID, "10", models.ProductStatusPending)

	_, err := svc.RejectProduct(ctx, identityOf(admin), product.ID)
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&stored).Error)
	assert.Equal(t, models.ProductStatusRejected, stored.Status)
	assert.Nil(t, stored.PublishedAt)
}

func TestModerationRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	product := createProduct(t, db, creator.ID, "10", models.ProductStatusPending)

	_, err := svc.ApproveProduct(ctx, Identity{}, product.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ApproveProduct(ctx, identityOf(creator), product.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RejectProduct(ctx, identityOf(creator), product.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ApproveProduct(ctx, identityOf(admin), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.ListProductsForModeration(ctx, identityOf(creator), "", utils.DefaultPagination())
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.ListProductsForModeration(ctx, identityOf(admin), "archived", utils.DefaultPagination())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListProductsForModeration(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	pending := createProduct(t, db, creator.ID, "10", models.ProductStatusPending)
	createProduct(t, db, creator.ID, "10", models.ProductStatusApproved)

	products, total, err := svc.ListProductsForModeration(ctx, identityOf(admin), "", utils.DefaultPagination())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, pending.ID, products[0].ID)

	_, total, err = svc.ListProductsForModeration(ctx, identityOf(admin), models.ProductStatusApproved, utils.DefaultPagination())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestDeleteProductCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	moderation := NewModerationService(db, nil)
	settlement := NewSettlementService(db)
	reviews := NewReviewService(db, nil)

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	stranger := createProfile(t, db, "stranger@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "20", models.ProductStatusApproved)
	require.NoError(t, db.Create(&models.Split{ProductID: product.ID, UserID: creator.ID, Percentage: dec("100")}).Error)

	_, err := settlement.Purchase(ctx, identityOf(buyer), product.ID)
	require.NoError(t, err)
	_, err = reviews.SubmitReview(ctx, identityOf(buyer), product.ID, &SubmitReviewRequest{Rating: 5})
	require.NoError(t, err)

	err = moderation.DeleteProduct(ctx, identityOf(stranger), product.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = moderation.DeleteProduct(ctx, Identity{}, product.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, moderation.DeleteProduct(ctx, identityOf(creator), product.ID))

	assert.Zero(t, countRows(t, db, &models.Product{}, "id = ?", product.ID))
	assert.EqualValues(t, 1, countRows(t, db.Unscoped(), &models.Product{}, "id = ?", product.ID))
	assert.Zero(t, countRows(t, db, &models.Split{}, "product_id = ?", product.ID))
	assert.Zero(t, countRows(t, db, &models.Review{}, "product_id = ?", product.ID))

	// settlement history is kept
	assert.EqualValues(t, 1, countRows(t, db, &models.Transaction{}, "product_id = ?", product.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.SplitPayment{}, ""))
	assert.EqualValues(t, 1, countRows(t, db, &models.UserPurchase{}, "product_id = ?", product.ID))

	err = moderation.DeleteProduct(ctx, identityOf(creator), product.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminMayDeleteAnyProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db, nil)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)
	product := createProduct(t, db, creator.ID, "20", models.ProductStatusRejected)

	require.NoError(t, svc.DeleteProduct(ctx, identityOf(admin), product.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.AuditLog{}, "action = ? AND user_id = ?", models.AuditActionProductDelete, admin.ID))
}
