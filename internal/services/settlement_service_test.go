// internal/services/settlement_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

func TestCalculateSettlementWithoutSplits(t *testing.T) {
	creatorID := uuid.New()

	breakdown := CalculateSettlement(dec("299"), creatorID, nil)

	assert.True(t, breakdown.PlatformFee.Equal(dec("29.9")), breakdown.PlatformFee.String())
	assert.True(t, breakdown.CreatorAmount.Equal(dec("269.1")), breakdown.CreatorAmount.String())
	require.Len(t, breakdown.Shares, 1)
	assert.Equal(t, creatorID, breakdown.Shares[0].RecipientID)
	assert.True(t, breakdown.Shares[0].Percentage.Equal(dec("100")))
	assert.True(t, breakdown.Shares[0].Amount.Equal(dec("269.1")))
}

func TestCalculateSettlementWithCollaborator(t *testing.T) {
	creatorID, collaboratorID := uuid.New(), uuid.New()
	splits := []models.Split{
		{UserID: creatorID, Percentage: dec("70")},
		{UserID: collaboratorID, Percentage: dec("30")},
	}

	breakdown := CalculateSettlement(dec("100"), creatorID, splits)

	assert.True(t, breakdown.PlatformFee.Equal(dec("10")))
	assert.True(t, breakdown.CreatorAmount.Equal(dec("90")))
	require.Len(t, breakdown.Shares, 2)
	assert.True(t, breakdown.Shares[0].Amount.Equal(dec("63")))
	assert.True(t, breakdown.Shares[1].Amount.Equal(dec("27")))
}

func TestCalculateSettlementFeeComplement(t *testing.T) {
	for _, amount := range []string{"0", "0.01", "0.05", "0.15", "9.99", "12.34", "33.33", "299", "1000000"} {
		breakdown := CalculateSettlement(dec(amount), uuid.New(), nil)
		assert.True(t, breakdown.PlatformFee.Add(breakdown.CreatorAmount).Equal(dec(amount)), amount)
		assert.True(t, breakdown.PlatformFee.Equal(breakdown.PlatformFee.Round(2)), amount)
	}
}

func TestCalculateSettlementAssignsResidueToCreator(t *testing.T) {
	creatorID, a, b := uuid.New(), uuid.New(), uuid.New()

	breakdown := CalculateSettlement(dec("100"), creatorID, []models.Split{
		{UserID: a, Percentage: dec("33.33")},
		{UserID: creatorID, Percentage: dec("33.34")},
		{UserID: b, Percentage: dec("33.33")},
	})

	require.Len(t, breakdown.Shares, 3)
	assert.True(t, breakdown.Shares[0].Amount.Equal(dec("29.99")), breakdown.Shares[0].Amount.String())
	assert.True(t, breakdown.Shares[1].Amount.Equal(dec("30.02")), breakdown.Shares[1].Amount.String())
	assert.True(t, breakdown.Shares[2].Amount.Equal(dec("29.99")), breakdown.Shares[2].Amount.String())

	tiny := CalculateSettlement(dec("0.10"), uuid.New(), []models.Split{
		{UserID: a, Percentage: dec("50")},
		{UserID: b, Percentage: dec("50")},
	})
	require.Len(t, tiny.Shares, 2)
	assert.True(t, tiny.Shares[0].Amount.Equal(dec("0.05")), tiny.Shares[0].Amount.String())
	assert.True(t, tiny.Shares[1].Amount.Equal(dec("0.04")), tiny.Shares[1].Amount.String())
}

func TestCalculateSettlementSharesSumToCreatorAmount(t *testing.T) {
	amounts := []string{"0.01", "0.10", "0.50", "0.99", "1.03", "7.77", "9.99", "33.33", "100", "123.45", "299", "999999.99"}
	splitSets := [][]string{
		{"100"},
		{"50", "50"},
		{"70", "30"},
		{"33.33", "33.33", "33.34"},
		{"12.5", "12.5", "75"},
		{"0.01", "99.99"},
		{"14.29", "14.29", "14.29", "14.29", "14.28", "14.28", "14.28"},
	}

	for _, amount := range amounts {
		for _, set := range splitSets {
			creatorID := uuid.New()
			splits := make([]models.Split, 0, len(set))
			for i, pct := range set {
				userID := uuid.New()
				if i == len(set)-1 {
					userID = creatorID
				}
				splits = append(splits, models.Split{UserID: userID, Percentage: dec(pct)})
			}

			breakdown := CalculateSettlement(dec(amount), creatorID, splits)

			total := decimal.Zero
			for _, share := range breakdown.Shares {
				assert.False(t, share.Amount.IsNegative(), "%s %v", amount, set)
				assert.True(t, share.Amount.Equal(share.Amount.Round(2)), "%s %v", amount, set)
				total = total.Add(share.Amount)
			}
			assert.True(t, total.Equal(breakdown.CreatorAmount), "%s %v: shares %s, creator amount %s", amount, set, total, breakdown.CreatorAmount)
		}
	}
}

func TestPurchaseSettlesTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "299", models.ProductStatusApproved)

	txn, err := svc.Purchase(ctx, identityOf(buyer), product.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, models.PaymentMethodSimulated, txn.PaymentMethod)
	assert.NotEmpty(t, txn.PaymentReference)
	assert.NotNil(t, txn.CompletedAt)

	var stored models.Transaction
	require.NoError(t, db.Preload("SplitPayments").Where("id = ?", txn.ID).First(&stored).Error)
	assert.True(t, stored.Amount.Equal(dec("299")))
	assert.True(t, stored.PlatformFee.Equal(dec("29.9")), stored.PlatformFee.String())
	assert.True(t, stored.CreatorAmount.Equal(dec("269.1")), stored.CreatorAmount.String())

	require.Len(t, stored.SplitPayments, 1)
	assert.Equal(t, creator.ID, stored.SplitPayments[0].RecipientID)
	assert.True(t, stored.SplitPayments[0].Amount.Equal(dec("269.1")))
	assert.True(t, stored.SplitPayments[0].Percentage.Equal(dec("100")))

	assert.EqualValues(t, 1, countRows(t, db, &models.UserPurchase{}, "user_id = ? AND product_id = ? AND transaction_id = ?", buyer.ID, product.ID, txn.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.AuditLog{}, "action = ? AND resource_id = ?", models.AuditActionPurchase, product.ID))
}

func TestPurchaseFansOutCollaboratorSplits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	products := NewProductService(db, NewProfileService(db))
	moderation := NewModerationService(db, nil)
	settlement := NewSettlementService(db)

	creator := createProfile(t, db, "creator@example.com", models.UserRoleUser)
	collaborator := createProfile(t, db, "collab@example.com", models.UserRoleUser)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	admin := createProfile(t, db, "admin@example.com", models.UserRoleAdmin)

	product, err := products.CreateProduct(ctx, identityOf(creator), &CreateProductRequest{
		Title:  "Portrait presets",
		Price:  dec("100"),
		Splits: []SplitRequest{{Email: "Collab@Example.com", Percentage: dec("30")}},
	})
	require.NoError(t, err)

	_, err = moderation.ApproveProduct(ctx, identityOf(admin), product.ID)
	require.NoError(t, err)

	txn, err := settlement.Purchase(ctx, identityOf(buyer), product.ID)
	require.NoError(t, err)
	assert.True(t, txn.CreatorAmount.Equal(dec("90")))

	var payments []models.SplitPayment
	require.NoError(t, db.Where("transaction_id = ?", txn.ID).Find(&payments).Error)
	require.Len(t, payments, 2)

	byRecipient := map[uuid.UUID]models.SplitPayment{}
	for _, p := range payments {
		byRecipient[p.RecipientID] = p
	}
	assert.True(t, byRecipient[creator.ID].Amount.Equal(dec("63")), byRecipient[creator.ID].Amount.String())
	assert.True(t, byRecipient[creator.ID].Percentage.Equal(dec("70")))
	assert.True(t, byRecipient[collaborator.ID].Amount.Equal(dec("27")), byRecipient[collaborator.ID].Amount.String())
	assert.True(t, byRecipient[collaborator.ID].Percentage.Equal(dec("30")))
}

func TestPurchasePreconditions(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	approved := createProduct(t, db, creator.ID, "10", models.ProductStatusApproved)
	pending := createProduct(t, db, creator.ID, "10", models.ProductStatusPending)
	rejected := createProduct(t, db, creator.ID, "10", models.ProductStatusRejected)

	_, err := svc.Purchase(ctx, Identity{}, approved.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Purchase(ctx, identityOf(buyer), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Purchase(ctx, identityOf(buyer), pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Purchase(ctx, identityOf(buyer), rejected.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, product := range []models.Product{approved, pending, rejected} {
		_, err = svc.Purchase(ctx, identityOf(creator), product.ID)
		assert.ErrorIs(t, err, ErrSelfPurchaseForbidden, product.Status)
	}

	assert.Zero(t, countRows(t, db, &models.Transaction{}, ""))
	assert.Zero(t, countRows(t, db, &models.UserPurchase{}, ""))
}

func TestPurchaseAlreadyOwned(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "25", models.ProductStatusApproved)

	_, err := svc.Purchase(ctx, identityOf(buyer), product.ID)
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, identityOf(buyer), product.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	assert.EqualValues(t, 1, countRows(t, db, &models.Transaction{}, ""))
	assert.EqualValues(t, 1, countRows(t, db, &models.SplitPayment{}, ""))
}

func TestConcurrentPurchasesCreateOneEntitlement(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "50", models.ProductStatusApproved)

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(ctx, identityOf(buyer), product.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyOwned)
	}

	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, countRows(t, db, &models.UserPurchase{}, ""))
	assert.EqualValues(t, 1, countRows(t, db, &models.Transaction{}, ""))
}

func TestPurchaseRollsBackOnWriteFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "40", models.ProductStatusApproved)

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_split_payments", func(tx *gorm.DB) {
		if tx.Statement.Table == "split_payments" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := svc.Purchase(ctx, identityOf(buyer), product.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailure)

	assert.Zero(t, countRows(t, db, &models.Transaction{}, ""))
	assert.Zero(t, countRows(t, db, &models.UserPurchase{}, ""))
	assert.Zero(t, countRows(t, db, &models.SplitPayment{}, ""))
}

func TestPurchaseLosingEntitlementRaceReportsAlreadyOwned(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettlementService(db)
	ctx := context.Background()

	creator := createProfile(t, db, "creator@example.com", models.UserRoleCreator)
	buyer := createProfile(t, db, "buyer@example.com", models.UserRoleUser)
	product := createProduct(t, db, creator.ID, "15", models.ProductStatusApproved)

	// a concurrent purchase commits its entitlement after our pre-check
	injected := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_entitlement", func(tx *gorm.DB) {
		entitlement, ok := tx.Statement.Dest.(*models.UserPurchase)
		if injected || !ok {
			return
		}
		injected = true
		winner := models.UserPurchase{
			UserID:        entitlement.UserID,
			ProductID:     entitlement.ProductID,
			TransactionID: entitlement.TransactionID,
		}
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Create(&winner).Error)
	}))

	_, err := svc.Purchase(ctx, identityOf(buyer), product.ID)
	require.True(t, injected)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.NotErrorIs(t, err, ErrStorageFailure)

	assert.Zero(t, countRows(t, db, &models.Transaction{}, ""))
	assert.Zero(t, countRows(t, db, &models.UserPurchase{}, ""))
	assert.Zero(t, countRows(t, db, &models.SplitPayment{}, ""))
}
