// internal/database/connection_test.go
package database

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/models"
)

func TestMigrationsAndSeed(t *testing.T) {
	db, err := OpenMemory("database_" + uuid.NewString())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, SeedInitialData(db))
	require.NoError(t, SeedInitialData(db))

	var count int64
	require.NoError(t, db.Model(&models.HomepageSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var settings models.HomepageSettings
	require.NoError(t, db.Where("id = ?", models.HomepageSettingsID).First(&settings).Error)
	assert.Equal(t, models.DefaultHomepageSettings().HeroTitle, settings.HeroTitle)
	assert.True(t, settings.ShowFeatured)
}

func TestEntitlementUniqueness(t *testing.T) {
	db, err := OpenMemory("database_" + uuid.NewString())
	require.NoError(t, err)
	defer Close(db)

	buyer := models.Profile{Email: "buyer@example.com", Role: models.UserRoleUser}
	creator := models.Profile{Email: "creator@example.com", Role: models.UserRoleCreator}
	require.NoError(t, db.Create(&buyer).Error)
	require.NoError(t, db.Create(&creator).Error)

	product := models.Product{
		CreatorID: creator.ID,
		Title:     "Film presets",
		Slug:      "film-presets",
		Price:     decimal.NewFromInt(10),
		Status:    models.ProductStatusApproved,
	}
	require.NoError(t, db.Create(&product).Error)

	txn := models.Transaction{
		BuyerID:       buyer.ID,
		ProductID:     product.ID,
		Amount:        decimal.NewFromInt(10),
		PlatformFee:   decimal.NewFromInt(1),
		CreatorAmount: decimal.NewFromInt(9),
		Status:        models.TransactionStatusCompleted,
	}
	require.NoError(t, db.Create(&txn).Error)

	first := models.UserPurchase{UserID: buyer.ID, ProductID: product.ID, TransactionID: txn.ID}
	require.NoError(t, db.Create(&first).Error)

	second := models.UserPurchase{UserID: buyer.ID, ProductID: product.ID, TransactionID: txn.ID}
	err = db.Create(&second).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestWithTransactionRollsBack(t *testing.T) {
	db, err := OpenMemory("database_" + uuid.NewString())
	require.NoError(t, err)
	defer Close(db)

	boom := errors.New("boom")
	err = WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Profile{Email: "x@example.com", Role: models.UserRoleUser}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Zero(t, count)
}
