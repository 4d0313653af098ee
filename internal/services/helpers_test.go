// internal/services/helpers_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/config"
	"github.com/snapstudio/marketplace-backend/internal/database"
	"github.com/snapstudio/marketplace-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenMemory("services_" + uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func createProfile(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.Profile {
	t.Helper()

	profile := models.Profile{Email: email, Role: role}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func createProduct(t *testing.T, db *gorm.DB, creatorID uuid.UUID, price string, status models.ProductStatus) models.Product {
	t.Helper()

	fileURL := "https://cdn.example.com/files/" + uuid.NewString() + ".zip"
	product := models.Product{
		CreatorID: creatorID,
		Title:     "Product " + price,
		Slug:      "product-" + uuid.NewString(),
		Price:     decimal.RequireFromString(price),
		FileURL:   &fileURL,
		Status:    status,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func identityOf(profile models.Profile) Identity {
	return Identity{UserID: profile.ID, Role: profile.Role}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

func configWithoutRedis() config.RedisConfig {
	return config.RedisConfig{Port: "6379", TTL: 60}
}
