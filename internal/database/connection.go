// internal/database/connection.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snapstudio/marketplace-backend/internal/config"
	"github.com/snapstudio/marketplace-backend/internal/models"
)

var DB *gorm.DB

// GormConfig returns the GORM settings shared by every dialect. Driver
// errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey.
func GormConfig(logLevel string) *gorm.Config {
	level := logger.Silent
	switch logLevel {
	case "error":
		level = logger.Error
	case "warn":
		level = logger.Warn
	case "info":
		level = logger.Info
	}

	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established")
	return DB, nil
}

// Ping checks that the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Product{},
		&models.Split{},
		&models.Transaction{},
		&models.SplitPayment{},
		&models.UserPurchase{},
		&models.Review{},
		&models.Post{},
		&models.HomepageSettings{},
		&models.AuditLog{},
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_status_published ON products(status, published_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_status ON products(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Settlement
		"CREATE INDEX IF NOT EXISTS idx_transactions_status_created ON transactions(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_split_payments_recipient_created ON split_payments(recipient_id, created_at DESC)",

		// Blog
		"CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(is_published, published_at DESC)",

		// Audit
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	if db.Dialector.Name() == "postgres" {
		indexes = append(indexes,
			// Full-text search
			"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('simple', title || ' ' || coalesce(description, '')))",
		)
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData writes the default homepage settings row when it is absent.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	var settings models.HomepageSettings
	err := db.Where("id = ?", models.HomepageSettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultHomepageSettings()
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to create homepage settings: %w", err)
		}
		logrus.Info("Default homepage settings created")
	} else if err != nil {
		return fmt.Errorf("failed to load homepage settings: %w", err)
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
