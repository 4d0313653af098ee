// internal/database/sqlite.go
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/snapstudio/marketplace-backend/internal/config"
)

// Open connects using the configured driver. The sqlite driver is meant for
// local development without a PostgreSQL server.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.SQLitePath)
		db, err := OpenSQLite(dsn, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		DB = db
		return db, nil
	}
	return Initialize(cfg)
}

// OpenSQLite opens a SQLite database with foreign keys enforced. A single
// connection is used so in-memory databases stay shared and writers are
// serialized.
func OpenSQLite(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// OpenMemory returns a migrated, private in-memory database. Tests use it
// so constraint and rollback behavior run against a real engine.
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := OpenSQLite(dsn, "silent")
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}
