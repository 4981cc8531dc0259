// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amazongreen/storefront/internal/repository"
)

// NewDB opens a migrated in-memory SQLite database for a single test.
func NewDB(t *testing.T) *repository.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Every pooled connection would otherwise get its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	wrapped := &repository.DB{DB: db}
	if err := wrapped.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}
	return wrapped
}
