package testtool

import (
	"testing"

	"chat_relay_service/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite opens an in-memory store. One connection only, so every query sees the same
// database and transactions serialize.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenGorm(sqlite.Open("file::memory:?_foreign_keys=on"), database.Connection{RetryCount: 1})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
