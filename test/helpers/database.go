package helpers

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/factorycraft/factory-economy/internal/infrastructure/database"
)

// NewTestDB returns a private migrated in-memory database closed when the test ends.
// Repository and bootstrap tests use it; godog scenarios share SharedTestDB instead.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

// SharedTestDB is the database reused across scenario runs
var SharedTestDB *gorm.DB

// InitializeSharedTestDB creates and migrates the shared test database.
// Called once from TestMain.
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// persistedTables lists every table, children before parents
var persistedTables = []string{
	"factory_employees",
	"input_storage",
	"output_storage",
	"listings",
	"invoices",
	"billing_runs",
	"accounts",
	"factories",
}

// TruncateAllTables clears all rows so each scenario starts empty
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}
	for _, table := range persistedTables {
		if err := SharedTestDB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// CloseSharedTestDB closes the shared database after every scenario has run
func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	return database.Close(SharedTestDB)
}
