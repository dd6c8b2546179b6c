package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/forcemodel/forcesim-backend-go/internal/pkg/database"
)

// testDatabase connects to the integration database named by
// TEST_DATABASE_URL and clears the tables under test. Tests are skipped
// when the variable is unset so the suite stays runnable offline.
func testDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	ctx := context.Background()
	for _, table := range []string{"unit_stats", "runs"} {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return db
}
