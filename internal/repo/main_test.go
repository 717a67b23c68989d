package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/fanblog/migrations"
	"github.com/pkordes/fanblog/testutil"
)

// TestMain brings the test database schema up to date once per test binary,
// so individual tests never need to think about schema state.
// Without TEST_DATABASE_URL every integration test skips itself.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		db.Close()
		log.Fatalf("TestMain: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
