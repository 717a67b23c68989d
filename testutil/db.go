// Package testutil provides shared helpers for integration tests against
// Postgres. Every helper that needs a database skips the calling test when
// TEST_DATABASE_URL is not set, so unit tests run without one.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
)

const dsnEnv = "TEST_DATABASE_URL"

// NewPool opens a *pgxpool.Pool on the test database. It is closed when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction on a fresh pool and rolls it back when the test
// finishes. Repos built on it see each other's writes but nothing survives
// the test, so tests may reuse fixture titles and slugs freely.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a *sql.DB on the test database through the pgx
// database/sql driver, for goose. It is closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := open(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB is NewSQLDB for TestMain, where there is no *testing.T.
// It panics on error; the caller closes the returned *sql.DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := open(dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: " + err.Error())
	}
	return db
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skip(dsnEnv + " not set; skipping integration test")
	}
	return dsn
}
