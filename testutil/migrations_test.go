package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fanblog/migrations"
	"github.com/pkordes/fanblog/testutil"
)

var blogTables = []string{"taxonomies", "posts", "post_tags"}

// TestMigrations applies every migration from an empty schema, checks the
// tables and uniqueness indexes exist, then rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	// Another package's TestMain may already have migrated the shared test DB.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	versions, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, versions)

	for _, table := range blogTables {
		assert.True(t, tableExists(t, db, table), "expected table %q", table)
	}
	for _, index := range []string{"taxonomies_type_slug_key", "taxonomies_type_title_key"} {
		var exists bool
		err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = $1)`, index).Scan(&exists)
		require.NoError(t, err, "check index %q", index)
		assert.True(t, exists, "expected unique index %q", index)
	}

	again, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, again, "second Up must be a no-op")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range blogTables {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}

	// Leave the schema migrated for packages that run after this one.
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
}

// TestTitleIndex_caseInsensitive checks the store rejects a second title that
// differs only in case within one type, and allows it across types.
func TestTitleIndex_caseInsensitive(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	_, err := migrations.Up(ctx, db)
	require.NoError(t, err)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback() })

	const insert = `INSERT INTO taxonomies (type, title, slug) VALUES ($1, $2, $3)`

	_, err = tx.ExecContext(ctx, insert, "tag", "Golang", "golang")
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, `SAVEPOINT dup`)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, insert, "tag", "GOLANG", "golang-2")
	require.Error(t, err, "same title in another case must violate the unique index")
	_, err = tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT dup`)
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, insert, "category", "GOLANG", "golang")
	assert.NoError(t, err, "categories and tags are separate namespaces")
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists), "check table %q", table)
	return exists
}
