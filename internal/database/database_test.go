package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/config"
)

func TestConfig_DSN(t *testing.T) {
	pg := Config{Driver: config.DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", DBName: "tasks", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=tasks sslmode=disable", pg.DSN())

	lite := Config{Driver: config.DriverSQLite, Path: "/tmp/x.db"}
	assert.Equal(t, "file:/tmp/x.db?_fk=1&_busy_timeout=5000", lite.DSN())

	raw := Config{Driver: config.DriverSQLite, Path: "file:mem?mode=memory"}
	assert.Equal(t, "file:mem?mode=memory", raw.DSN())
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "tasks.db")

	db, err := Open(ctx, Config{Driver: config.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, db))

	var versions []string
	require.NoError(t, db.Select(&versions, "SELECT version FROM schema_migrations"))
	assert.Equal(t, []string{"0001_create_tasks_and_tags"}, versions)

	for _, table := range []string{"tasks", "tags", "task_tags"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
		assert.Zero(t, n, table)
	}
}
