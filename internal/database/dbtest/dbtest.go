// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskmanagement/internal/config"
	"github.com/gurkanbulca/taskmanagement/internal/database"
)

// Open returns a migrated in-memory sqlite database private to t.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())

	db, err := database.Open(ctx, database.Config{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}
