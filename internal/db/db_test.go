package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPragmas(t *testing.T) {
	assert.Equal(t,
		"app.db?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on",
		withPragmas("app.db"))
	assert.Equal(t,
		":memory:?_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on",
		withPragmas(":memory:"))
	assert.Equal(t,
		"app.db?_busy_timeout=100&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on",
		withPragmas("app.db?_busy_timeout=100"))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := NewSQLite(ctx, "file:migrations_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()

	fsys, err := MigrationsFS("", DriverSQLite)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, conn, fsys))
	require.NoError(t, RunMigrations(ctx, conn, fsys))

	var applied int
	require.NoError(t, conn.GetContext(ctx, &applied, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 1, applied)

	var tables int
	require.NoError(t, conn.GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('food_reports', 'hotels', 'delivery_agents', 'needy_persons', 'notification_preferences')`))
	assert.Equal(t, 5, tables)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "", Options{})
	assert.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	got := Options{MaxOpenConns: 10, MaxIdleConns: 40}.withDefaults()
	assert.Equal(t, 10, got.MaxOpenConns)
	assert.Equal(t, 10, got.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, got.ConnMaxLifetime)

	assert.Equal(t, 100, Options{}.withDefaults().MaxOpenConns)
}
