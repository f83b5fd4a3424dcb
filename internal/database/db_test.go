package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/practice-booking/internal/config"
)

func TestDSN(t *testing.T) {
	dsn, err := DSN(config.DBConfig{Driver: "mysql", User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "practice"})
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db:3306)/practice?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = DSN(config.DBConfig{Driver: "mysql", User: "app", Host: "db", Port: "3306", Name: "practice"})
	require.NoError(t, err)
	assert.Equal(t, "app@tcp(db:3306)/practice?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = DSN(config.DBConfig{Driver: "sqlite3", Path: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db?_foreign_keys=on&_busy_timeout=5000", dsn)

	_, err = DSN(config.DBConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "practice.db")
	db, err := Open(config.DBConfig{Driver: "sqlite3", Path: path})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, "sqlite3"))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, db, "sqlite3"))

	v, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	for _, table := range []string{"slots", "bookings", "contacts"} {
		var n int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		require.NoError(t, err, table)
		assert.Zero(t, n)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}
