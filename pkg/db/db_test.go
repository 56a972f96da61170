package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/ctrack"))
	assert.True(t, IsPostgres("postgresql://localhost/ctrack"))
	assert.False(t, IsPostgres("../data/compliance.db"))
	assert.False(t, IsPostgres("sqlite:///tmp/x.db"))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "/tmp/x.db", SQLitePath("sqlite:///tmp/x.db"))
	assert.Equal(t, "../data/compliance.db", SQLitePath("../data/compliance.db"))
}

func TestWithBusyTimeout(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)", withBusyTimeout("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_pragma=busy_timeout(5000)", withBusyTimeout("a.db?mode=rwc"))
	assert.Equal(t, ":memory:", withBusyTimeout(":memory:"))
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Connect(Config{})
	assert.Error(t, err)
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "compliance.db")

	database, err := Connect(Config{URL: "sqlite://" + path})
	require.NoError(t, err)
	defer func() {
		sqlDB, _ := database.DB()
		_ = sqlDB.Close()
	}()

	require.NoError(t, Migrate(database, path))
	// AutoMigrate is idempotent
	require.NoError(t, Migrate(database, path))

	status, err := MigrationStatus(database, path)
	require.NoError(t, err)
	assert.True(t, status.Tables["control_references"])
	assert.True(t, status.Tables["assessments"])
	assert.True(t, database.Migrator().HasIndex("assessments", "idx_assessments_ref_year"))
}
