package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorSelection(t *testing.T) {
	cases := []struct {
		url  string
		name string
	}{
		{"mysql://u:p@tcp(localhost:3306)/ads", "mysql"},
		{"postgres://u:p@localhost:5432/ads?sslmode=disable", "postgres"},
		{"postgresql://u:p@localhost:5432/ads", "postgres"},
		{"sqlite://file::memory:", "sqlite"},
	}
	for _, tc := range cases {
		d, err := Dialector(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.name, d.Name(), tc.url)
	}

	_, err := Dialector("mongodb://localhost")
	assert.ErrorContains(t, err, "mongodb")
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t,
		"u:p@tcp(db:3306)/ads?charset=utf8mb4&parseTime=True&loc=UTC",
		mysqlDSN("mysql://u:p@tcp(db:3306)/ads"))

	assert.Equal(t,
		"u:p@tcp(db:3306)/ads?parseTime=true&charset=utf8mb4&loc=UTC",
		mysqlDSN("mysql://u:p@tcp(db:3306)/ads?parseTime=true"))
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open("sqlite://file::memory:", false)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("usage_records"))
	assert.True(t, db.Migrator().HasTable("billing_webhook_events"))
	assert.True(t, db.Migrator().HasIndex("usage_records", "idx_usage_records_user_created"))
}
