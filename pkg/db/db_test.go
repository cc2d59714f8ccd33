package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := fs.ReadFile(migrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "-- +goose Down")
	assert.Contains(t, string(data), "UNIQUE (part_number, quote_number)")
}

func TestMigrations_PricesKeepSubCentPrecision(t *testing.T) {
	data, err := fs.ReadFile(migrations, "migrations/00001_quote_imports.sql")
	require.NoError(t, err)

	sql := string(data)
	assert.Regexp(t, `unit_price\s+NUMERIC NOT NULL`, sql)
	assert.Regexp(t, `net_unit_price\s+NUMERIC NOT NULL`, sql)
	assert.NotContains(t, sql, "NUMERIC(12, 2)")
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(Config{DSN: "host=localhost port=notaport"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}
