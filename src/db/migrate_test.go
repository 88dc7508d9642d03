package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@localhost:5432/ledger", migrateURL("postgres://u:p@localhost:5432/ledger"))
	require.Equal(t, "pgx5://u:p@db/ledger?sslmode=disable", migrateURL("postgresql://u:p@db/ledger?sslmode=disable"))
	require.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
