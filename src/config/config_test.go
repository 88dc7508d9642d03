package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, 4, cfg.BatchWorkers)
	require.Equal(t, 200, cfg.PreviewDefaultLimit)
	require.Equal(t, 500, cfg.MaxFilterLimit)
	require.True(t, cfg.RuleCacheEnabled)
	require.False(t, cfg.ReadOnly)
	require.False(t, cfg.PlaidEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ledger")
	t.Setenv("PORT", "9000")
	t.Setenv("READ_ONLY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("RULE_CACHE_ENABLED", "false")
	t.Setenv("PLAID_CLIENT_ID", "id")
	t.Setenv("PLAID_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.True(t, cfg.ReadOnly)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 8, cfg.BatchWorkers)
	require.False(t, cfg.RuleCacheEnabled)
	require.True(t, cfg.PlaidEnabled())
}

func TestLoadRejectsBadStorage(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STORAGE", "redis")
	_, err = Load()
	require.Error(t, err)
}
