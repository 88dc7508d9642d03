package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port                string
	DatabaseURL         string
	Storage             string
	JWTSecret           string
	ReadOnly            bool
	CORSOrigins         []string
	LogLevel            string
	BatchWorkers        int
	PreviewDefaultLimit int
	MaxFilterLimit      int
	RuleCacheEnabled    bool
	PlaidClientID       string
	PlaidSecret         string
	PlaidEnv            string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("read_only", false)
	v.SetDefault("cors_origins", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("batch_workers", 4)
	v.SetDefault("preview_default_limit", 200)
	v.SetDefault("max_filter_limit", 500)
	v.SetDefault("rule_cache_enabled", true)
	v.SetDefault("plaid_client_id", "")
	v.SetDefault("plaid_secret", "")
	v.SetDefault("plaid_env", "sandbox")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := Config{
		Port:                v.GetString("port"),
		DatabaseURL:         v.GetString("database_url"),
		Storage:             strings.ToLower(strings.TrimSpace(v.GetString("storage"))),
		JWTSecret:           v.GetString("jwt_secret"),
		ReadOnly:            v.GetBool("read_only"),
		CORSOrigins:         splitList(v.GetString("cors_origins")),
		LogLevel:            v.GetString("log_level"),
		BatchWorkers:        v.GetInt("batch_workers"),
		PreviewDefaultLimit: v.GetInt("preview_default_limit"),
		MaxFilterLimit:      v.GetInt("max_filter_limit"),
		RuleCacheEnabled:    v.GetBool("rule_cache_enabled"),
		PlaidClientID:       v.GetString("plaid_client_id"),
		PlaidSecret:         v.GetString("plaid_secret"),
		PlaidEnv:            v.GetString("plaid_env"),
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for %s storage", StoragePostgres)
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.BatchWorkers <= 0 {
		return Config{}, fmt.Errorf("BATCH_WORKERS must be positive, got %d", cfg.BatchWorkers)
	}
	return cfg, nil
}

// PlaidEnabled reports whether Plaid credentials are configured.
func (c Config) PlaidEnabled() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
