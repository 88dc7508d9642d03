package main

import (
	"context"
	"errors"
	"ledger-rules/src/api"
	"ledger-rules/src/config"
	"ledger-rules/src/db"
	"ledger-rules/src/db/memory"
	sqlstore "ledger-rules/src/db/sql"
	"ledger-rules/src/entries"
	"ledger-rules/src/logging"
	plaidclient "ledger-rules/src/plaid"
	"ledger-rules/src/rules"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plaid/plaid-go/v41/plaid"
)

// store is what both storage backends provide.
type store interface {
	rules.Store
	entries.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("Using in-memory storage, data is lost on exit")
		st = memory.NewStore()
	default:
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		defer pool.Close()
		st = sqlstore.NewStore(pool)
	}

	var cache rules.RuleCache
	if cfg.RuleCacheEnabled {
		ruleCache, err := db.NewRuleCache()
		if err != nil {
			log.Fatalf("Failed to initialize rule cache: %v", err)
		}
		defer ruleCache.Close()
		cache = ruleCache
	}

	engine := rules.New(st, cache, rules.Options{
		Limits:  rules.Limits{Default: cfg.PreviewDefaultLimit, Max: cfg.MaxFilterLimit},
		Workers: cfg.BatchWorkers,
	})
	service := entries.NewService(st, engine.Dispatcher)

	var plaidClient *plaid.APIClient
	if cfg.PlaidEnabled() {
		plaidClient, err = plaidclient.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
		if err != nil {
			log.Fatalf("Plaid client: %v", err)
		}
	}

	router := api.NewRouter(cfg, engine, service, plaidClient)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Shutdown: %v", err)
		}
	}()

	log.Info("API server running", "port", cfg.Port, "storage", cfg.Storage, "read_only", cfg.ReadOnly)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
