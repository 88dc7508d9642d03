package api

import (
	"ledger-rules/src/config"
	"ledger-rules/src/entries"
	"ledger-rules/src/handlers"
	"ledger-rules/src/middleware"
	"ledger-rules/src/rules"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plaid/plaid-go/v41/plaid"
)

func NewRouter(cfg config.Config, engine *rules.Engine, service *entries.Service, plaidClient *plaid.APIClient) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.ReadOnlyMiddleware(cfg.ReadOnly))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		}

		// Rules
		r.Get("/rules", handlers.GetAllRules(engine))
		r.Post("/rules", handlers.CreateRule(engine))
		r.Get("/rules/{rule_id}", handlers.GetRuleByID(engine))
		r.Put("/rules/{rule_id}", handlers.UpdateRule(engine))
		r.Delete("/rules/{rule_id}", handlers.DeleteRule(engine))
		r.Patch("/rules/{rule_id}/toggle", handlers.ToggleRule(engine))
		r.Post("/rules/{rule_id}/test", handlers.TestRule(engine))
		r.Post("/rules/{rule_id}/apply", handlers.ApplyRule(engine))
		r.Get("/rules/{rule_id}/log", handlers.GetRuleLog(engine))

		// Entries
		r.Post("/entries", handlers.CreateEntry(service))
		r.Post("/entries/import", handlers.ImportEntries(service))
		r.Post("/entries/import/plaid", handlers.ImportPlaidTransactions(plaidClient, service))
		r.Get("/entries/{entry_id}", handlers.GetEntryByID(service))
		r.Put("/entries/{entry_id}", handlers.UpdateEntry(service))
	})

	return r
}
