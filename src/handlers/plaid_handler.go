package handlers

import (
	"ledger-rules/src/entries"
	plaidimport "ledger-rules/src/plaid"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/plaid/plaid-go/v41/plaid"
)

// ImportPlaidTransactions pulls new transactions for an item through
// transactions/sync and imports them as entries. The caller keeps the cursor.
func ImportPlaidTransactions(plaidClient *plaid.APIClient, service *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plaidClient == nil {
			http.Error(w, "plaid is not configured", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			AccessToken string `json:"access_token"`
			Cursor      string `json:"cursor"`
		}
		if err := decodeBody(r, &req, false); err != nil || req.AccessToken == "" {
			log.Errorf("Invalid plaid import request: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		synced, err := plaidimport.Sync(r.Context(), plaidClient, req.AccessToken, req.Cursor)
		if err != nil {
			log.Errorf("Failed to sync plaid transactions: %v", err)
			http.Error(w, "failed to fetch transactions", http.StatusBadGateway)
			return
		}

		result, err := service.Import(r.Context(), plaidimport.ToInputs(synced.Added))
		if err != nil {
			log.Errorf("Plaid import batch %s interrupted: %v", result.BatchID, err)
			writeError(w, err, "failed to import transactions")
			return
		}
		log.Infof("Imported %d plaid transactions in batch %s", result.Imported, result.BatchID)
		writeJSON(w, http.StatusOK, map[string]any{
			"import":      result,
			"next_cursor": synced.NextCursor,
		})
	}
}
