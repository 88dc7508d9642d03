package plaid

import (
	"context"
	"fmt"
	"ledger-rules/src/entries"
	"ledger-rules/src/models"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

// maxSyncPages bounds one import so a misbehaving cursor cannot loop forever.
const maxSyncPages = 20

const importTag = "plaid"

// SyncResult is one transactions/sync walk.
type SyncResult struct {
	Added      []plaid.Transaction
	NextCursor string
}

// Sync pages through transactions/sync from cursor until Plaid reports no
// more updates. Only added transactions are returned.
func Sync(ctx context.Context, client *plaid.APIClient, accessToken, cursor string) (SyncResult, error) {
	result := SyncResult{NextCursor: cursor}
	for page := 0; page < maxSyncPages; page++ {
		request := plaid.NewTransactionsSyncRequest(accessToken)
		if result.NextCursor != "" {
			request.SetCursor(result.NextCursor)
		}
		resp, _, err := client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
		if err != nil {
			return result, fmt.Errorf("transactions sync: %w", err)
		}
		result.Added = append(result.Added, resp.GetAdded()...)
		result.NextCursor = resp.GetNextCursor()
		if !resp.GetHasMore() {
			return result, nil
		}
	}
	log.Warnf("Plaid sync stopped after %d pages, more updates pending", maxSyncPages)
	return result, nil
}

// ToInputs converts synced transactions to entry payloads. Pending
// transactions are skipped; they come back as added once they post.
func ToInputs(txns []plaid.Transaction) []entries.Input {
	inputs := make([]entries.Input, 0, len(txns))
	for _, txn := range txns {
		if txn.GetPending() {
			continue
		}
		inputs = append(inputs, ToInput(txn))
	}
	return inputs
}

// ToInput maps one Plaid transaction. Plaid amounts are positive for money
// leaving the account.
func ToInput(txn plaid.Transaction) entries.Input {
	amount := decimal.NewFromFloat(txn.GetAmount())
	tipo, status := models.TipoDespesa, "pago"
	if amount.IsNegative() {
		tipo, status = models.TipoReceita, "recebido"
		amount = amount.Neg()
	}

	description := strings.TrimSpace(txn.GetMerchantName())
	if description == "" {
		description = strings.TrimSpace(txn.GetName())
	}
	description = truncate(description, 255)

	category := ""
	if pfc, ok := txn.GetPersonalFinanceCategoryOk(); ok && pfc != nil {
		category = strings.ToLower(pfc.GetPrimary())
	}

	method := paymentMethod(txn.GetPaymentChannel())
	tags := importTag
	return entries.Input{
		Data:      txn.GetDate(),
		Tipo:      tipo,
		Descricao: description,
		Valor:     models.NumberValue(amount),
		Categoria: category,
		Status:    status,
		Metodo:    &method,
		Tags:      &tags,
	}
}

func paymentMethod(channel string) string {
	switch channel {
	case "in store", "online":
		return "cartao"
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
