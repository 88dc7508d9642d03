package plaid

import (
	"testing"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/stretchr/testify/require"
)

func transaction(amount float64, name, merchant, channel string, pending bool) plaid.Transaction {
	var txn plaid.Transaction
	txn.SetAmount(amount)
	txn.SetName(name)
	txn.SetDate("2024-05-06")
	txn.SetPending(pending)
	txn.SetPaymentChannel(channel)
	if merchant != "" {
		txn.SetMerchantName(merchant)
	}
	return txn
}

func TestToInputExpense(t *testing.T) {
	txn := transaction(12.34, "UBER *TRIP", "Uber", "online", false)
	txn.SetPersonalFinanceCategory(plaid.PersonalFinanceCategory{Primary: "TRANSPORTATION", Detailed: "TRANSPORTATION_TAXIS_AND_RIDE_SHARES"})

	in := ToInput(txn)
	require.Equal(t, "despesa", in.Tipo)
	require.Equal(t, "pago", in.Status)
	require.Equal(t, "Uber", in.Descricao)
	require.Equal(t, "12.34", in.Valor.String())
	require.Equal(t, "2024-05-06", in.Data)
	require.Equal(t, "transportation", in.Categoria)
	require.Equal(t, "cartao", *in.Metodo)
	require.Equal(t, "plaid", *in.Tags)
}

func TestToInputIncome(t *testing.T) {
	in := ToInput(transaction(-2500, "PAYROLL ACME", "", "other", false))
	require.Equal(t, "receita", in.Tipo)
	require.Equal(t, "recebido", in.Status)
	require.Equal(t, "PAYROLL ACME", in.Descricao)
	require.Equal(t, "2500", in.Valor.String())
	require.Empty(t, in.Categoria)
	require.Empty(t, *in.Metodo)
}

func TestToInputsSkipsPending(t *testing.T) {
	inputs := ToInputs([]plaid.Transaction{
		transaction(5, "Coffee", "", "in store", true),
		transaction(7, "Lunch", "", "in store", false),
	})
	require.Len(t, inputs, 1)
	require.Equal(t, "Lunch", inputs[0].Descricao)
}

func TestNewPlaidClientRejectsUnknownEnv(t *testing.T) {
	_, err := NewPlaidClient("id", "secret", "development")
	require.Error(t, err)

	client, err := NewPlaidClient("id", "secret", "sandbox")
	require.NoError(t, err)
	require.NotNil(t, client)
}
