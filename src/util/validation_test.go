package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHelpers(t *testing.T) {
	require.True(t, ParseBool("TRUE", false))
	require.True(t, ParseBool(" on ", false))
	require.False(t, ParseBool("0", true))
	require.True(t, ParseBool("maybe", true))

	require.Equal(t, 7, ParseInt(" 7 ", 0))
	require.Equal(t, 50, ParseInt("abc", 50))

	require.Nil(t, ParseISODate(""))
	require.Nil(t, ParseISODate("2024-13-40"))
	require.Equal(t, "2024-02-29", ParseISODate("2024-02-29T10:00:00").String())

	require.Nil(t, ParseOptionalDecimal("ten"))
	require.Equal(t, "10.5", ParseOptionalDecimal("10.50").String())
}

func TestNormalizers(t *testing.T) {
	require.Equal(t, "despesa", NormalizeTipo(" Despesa "))
	require.Equal(t, "", NormalizeTipo("transferencia"))

	m, ok := NormalizeMethod("PIX")
	require.True(t, ok)
	require.Equal(t, "pix", m)
	_, ok = NormalizeMethod("cheque")
	require.False(t, ok)
	m, ok = NormalizeMethod("  ")
	require.True(t, ok)
	require.Empty(t, m)

	s, ok := NormalizeStatus("despesa", "Pago")
	require.True(t, ok)
	require.Equal(t, "pago", s)
	_, ok = NormalizeStatus("receita", "pago")
	require.False(t, ok)

	require.False(t, ValidateDescription(""))
	require.True(t, ValidateDescription("ok"))
}

func TestFilterParams(t *testing.T) {
	var p FilterParams
	require.NoError(t, json.Unmarshal([]byte(`{
		"start": "2024-01-01", "end": "not a date", "tipo": "RECEITA",
		"categoria": "all", "status": "Pago", "min": 10, "max": "x", "limit": "25"
	}`), &p))

	f := p.EntryFilter()
	require.Equal(t, "2024-01-01", f.Start.String())
	require.Nil(t, f.End)
	require.Equal(t, "receita", f.Tipo)
	require.Empty(t, f.Categoria)
	require.Equal(t, "pago", f.Status)
	require.Equal(t, "10", f.Min.String())
	require.Nil(t, f.Max)
	require.Equal(t, 25, f.Limit)

	require.Equal(t, 0, FilterParams{}.EntryFilter().Limit)
}
