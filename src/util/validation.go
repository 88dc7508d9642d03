package util

import (
	"ledger-rules/src/models"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLen = 255
	MaxMethodLen      = 24
)

var (
	AllowedMethods = []string{"dinheiro", "cartao", "pix", "credito", "debito", "boleto"}
	StatusByTipo   = map[string][]string{
		models.TipoReceita: {"recebido"},
		models.TipoDespesa: {"em_andamento", "pago", "nao_pago"},
	}
)

// DefaultStatus is what a new expense gets when no status is sent.
const DefaultStatus = "em_andamento"

func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "sim":
		return true
	case "0", "false", "no", "off", "nao":
		return false
	}
	return fallback
}

func ParseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// ParseISODate returns nil for blank or unparseable input.
func ParseISODate(value string) *models.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil
	}
	return &d
}

// ParseOptionalDecimal returns nil for blank or unparseable input.
func ParseOptionalDecimal(value string) *decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}

// NormalizeTipo returns "" unless value is receita or despesa.
func NormalizeTipo(value string) string {
	tipo := strings.ToLower(strings.TrimSpace(value))
	if _, ok := StatusByTipo[tipo]; ok {
		return tipo
	}
	return ""
}

// NormalizeMethod returns the lower-cased method and whether it is allowed.
// Blank input is allowed and normalizes to "".
func NormalizeMethod(value string) (string, bool) {
	method := strings.ToLower(strings.TrimSpace(value))
	if method == "" {
		return "", true
	}
	if len(method) > MaxMethodLen || !slices.Contains(AllowedMethods, method) {
		return "", false
	}
	return method, true
}

// NormalizeStatus checks status against the statuses allowed for tipo.
func NormalizeStatus(tipo, value string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return "", true
	}
	return status, slices.Contains(StatusByTipo[tipo], status)
}

func ValidateDescription(value string) bool {
	return value != "" && len([]rune(value)) <= MaxDescriptionLen
}

// FilterParams is the loosely typed filter a client sends for preview and
// apply. Values arrive as strings or numbers.
type FilterParams struct {
	Start     models.Value `json:"start"`
	End       models.Value `json:"end"`
	Tipo      models.Value `json:"tipo"`
	Categoria models.Value `json:"categoria"`
	Status    models.Value `json:"status"`
	Metodo    models.Value `json:"metodo"`
	Min       models.Value `json:"min"`
	Max       models.Value `json:"max"`
	Limit     models.Value `json:"limit"`
}

// EntryFilter drops anything it cannot interpret instead of failing: bad
// dates and bounds are ignored, "all" means no filter. Limit is passed
// through unclamped.
func (p FilterParams) EntryFilter() models.EntryFilter {
	f := models.EntryFilter{
		Start: ParseISODate(p.Start.String()),
		End:   ParseISODate(p.End.String()),
		Tipo:  NormalizeTipo(p.Tipo.String()),
		Min:   ParseOptionalDecimal(p.Min.String()),
		Max:   ParseOptionalDecimal(p.Max.String()),
		Limit: ParseInt(p.Limit.String(), 0),
	}
	f.Categoria = filterValue(p.Categoria.String())
	f.Status = filterValue(p.Status.String())
	f.Metodo = filterValue(p.Metodo.String())
	return f
}

func filterValue(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "all" {
		return ""
	}
	return v
}
