package entries

import (
	"ledger-rules/src/models"
	"ledger-rules/src/rules"
	"ledger-rules/src/util"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is the client payload for creating or editing an entry. Metodo and
// Tags are pointers so an edit can leave them untouched.
type Input struct {
	Data      string       `json:"data"`
	Tipo      string       `json:"tipo"`
	Descricao string       `json:"descricao"`
	Valor     models.Value `json:"valor"`
	Categoria string       `json:"categoria"`
	Status    string       `json:"status"`
	Metodo    *string      `json:"metodo"`
	Tags      *string      `json:"tags"`
}

// apply validates in and writes it over base. ID and timestamps of base are
// kept.
func (in Input) apply(base models.Entry) (models.Entry, error) {
	e := base

	e.Tipo = util.NormalizeTipo(in.Tipo)
	if e.Tipo == "" {
		return models.Entry{}, &models.ValidationError{Field: "tipo", Reason: "must be receita or despesa"}
	}

	data, err := models.ParseDate(strings.TrimSpace(in.Data))
	if err != nil {
		return models.Entry{}, &models.ValidationError{Field: "data", Reason: "must be a YYYY-MM-DD date"}
	}
	e.Data = data

	e.Descricao = strings.TrimSpace(in.Descricao)
	if !util.ValidateDescription(e.Descricao) {
		return models.Entry{}, &models.ValidationError{Field: "descricao", Reason: "must be 1 to 255 characters"}
	}

	e.Valor = decimal.Zero
	if strings.TrimSpace(in.Valor.String()) != "" {
		valor, err := in.Valor.Decimal()
		if err != nil {
			return models.Entry{}, &models.ValidationError{Field: "valor", Reason: "must be a number"}
		}
		e.Valor = valor.Round(2)
	}
	if e.Valor.IsNegative() {
		return models.Entry{}, &models.ValidationError{Field: "valor", Reason: "must not be negative"}
	}

	e.Categoria = strings.ToLower(strings.TrimSpace(in.Categoria))

	status, ok := util.NormalizeStatus(e.Tipo, in.Status)
	if !ok {
		return models.Entry{}, &models.ValidationError{Field: "status", Reason: "not allowed for " + e.Tipo}
	}
	if status == "" && e.Tipo == models.TipoDespesa {
		status = util.DefaultStatus
	}
	e.Status = status

	if in.Metodo != nil {
		metodo, ok := util.NormalizeMethod(*in.Metodo)
		if !ok {
			return models.Entry{}, &models.ValidationError{Field: "metodo", Reason: "unknown payment method"}
		}
		e.Metodo = metodo
	}
	if in.Tags != nil {
		e.Tags = rules.NormalizeTags(*in.Tags)
	}
	return e, nil
}
