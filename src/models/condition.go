package models

// Condition fields.
const (
	FieldDescricao = "descricao"
	FieldTipo      = "tipo"
	FieldCategoria = "categoria"
	FieldStatus    = "status"
	FieldMetodo    = "metodo"
	FieldValor     = "valor"
	FieldTags      = "tags"
)

// Condition operators.
const (
	OpContains = "contains"
	OpEq       = "eq"
	OpGte      = "gte"
	OpLte      = "lte"
)

type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value Value  `json:"value"`
}

// Action types.
const (
	ActionSetCategory          = "set_category"
	ActionSetStatus            = "set_status"
	ActionSetTags              = "set_tags"
	ActionSetDescriptionPrefix = "set_description_prefix"
	ActionSetMethod            = "set_method"
)

type Action struct {
	Type  string `json:"type"`
	Value Value  `json:"value"`
}
