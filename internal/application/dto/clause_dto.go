package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateClauseRequest body para POST /api/clauses.
type CreateClauseRequest struct {
	ClauseID      string          `json:"clause_id"` // ^[A-Z_0-9]+$
	ClauseName    string          `json:"clause_name"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// UpdateClauseRequest body para PUT /api/clauses/:id. Campos nil = sin cambio.
// El precio solo es mutable mientras ninguna factura referencie la cláusula.
type UpdateClauseRequest struct {
	ClauseName  *string          `json:"clause_name,omitempty"`
	Description *string          `json:"description,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// ClauseResponse cláusula en respuestas.
type ClauseResponse struct {
	ClauseID      string          `json:"clause_id"`
	ClauseName    string          `json:"clause_name"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	IsActive      bool            `json:"is_active"`
}
