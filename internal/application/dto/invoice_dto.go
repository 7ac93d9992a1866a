package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest body para POST /api/invoices/generate.
// Si TicketIDs no está vacío la selección explícita manda (curación manual);
// si está vacío se toman todos los tickets facturables sin consumir del
// periodo.
type GenerateInvoiceRequest struct {
	ProjectName   string   `json:"project_name"`
	BillingPeriod string   `json:"billing_period"` // "YYYY-MM"
	Currency      string   `json:"currency,omitempty"` // default EUR
	TicketIDs     []string `json:"ticket_ids,omitempty"`
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"` // SENT | PAID | CANCELLED
}

// InvoiceResponse factura completa con líneas.
type InvoiceResponse struct {
	InvoiceID     string                `json:"invoice_id"`
	ProjectName   string                `json:"project_name"`
	BillingPeriod string                `json:"billing_period"`
	Currency      string                `json:"currency"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Status        string                `json:"status"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	Lines         []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse línea agregada por cláusula.
type InvoiceLineResponse struct {
	LineID    string          `json:"line_id"`
	ClauseID  string          `json:"clause_id"`
	TicketIDs []string        `json:"ticket_ids"`
	Hours     decimal.Decimal `json:"hours"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceListItem resumen para listados.
type InvoiceListItem struct {
	InvoiceID     string          `json:"invoice_id"`
	ProjectName   string          `json:"project_name"`
	BillingPeriod string          `json:"billing_period"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	LineCount     int             `json:"line_count"`
}

// MonthlySummaryResponse resumen mensual para reportes.
type MonthlySummaryResponse struct {
	BillingPeriod     string                     `json:"billing_period"`
	TotalHours        decimal.Decimal            `json:"total_hours"`
	TotalAmount       decimal.Decimal            `json:"total_amount"`
	TicketsBilled     int                        `json:"tickets_billed"`
	InvoicesCount     int                        `json:"invoices_count"`
	BreakdownByClause map[string]ClauseBreakdown `json:"breakdown_by_clause"`
}

// ClauseBreakdown subtotal por cláusula dentro del resumen mensual.
type ClauseBreakdown struct {
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
}
