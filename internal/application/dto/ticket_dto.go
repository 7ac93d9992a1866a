package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncTicketsRequest body para POST /api/tickets/sync: trae los tickets del
// proyecto desde el tracker externo y los clasifica.
type SyncTicketsRequest struct {
	ProjectKey    string    `json:"project_key"` // ^[A-Z]+$
	PeriodStart   time.Time `json:"billing_period_start"`
	PeriodEnd     time.Time `json:"billing_period_end"`
	StatusFilter  string    `json:"status_filter,omitempty"` // default CLOSED
	LabelFilter   string    `json:"label_filter,omitempty"`
}

// SyncTicketsResponse resumen de la sincronización.
type SyncTicketsResponse struct {
	Tickets        []TicketResponse `json:"tickets"`
	TotalCount     int              `json:"total_count"`
	BillableCount  int              `json:"billable_count"`
	ExcludedCount  int              `json:"excluded_count"`
	ExcludedIDs    []string         `json:"excluded_tickets,omitempty"` // no facturables, con razón en cada ticket
	SkippedIDs     []string         `json:"skipped_tickets,omitempty"`  // ya consumidos por una factura, no se tocaron
}

// TicketResponse ticket con metadatos de facturación.
type TicketResponse struct {
	TicketID         string          `json:"ticket_id"`
	Summary          string          `json:"summary"`
	Status           string          `json:"status"`
	HoursWorked      decimal.Decimal `json:"hours_worked"`
	Labels           []string        `json:"labels"`
	Assignee         string          `json:"assignee,omitempty"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
	ClauseID         *string         `json:"clause_id,omitempty"`
	IsBillable       bool            `json:"is_billable"`
	BillableAmount   decimal.Decimal `json:"billable_amount"`
	UnbillableReason string          `json:"unbillable_reason,omitempty"`
	InvoiceID        *string         `json:"invoice_id,omitempty"`
}
