package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un ticket según el tracker externo.
const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusClosed     = "CLOSED"
	TicketStatusCancelled  = "CANCELLED"
)

// Ticket representa el snapshot de un ticket del tracker externo con sus
// metadatos de facturación. Los tickets nunca se borran: un refetch los
// reemplaza, salvo que ya estén consumidos por una factura.
type Ticket struct {
	TicketID    string // clave externa, ^[A-Z]+-\d+$ (ej. BMW-101)
	Summary     string
	Description string
	Status      string
	HoursWorked decimal.Decimal // siempre >= 0, 2 decimales
	Labels      []string
	Assignee    string
	ResolvedAt  *time.Time

	// Campos de facturación escritos por el motor de mapeo.
	ClauseID         *string
	IsBillable       bool
	BillableAmount   decimal.Decimal // horas x precio de la cláusula, redondeado
	UnbillableReason string          // diagnóstico cuando IsBillable es false

	// Relación consumed-by: factura que consumió el ticket, o nil.
	// Un ticket pertenece como máximo a una factura (nunca doble facturación).
	InvoiceID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConsumed indica si el ticket ya fue asociado a una factura.
func (t *Ticket) IsConsumed() bool {
	return t.InvoiceID != nil && *t.InvoiceID != ""
}
