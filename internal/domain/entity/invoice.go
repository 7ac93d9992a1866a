package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una factura.
// DRAFT es el único estado mutable; una vez SENT las líneas quedan congeladas.
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusSent      = "SENT"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice representa la cabecera de una factura con sus líneas.
// Invariante: TotalAmount == suma exacta de los LineTotal de sus líneas
// (se recalcula y se verifica antes de persistir, nunca se captura aparte).
type Invoice struct {
	InvoiceID     string // uuid
	ProjectName   string
	BillingPeriod string // "YYYY-MM"; como máximo una factura no cancelada por (proyecto, periodo)
	Currency      string
	TotalAmount   decimal.Decimal
	Status        string
	CreatedBy     string
	CreatedAt     time.Time
	Lines         []*InvoiceLine // ordenadas por clause_id; la factura es dueña exclusiva
}

// InvoiceLine agrupa los tickets de una misma cláusula dentro de una factura.
// UnitPrice es un snapshot del precio de la cláusula al momento del ensamblado:
// desactivar la cláusula después no altera facturas ya emitidas.
type InvoiceLine struct {
	LineID    string // uuid
	InvoiceID string
	ClauseID  string
	TicketIDs []string        // tickets constituyentes, ordenados
	Hours     decimal.Decimal // suma de horas de los tickets
	UnitPrice decimal.Decimal // snapshot, no referencia viva
	LineTotal decimal.Decimal // RoundBank(Hours * UnitPrice, 2)
}

// SumLines recalcula el total como suma exacta de las líneas ya redondeadas.
// El total nunca se redondea de forma independiente.
func (i *Invoice) SumLines() decimal.Decimal {
	total := decimal.Zero
	for _, l := range i.Lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// TicketCount devuelve cuántos tickets consumió la factura.
func (i *Invoice) TicketCount() int {
	n := 0
	for _, l := range i.Lines {
		n += len(l.TicketIDs)
	}
	return n
}
