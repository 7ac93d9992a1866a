package billing

import (
	"context"

	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de tickets y facturas. El consumo de tickets y la persistencia
// de la factura deben ser una sola unidad atómica: aplicación parcial
// (ticket consumido sin factura, o viceversa) corrompe datos.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		ticketRepo repository.TicketRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}
