package repository

import (
	"time"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// TicketRepository define el puerto de persistencia para snapshots de tickets.
type TicketRepository interface {
	GetByID(id string) (*entity.Ticket, error)
	GetByIDs(ids []string) ([]*entity.Ticket, error)
	// List devuelve todos los tickets (para el dashboard y corrección manual).
	List() ([]*entity.Ticket, error)
	// ListBillableUnconsumed devuelve los tickets facturables sin consumir
	// resueltos dentro del rango cerrado [from, to].
	ListBillableUnconsumed(from, to time.Time) ([]*entity.Ticket, error)
	// Upsert inserta o reemplaza el snapshot. Si el ticket ya está consumido
	// por una factura devuelve (false, nil) sin tocar la fila: un refetch
	// jamás re-factura ni muta un ticket ya facturado.
	Upsert(ticket *entity.Ticket) (updated bool, err error)
	// ConsumeAll marca los tickets como consumidos por la factura, solo si
	// siguen libres (WHERE invoice_id IS NULL). Devuelve cuántas filas
	// consumió: si no coincide con len(ids), el caller debe abortar la
	// transacción (otro ensamblado concurrente ganó la carrera).
	ConsumeAll(ids []string, invoiceID string) (int64, error)
	// ReleaseByInvoice libera todos los tickets consumidos por la factura
	// (regeneración de DRAFT o cancelación).
	ReleaseByInvoice(invoiceID string) error
}
