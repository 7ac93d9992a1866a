package repository

import "github.com/AymanElMikh/bmw/internal/domain/entity"

// InvoiceFilter filtros opcionales para listados de facturas.
type InvoiceFilter struct {
	ProjectName   string
	BillingPeriod string
	Status        string
	CreatedBy     string
}

// InvoiceRepository define el puerto de persistencia para facturas y líneas.
// La factura es dueña exclusiva de sus líneas (ciclo de vida en cascada).
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	GetByID(id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error)
	List(filter InvoiceFilter) ([]*entity.Invoice, error)
	// GetActiveByProjectAndPeriod devuelve la factura no cancelada del
	// (proyecto, periodo) o nil. Respaldo del índice único parcial que
	// serializa generaciones concurrentes.
	GetActiveByProjectAndPeriod(projectName, billingPeriod string) (*entity.Invoice, error)
	// GetByIDForUpdate bloquea la fila (SELECT ... FOR UPDATE) dentro de una
	// transacción; serializa transiciones y regeneraciones concurrentes.
	GetByIDForUpdate(id string) (*entity.Invoice, error)
	UpdateStatus(invoice *entity.Invoice) error
	// UpdateTotals reescribe total y moneda tras una regeneración de DRAFT.
	UpdateTotals(invoice *entity.Invoice) error
	DeleteLinesByInvoiceID(invoiceID string) error
}
