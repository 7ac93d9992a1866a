package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AymanElMikh/bmw/internal/domain"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `invoice_id, project_name, billing_period, currency, total_amount, status, created_by, created_at`

// Create persiste la cabecera de la factura. La violación del índice único
// parcial (proyecto, periodo, no cancelada) se mapea a domain.ErrDuplicate
// para que la capa de aplicación la traduzca a solape de periodo.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.InvoiceID == "" {
		invoice.InvoiceID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (invoice_id, project_name, billing_period, currency, total_amount, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.InvoiceID, invoice.ProjectName, invoice.BillingPeriod, invoice.Currency,
		invoice.TotalAmount, invoice.Status, invoice.CreatedBy, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice for project and period already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea agregada por cláusula.
func (r *InvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	if line.LineID == "" {
		line.LineID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (line_id, invoice_id, clause_id, ticket_ids, hours, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		line.LineID, line.InvoiceID, line.ClauseID, line.TicketIDs,
		line.Hours, line.UnitPrice, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1`
	return r.getOne(query, id)
}

// GetByIDForUpdate bloquea la fila dentro de la transacción en curso.
func (r *InvoiceRepo) GetByIDForUpdate(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

// GetActiveByProjectAndPeriod devuelve la factura no cancelada del
// (proyecto, periodo) o nil.
func (r *InvoiceRepo) GetActiveByProjectAndPeriod(projectName, billingPeriod string) (*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE project_name = $1 AND billing_period = $2 AND status <> 'CANCELLED'`
	return r.getOne(query, projectName, billingPeriod)
}

func (r *InvoiceRepo) getOne(query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLinesByInvoiceID devuelve las líneas ordenadas por cláusula.
func (r *InvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT line_id, invoice_id, clause_id, ticket_ids, hours, unit_price, line_total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY clause_id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		err := rows.Scan(&l.LineID, &l.InvoiceID, &l.ClauseID, &l.TicketIDs, &l.Hours, &l.UnitPrice, &l.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// List devuelve facturas con filtros opcionales, más recientes primero.
func (r *InvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var (
		conditions []string
		args       []any
	)
	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	addFilter("project_name", filter.ProjectName)
	addFilter("billing_period", filter.BillingPeriod)
	addFilter("status", filter.Status)
	addFilter("created_by", filter.CreatedBy)

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// UpdateStatus persiste el nuevo estado.
func (r *InvoiceRepo) UpdateStatus(invoice *entity.Invoice) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE invoices SET status = $2 WHERE invoice_id = $1`,
		invoice.InvoiceID, invoice.Status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// UpdateTotals reescribe el total tras una regeneración de DRAFT.
func (r *InvoiceRepo) UpdateTotals(invoice *entity.Invoice) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE invoices SET total_amount = $2 WHERE invoice_id = $1`,
		invoice.InvoiceID, invoice.TotalAmount)
	if err != nil {
		return fmt.Errorf("update invoice totals: %w", err)
	}
	return nil
}

// DeleteLinesByInvoiceID elimina todas las líneas de la factura.
func (r *InvoiceRepo) DeleteLinesByInvoiceID(invoiceID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.InvoiceID, &inv.ProjectName, &inv.BillingPeriod, &inv.Currency,
		&inv.TotalAmount, &inv.Status, &inv.CreatedBy, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
