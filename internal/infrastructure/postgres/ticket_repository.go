package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementación de TicketRepository (usable con pool o tx).
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `ticket_id, summary, description, status, hours_worked, labels, assignee, resolved_at, clause_id, is_billable, billable_amount, unbillable_reason, invoice_id, created_at, updated_at`

// GetByID obtiene un snapshot por id.
func (r *TicketRepo) GetByID(id string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`
	t, err := scanTicket(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// GetByIDs obtiene los snapshots de los ids dados (los inexistentes se omiten).
func (r *TicketRepo) GetByIDs(ids []string) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = ANY($1) ORDER BY ticket_id`
	return r.list(query, ids)
}

// List devuelve todos los tickets.
func (r *TicketRepo) List() ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY ticket_id`
	return r.list(query)
}

// ListBillableUnconsumed devuelve los tickets facturables sin consumir
// resueltos dentro de [from, to].
func (r *TicketRepo) ListBillableUnconsumed(from, to time.Time) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE is_billable
		  AND invoice_id IS NULL
		  AND resolved_at IS NOT NULL
		  AND resolved_at BETWEEN $1 AND $2
		ORDER BY ticket_id`
	return r.list(query, from, to)
}

func (r *TicketRepo) list(query string, args ...any) ([]*entity.Ticket, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Upsert inserta o reemplaza el snapshot. La cláusula WHERE del UPDATE
// protege los tickets ya consumidos: un refetch jamás toca una fila con
// invoice_id asignado. Devuelve false cuando la fila quedó intacta.
func (r *TicketRepo) Upsert(t *entity.Ticket) (bool, error) {
	query := `
		INSERT INTO tickets (ticket_id, summary, description, status, hours_worked, labels, assignee, resolved_at, clause_id, is_billable, billable_amount, unbillable_reason, invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL, $13, $14)
		ON CONFLICT (ticket_id) DO UPDATE
		SET summary = EXCLUDED.summary,
		    description = EXCLUDED.description,
		    status = EXCLUDED.status,
		    hours_worked = EXCLUDED.hours_worked,
		    labels = EXCLUDED.labels,
		    assignee = EXCLUDED.assignee,
		    resolved_at = EXCLUDED.resolved_at,
		    clause_id = EXCLUDED.clause_id,
		    is_billable = EXCLUDED.is_billable,
		    billable_amount = EXCLUDED.billable_amount,
		    unbillable_reason = EXCLUDED.unbillable_reason,
		    updated_at = EXCLUDED.updated_at
		WHERE tickets.invoice_id IS NULL`
	tag, err := r.q.Exec(context.Background(), query,
		t.TicketID, t.Summary, nullIfEmpty(t.Description), t.Status, t.HoursWorked,
		t.Labels, nullIfEmpty(t.Assignee), t.ResolvedAt, t.ClauseID,
		t.IsBillable, t.BillableAmount, nullIfEmpty(t.UnbillableReason),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert ticket: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConsumeAll marca los tickets como consumidos por la factura, solo los que
// siguen libres. El caller compara RowsAffected con len(ids) y aborta la
// transacción si no coinciden.
func (r *TicketRepo) ConsumeAll(ids []string, invoiceID string) (int64, error) {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE tickets SET invoice_id = $2 WHERE ticket_id = ANY($1) AND invoice_id IS NULL`,
		ids, invoiceID)
	if err != nil {
		return 0, fmt.Errorf("consume tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ReleaseByInvoice devuelve al pool todos los tickets de la factura.
func (r *TicketRepo) ReleaseByInvoice(invoiceID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE tickets SET invoice_id = NULL WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	return nil
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var t entity.Ticket
	var description, assignee, reason *string
	err := row.Scan(
		&t.TicketID, &t.Summary, &description, &t.Status, &t.HoursWorked,
		&t.Labels, &assignee, &t.ResolvedAt, &t.ClauseID,
		&t.IsBillable, &t.BillableAmount, &reason, &t.InvoiceID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Description = derefStr(description)
	t.Assignee = derefStr(assignee)
	t.UnbillableReason = derefStr(reason)
	return &t, nil
}
