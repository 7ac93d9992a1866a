package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

var _ repository.ClauseRepository = (*ClauseRepo)(nil)

// ClauseRepo implementación de ClauseRepository (usable con pool o tx).
type ClauseRepo struct {
	q Querier
}

// NewClauseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClauseRepository(q Querier) *ClauseRepo {
	return &ClauseRepo{q: q}
}

const clauseColumns = `clause_id, clause_name, description, unit_price, currency, effective_date, created_by, created_at, is_active`

// Create persiste una cláusula nueva.
func (r *ClauseRepo) Create(clause *entity.LegalClause) error {
	query := `
		INSERT INTO legal_clauses (clause_id, clause_name, description, unit_price, currency, effective_date, created_by, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		clause.ClauseID, clause.ClauseName, nullIfEmpty(clause.Description),
		clause.UnitPrice, clause.Currency, clause.EffectiveDate,
		clause.CreatedBy, clause.CreatedAt, clause.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("clause id already exists: %w", err)
		}
		return fmt.Errorf("insert clause: %w", err)
	}
	return nil
}

// Update actualiza nombre, descripción y precio.
func (r *ClauseRepo) Update(clause *entity.LegalClause) error {
	query := `
		UPDATE legal_clauses
		SET clause_name = $2, description = $3, unit_price = $4
		WHERE clause_id = $1`
	_, err := r.q.Exec(context.Background(), query,
		clause.ClauseID, clause.ClauseName, nullIfEmpty(clause.Description), clause.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("update clause: %w", err)
	}
	return nil
}

// GetByID obtiene una cláusula por código.
func (r *ClauseRepo) GetByID(id string) (*entity.LegalClause, error) {
	query := `SELECT ` + clauseColumns + ` FROM legal_clauses WHERE clause_id = $1`
	clause, err := scanClause(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get clause: %w", err)
	}
	return clause, nil
}

// ListActive lista solo las cláusulas asignables.
func (r *ClauseRepo) ListActive() ([]*entity.LegalClause, error) {
	query := `SELECT ` + clauseColumns + ` FROM legal_clauses WHERE is_active ORDER BY clause_id`
	return r.list(query)
}

// ListAll lista el catálogo completo.
func (r *ClauseRepo) ListAll() ([]*entity.LegalClause, error) {
	query := `SELECT ` + clauseColumns + ` FROM legal_clauses ORDER BY clause_id`
	return r.list(query)
}

func (r *ClauseRepo) list(query string) ([]*entity.LegalClause, error) {
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	var clauses []*entity.LegalClause
	for rows.Next() {
		clause, err := scanClause(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		clauses = append(clauses, clause)
	}
	return clauses, rows.Err()
}

// SetActive activa o desactiva la cláusula.
func (r *ClauseRepo) SetActive(id string, active bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE legal_clauses SET is_active = $2 WHERE clause_id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set clause active: %w", err)
	}
	return nil
}

// IsReferenced indica si alguna línea de factura referencia la cláusula.
func (r *ClauseRepo) IsReferenced(id string) (bool, error) {
	var referenced bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM invoice_lines WHERE clause_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("check clause references: %w", err)
	}
	return referenced, nil
}

func scanClause(row pgx.Row) (*entity.LegalClause, error) {
	var c entity.LegalClause
	var description *string
	err := row.Scan(
		&c.ClauseID, &c.ClauseName, &description, &c.UnitPrice, &c.Currency,
		&c.EffectiveDate, &c.CreatedBy, &c.CreatedAt, &c.IsActive,
	)
	if err != nil {
		return nil, err
	}
	c.Description = derefStr(description)
	return &c, nil
}
