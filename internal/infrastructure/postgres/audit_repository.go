package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación de AuditRepository (usable con pool o tx).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Record inserta un registro inmutable.
func (r *AuditRepo) Record(log *entity.AuditLog) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO audit_logs (user_id, action, details, timestamp) VALUES ($1, $2, $3, $4)`,
		log.UserID, log.Action, nullIfEmpty(log.Details), log.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List devuelve registros filtrados, más recientes primero.
func (r *AuditRepo) List(filter repository.AuditFilter) ([]*entity.AuditLog, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, condition+" $"+strconv.Itoa(len(args)))
	}
	if filter.UserID != "" {
		add("user_id =", filter.UserID)
	}
	if filter.Action != "" {
		add("action =", filter.Action)
	}
	if filter.StartDate != nil {
		add("timestamp >=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("timestamp <=", *filter.EndDate)
	}

	query := `SELECT log_id, user_id, action, COALESCE(details, ''), timestamp FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " LIMIT " + strconv.Itoa(limit)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.LogID, &l.UserID, &l.Action, &l.Details, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
