package repository

import (
	"time"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// AuditFilter filtros para consultar el audit log.
type AuditFilter struct {
	UserID    string
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// AuditRepository define el puerto write-mostly del audit log. Record se
// llama exactamente una vez por operación mutante; sus fallos no revierten
// la transacción de negocio.
type AuditRepository interface {
	Record(log *entity.AuditLog) error
	List(filter AuditFilter) ([]*entity.AuditLog, error)
}
