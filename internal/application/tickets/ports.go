package tickets

import (
	"context"
	"time"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// SourceQuery parámetros de consulta contra el tracker externo.
type SourceQuery struct {
	ProjectKey string
	Status     string // estado del tracker, ej. CLOSED
	Label      string // filtro opcional por label
	From       time.Time
	To         time.Time
}

// TicketSource define el puerto de lectura del tracker externo (Jira). El
// adaptador devuelve snapshots ya normalizados (horas como decimal, labels
// como slice) pero sin clasificar: la facturabilidad la decide el motor.
type TicketSource interface {
	FetchTickets(ctx context.Context, q SourceQuery) ([]*entity.Ticket, error)
}
