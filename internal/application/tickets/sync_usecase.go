package tickets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
	"github.com/AymanElMikh/bmw/pkg/logger"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z]+$`)

// SyncUseCase trae los tickets del tracker externo, los clasifica con el
// catálogo vigente y persiste los snapshots. Re-sincronizar es idempotente:
// un ticket ya consumido por una factura jamás se re-clasifica ni se vuelve
// a facturar (queda en skipped).
type SyncUseCase struct {
	source     TicketSource
	clauseRepo repository.ClauseRepository
	ticketRepo repository.TicketRepository
	auditRepo  repository.AuditRepository
	log        *logger.Logger
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(
	source TicketSource,
	clauseRepo repository.ClauseRepository,
	ticketRepo repository.TicketRepository,
	auditRepo repository.AuditRepository,
	log *logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		source:     source,
		clauseRepo: clauseRepo,
		ticketRepo: ticketRepo,
		auditRepo:  auditRepo,
		log:        log,
	}
}

// Sync ejecuta la sincronización completa: fetch, clasificación y upsert.
// Los datos corruptos (horas inválidas) rechazan la operación entera antes
// de persistir nada; los tickets sin cláusula asignable solo quedan marcados
// como no facturables con su diagnóstico.
func (uc *SyncUseCase) Sync(ctx context.Context, userID string, in appdto.SyncTicketsRequest) (*appdto.SyncTicketsResponse, error) {
	if err := validateSyncRequest(in); err != nil {
		return nil, err
	}
	status := in.StatusFilter
	if status == "" {
		status = entity.TicketStatusClosed
	}

	fetched, err := uc.source.FetchTickets(ctx, SourceQuery{
		ProjectKey: in.ProjectKey,
		Status:     status,
		Label:      in.LabelFilter,
		From:       in.PeriodStart,
		To:         in.PeriodEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("consultar tracker: %w", err)
	}

	clauses, err := uc.clauseRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("cargar catálogo de cláusulas: %w", err)
	}
	catalog := domainbilling.NewCatalog(clauses)

	// Primera pasada: clasificación completa en memoria. Un solo ticket con
	// datos corruptos aborta el sync sin tocar la base.
	for _, t := range fetched {
		if err := domainbilling.Classify(t, catalog); err != nil {
			var unmapped *domainbilling.UnmappedTicketError
			if errors.As(err, &unmapped) {
				continue // queda marcado no facturable, sigue al upsert
			}
			return nil, err
		}
	}

	resp := &appdto.SyncTicketsResponse{TotalCount: len(fetched)}
	now := time.Now().UTC()
	for _, t := range fetched {
		t.UpdatedAt = now
		updated, err := uc.ticketRepo.Upsert(t)
		if err != nil {
			return nil, err
		}
		if !updated {
			resp.SkippedIDs = append(resp.SkippedIDs, t.TicketID)
			continue
		}
		resp.Tickets = append(resp.Tickets, toTicketResponse(t))
		if t.IsBillable {
			resp.BillableCount++
		} else {
			resp.ExcludedCount++
			resp.ExcludedIDs = append(resp.ExcludedIDs, t.TicketID)
		}
	}

	uc.audit(userID, fmt.Sprintf(
		"proyecto %s: %d tickets, %d facturables, %d excluidos, %d omitidos (ya facturados)",
		in.ProjectKey, resp.TotalCount, resp.BillableCount, resp.ExcludedCount, len(resp.SkippedIDs),
	))
	return resp, nil
}

// ListTickets devuelve todos los snapshots (dashboard de revisión).
func (uc *SyncUseCase) ListTickets(ctx context.Context) ([]appdto.TicketResponse, error) {
	tickets, err := uc.ticketRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]appdto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	return out, nil
}

// GetTicket obtiene un snapshot por id.
func (uc *SyncUseCase) GetTicket(ctx context.Context, id string) (*appdto.TicketResponse, error) {
	t, err := uc.ticketRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	resp := toTicketResponse(t)
	return &resp, nil
}

func validateSyncRequest(in appdto.SyncTicketsRequest) error {
	var reasons []string
	if !projectKeyPattern.MatchString(in.ProjectKey) {
		reasons = append(reasons, fmt.Sprintf("project_key %q inválido: solo mayúsculas", in.ProjectKey))
	}
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		reasons = append(reasons, "billing_period_start y billing_period_end son obligatorios")
	} else if in.PeriodEnd.Before(in.PeriodStart) {
		reasons = append(reasons, "billing_period_end anterior a billing_period_start")
	}
	if len(reasons) > 0 {
		return &domainbilling.ValidationError{Reasons: reasons}
	}
	return nil
}

func (uc *SyncUseCase) audit(userID, details string) {
	err := uc.auditRepo.Record(&entity.AuditLog{
		UserID:    userID,
		Action:    entity.AuditActionTicketSync,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Msg("no se pudo escribir el registro de auditoría")
	}
}

func toTicketResponse(t *entity.Ticket) appdto.TicketResponse {
	return appdto.TicketResponse{
		TicketID:         t.TicketID,
		Summary:          t.Summary,
		Status:           t.Status,
		HoursWorked:      t.HoursWorked,
		Labels:           t.Labels,
		Assignee:         t.Assignee,
		ResolvedAt:       t.ResolvedAt,
		ClauseID:         t.ClauseID,
		IsBillable:       t.IsBillable,
		BillableAmount:   t.BillableAmount,
		UnbillableReason: t.UnbillableReason,
		InvoiceID:        t.InvoiceID,
	}
}
