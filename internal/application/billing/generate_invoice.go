package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
	"github.com/AymanElMikh/bmw/pkg/logger"
)

// GenerateInvoiceUseCase ensambla una factura DRAFT a partir de los tickets
// facturables de un proyecto y periodo, consumiéndolos en la misma
// transacción. Las invocaciones concurrentes sobre el mismo (proyecto,
// periodo) se serializan con el índice único parcial de invoices y con el
// UPDATE condicional de consumo: la segunda siempre pierde con
// OverlappingPeriodError o AlreadyConsumedTicketError.
type GenerateInvoiceUseCase struct {
	txRunner    BillingTxRunner
	clauseRepo  repository.ClauseRepository
	ticketRepo  repository.TicketRepository
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	log         *logger.Logger
}

// NewGenerateInvoiceUseCase construye el caso de uso.
func NewGenerateInvoiceUseCase(
	txRunner BillingTxRunner,
	clauseRepo repository.ClauseRepository,
	ticketRepo repository.TicketRepository,
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	log *logger.Logger,
) *GenerateInvoiceUseCase {
	return &GenerateInvoiceUseCase{
		txRunner:    txRunner,
		clauseRepo:  clauseRepo,
		ticketRepo:  ticketRepo,
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

// GenerateInvoice crea una factura DRAFT para el proyecto y periodo.
// La selección explícita de tickets tiene prioridad sobre "todos los
// facturables del periodo" (curación manual). Todo-o-nada: cualquier ticket
// inválido rechaza la operación completa sin efecto alguno.
func (uc *GenerateInvoiceUseCase) GenerateInvoice(ctx context.Context, userID string, in appdto.GenerateInvoiceRequest) (*appdto.InvoiceResponse, error) {
	period, err := domainbilling.ParsePeriod(in.BillingPeriod)
	if err != nil {
		return nil, &domainbilling.ValidationError{Reasons: []string{err.Error()}}
	}
	currency := in.Currency
	if currency == "" {
		currency = entity.CurrencyEUR
	}
	if currency != entity.CurrencyEUR && currency != entity.CurrencyUSD {
		return nil, &domainbilling.ValidationError{Reasons: []string{fmt.Sprintf("moneda %q no soportada", currency)}}
	}

	// Chequeo de solape previo. La carrera residual entre este chequeo y el
	// INSERT la cierra el índice único parcial (ver el mapeo de ErrDuplicate
	// más abajo).
	if existing, err := uc.invoiceRepo.GetActiveByProjectAndPeriod(in.ProjectName, period.String()); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domainbilling.OverlappingPeriodError{
			ProjectName:   in.ProjectName,
			BillingPeriod: period.String(),
			InvoiceID:     existing.InvoiceID,
		}
	}

	catalog, err := uc.catalogSnapshot()
	if err != nil {
		return nil, err
	}

	tickets, err := uc.selectTickets(in.TicketIDs, period)
	if err != nil {
		return nil, err
	}

	inv, err := domainbilling.Assemble(domainbilling.AssembleInput{
		ProjectName: in.ProjectName,
		Period:      period,
		Tickets:     tickets,
		Catalog:     catalog,
		Currency:    currency,
		CreatedBy:   userID,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := uc.persistWithConsumption(ctx, inv); err != nil {
		return nil, err
	}

	uc.audit(userID, entity.AuditActionInvoiceGenerated, fmt.Sprintf(
		"factura %s: proyecto %s, periodo %s, total %s %s, %d tickets",
		inv.InvoiceID, inv.ProjectName, inv.BillingPeriod, inv.TotalAmount.StringFixed(2), inv.Currency, inv.TicketCount(),
	))
	return toInvoiceResponse(inv), nil
}

// RegenerateInvoice reconstruye las líneas de una factura aún en DRAFT para
// su mismo (proyecto, periodo): libera los tickets consumidos y vuelve a
// ensamblar con el pool facturable actual, todo en una transacción. Sobre
// una factura no DRAFT falla con InvalidTransitionError (las líneas están
// congeladas).
func (uc *GenerateInvoiceUseCase) RegenerateInvoice(ctx context.Context, userID, invoiceID string) (*appdto.InvoiceResponse, error) {
	catalog, err := uc.catalogSnapshot()
	if err != nil {
		return nil, err
	}

	var result *entity.Invoice
	err = uc.txRunner.RunBilling(ctx, func(
		ticketRepo repository.TicketRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		current, err := invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !domainbilling.LinesMutable(current) {
			return &domainbilling.InvalidTransitionError{From: current.Status, To: entity.InvoiceStatusDraft}
		}
		period, err := domainbilling.ParsePeriod(current.BillingPeriod)
		if err != nil {
			return err
		}

		// Liberar-y-reasignar atómico: si el reensamblado falla, el rollback
		// devuelve los tickets a su factura original y nada se pierde.
		if err := ticketRepo.ReleaseByInvoice(current.InvoiceID); err != nil {
			return err
		}
		tickets, err := ticketRepo.ListBillableUnconsumed(period.Start(), period.End())
		if err != nil {
			return err
		}
		fresh, err := domainbilling.Assemble(domainbilling.AssembleInput{
			ProjectName: current.ProjectName,
			Period:      period,
			Tickets:     tickets,
			Catalog:     catalog,
			Currency:    current.Currency,
			CreatedBy:   current.CreatedBy,
			Now:         current.CreatedAt,
		})
		if err != nil {
			return err
		}

		// La factura conserva su identidad: solo cambian líneas y total.
		fresh.InvoiceID = current.InvoiceID
		for _, l := range fresh.Lines {
			l.InvoiceID = current.InvoiceID
		}

		if err := invoiceRepo.DeleteLinesByInvoiceID(current.InvoiceID); err != nil {
			return err
		}
		for _, l := range fresh.Lines {
			if err := invoiceRepo.CreateLine(l); err != nil {
				return err
			}
		}
		current.TotalAmount = fresh.TotalAmount
		current.Lines = fresh.Lines
		if err := domainbilling.CheckInvariants(current); err != nil {
			return err
		}
		if err := invoiceRepo.UpdateTotals(current); err != nil {
			return err
		}
		if err := consumeOrFail(ticketRepo, fresh); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit(userID, entity.AuditActionInvoiceRegenerated, fmt.Sprintf(
		"factura %s: periodo %s, nuevo total %s %s, %d tickets",
		result.InvoiceID, result.BillingPeriod, result.TotalAmount.StringFixed(2), result.Currency, result.TicketCount(),
	))
	return toInvoiceResponse(result), nil
}

// GetInvoice obtiene una factura por ID con sus líneas.
func (uc *GenerateInvoiceUseCase) GetInvoice(ctx context.Context, id string) (*appdto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return toInvoiceResponse(inv), nil
}

// ListInvoices lista facturas con filtros opcionales.
func (uc *GenerateInvoiceUseCase) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]appdto.InvoiceListItem, error) {
	invoices, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]appdto.InvoiceListItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, appdto.InvoiceListItem{
			InvoiceID:     inv.InvoiceID,
			ProjectName:   inv.ProjectName,
			BillingPeriod: inv.BillingPeriod,
			Currency:      inv.Currency,
			TotalAmount:   inv.TotalAmount,
			Status:        inv.Status,
			CreatedAt:     inv.CreatedAt,
			LineCount:     len(inv.Lines),
		})
	}
	return items, nil
}

// catalogSnapshot carga el catálogo completo como snapshot por invocación.
func (uc *GenerateInvoiceUseCase) catalogSnapshot() (domainbilling.Catalog, error) {
	clauses, err := uc.clauseRepo.ListAll()
	if err != nil {
		return domainbilling.Catalog{}, fmt.Errorf("cargar catálogo de cláusulas: %w", err)
	}
	return domainbilling.NewCatalog(clauses), nil
}

// selectTickets resuelve la selección: explícita por ids o implícita por
// periodo. Ids inexistentes rechazan la operación con el detalle.
func (uc *GenerateInvoiceUseCase) selectTickets(ids []string, period domainbilling.Period) ([]*entity.Ticket, error) {
	if len(ids) == 0 {
		return uc.ticketRepo.ListBillableUnconsumed(period.Start(), period.End())
	}
	tickets, err := uc.ticketRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(tickets) != len(ids) {
		found := make(map[string]bool, len(tickets))
		for _, t := range tickets {
			found[t.TicketID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, fmt.Sprintf("ticket %s no existe", id))
			}
		}
		return nil, &domainbilling.ValidationError{Reasons: missing}
	}
	return tickets, nil
}

// persistWithConsumption guarda cabecera, líneas y consumo de tickets en una
// sola transacción.
func (uc *GenerateInvoiceUseCase) persistWithConsumption(ctx context.Context, inv *entity.Invoice) error {
	return uc.txRunner.RunBilling(ctx, func(
		ticketRepo repository.TicketRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.Create(inv); err != nil {
			// Violación del índice único parcial (project, period, no
			// cancelada): un generador concurrente ganó la carrera.
			if errors.Is(err, domain.ErrDuplicate) {
				return &domainbilling.OverlappingPeriodError{
					ProjectName:   inv.ProjectName,
					BillingPeriod: inv.BillingPeriod,
					InvoiceID:     inv.InvoiceID,
				}
			}
			return err
		}
		for _, l := range inv.Lines {
			if err := invoiceRepo.CreateLine(l); err != nil {
				return err
			}
		}
		return consumeOrFail(ticketRepo, inv)
	})
}

// consumeOrFail marca los tickets de la factura como consumidos; si alguno
// ya fue tomado por otra factura se aborta (rollback del caller).
func consumeOrFail(ticketRepo repository.TicketRepository, inv *entity.Invoice) error {
	var ids []string
	for _, l := range inv.Lines {
		ids = append(ids, l.TicketIDs...)
	}
	n, err := ticketRepo.ConsumeAll(ids, inv.InvoiceID)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return &domainbilling.AlreadyConsumedTicketError{TicketIDs: ids}
	}
	return nil
}

// audit escribe el registro de auditoría tras el commit. Best-effort: un
// fallo aquí no revierte la operación de negocio, solo deja warning.
func (uc *GenerateInvoiceUseCase) audit(userID, action, details string) {
	err := uc.auditRepo.Record(&entity.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("no se pudo escribir el registro de auditoría")
	}
}

func toInvoiceResponse(inv *entity.Invoice) *appdto.InvoiceResponse {
	resp := &appdto.InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		ProjectName:   inv.ProjectName,
		BillingPeriod: inv.BillingPeriod,
		Currency:      inv.Currency,
		TotalAmount:   inv.TotalAmount,
		Status:        inv.Status,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		Lines:         make([]appdto.InvoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, appdto.InvoiceLineResponse{
			LineID:    l.LineID,
			ClauseID:  l.ClauseID,
			TicketIDs: l.TicketIDs,
			Hours:     l.Hours,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}
