package billing

import (
	"context"
	"fmt"
	"time"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
	"github.com/AymanElMikh/bmw/pkg/logger"
)

// InvoiceLifecycleUseCase gestiona las transiciones de estado de facturas:
// DRAFT→SENT→PAID, con CANCELLED como salida desde DRAFT o SENT. La fila se
// bloquea (FOR UPDATE) durante la transición para que dos cambios
// concurrentes se serialicen y el segundo vea el estado ya mutado.
type InvoiceLifecycleUseCase struct {
	txRunner  BillingTxRunner
	auditRepo repository.AuditRepository
	log       *logger.Logger
}

// NewInvoiceLifecycleUseCase construye el caso de uso.
func NewInvoiceLifecycleUseCase(txRunner BillingTxRunner, auditRepo repository.AuditRepository, log *logger.Logger) *InvoiceLifecycleUseCase {
	return &InvoiceLifecycleUseCase{txRunner: txRunner, auditRepo: auditRepo, log: log}
}

// UpdateStatus aplica una transición de estado. Cancelar una factura libera
// sus tickets al pool facturable en la misma transacción.
func (uc *InvoiceLifecycleUseCase) UpdateStatus(ctx context.Context, userID, invoiceID string, in appdto.UpdateInvoiceStatusRequest) (*appdto.InvoiceResponse, error) {
	var (
		result *entity.Invoice
		from   string
	)
	err := uc.txRunner.RunBilling(ctx, func(
		ticketRepo repository.TicketRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		from = inv.Status
		if err := domainbilling.Transition(inv, in.Status); err != nil {
			return err
		}
		if err := invoiceRepo.UpdateStatus(inv); err != nil {
			return err
		}
		if domainbilling.ReleasesTickets(inv.Status) {
			if err := ticketRepo.ReleaseByInvoice(inv.InvoiceID); err != nil {
				return err
			}
		}
		lines, err := invoiceRepo.GetLinesByInvoiceID(inv.InvoiceID)
		if err != nil {
			return err
		}
		inv.Lines = lines
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit(userID, fmt.Sprintf("factura %s: %s -> %s", result.InvoiceID, from, result.Status))
	return toInvoiceResponse(result), nil
}

func (uc *InvoiceLifecycleUseCase) audit(userID, details string) {
	err := uc.auditRepo.Record(&entity.AuditLog{
		UserID:    userID,
		Action:    entity.AuditActionInvoiceStatus,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Msg("no se pudo escribir el registro de auditoría")
	}
}
