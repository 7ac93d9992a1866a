package reports

import (
	"context"

	"github.com/shopspring/decimal"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// SummaryUseCase agrega las facturas de un mes en un resumen por cláusula.
// Las facturas canceladas no cuentan: sus tickets volvieron al pool.
type SummaryUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(invoiceRepo repository.InvoiceRepository) *SummaryUseCase {
	return &SummaryUseCase{invoiceRepo: invoiceRepo}
}

// MonthlySummary calcula el resumen del periodo "YYYY-MM".
func (uc *SummaryUseCase) MonthlySummary(ctx context.Context, billingPeriod string) (*appdto.MonthlySummaryResponse, error) {
	period, err := domainbilling.ParsePeriod(billingPeriod)
	if err != nil {
		return nil, &domainbilling.ValidationError{Reasons: []string{err.Error()}}
	}

	invoices, err := uc.invoiceRepo.List(repository.InvoiceFilter{BillingPeriod: period.String()})
	if err != nil {
		return nil, err
	}

	resp := &appdto.MonthlySummaryResponse{
		BillingPeriod:     period.String(),
		TotalHours:        decimal.Zero,
		TotalAmount:       decimal.Zero,
		BreakdownByClause: make(map[string]appdto.ClauseBreakdown),
	}
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusCancelled {
			continue
		}
		lines, err := uc.invoiceRepo.GetLinesByInvoiceID(inv.InvoiceID)
		if err != nil {
			return nil, err
		}
		resp.InvoicesCount++
		resp.TotalAmount = resp.TotalAmount.Add(inv.TotalAmount)
		for _, l := range lines {
			resp.TotalHours = resp.TotalHours.Add(l.Hours)
			resp.TicketsBilled += len(l.TicketIDs)
			b := resp.BreakdownByClause[l.ClauseID]
			b.Hours = b.Hours.Add(l.Hours)
			b.Amount = b.Amount.Add(l.LineTotal)
			resp.BreakdownByClause[l.ClauseID] = b
		}
	}
	return resp, nil
}
