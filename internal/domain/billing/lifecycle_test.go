package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

func draftInvoice() *entity.Invoice {
	return &entity.Invoice{
		InvoiceID:   "inv-1",
		Status:      entity.InvoiceStatusDraft,
		TotalAmount: decimal.RequireFromString("1602.50"),
	}
}

func TestTransition_CaminoFeliz(t *testing.T) {
	inv := draftInvoice()

	require.NoError(t, billing.Transition(inv, entity.InvoiceStatusSent))
	assert.Equal(t, entity.InvoiceStatusSent, inv.Status)

	require.NoError(t, billing.Transition(inv, entity.InvoiceStatusPaid))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
}

func TestTransition_SaltoDraftAPaid_Prohibido(t *testing.T) {
	inv := draftInvoice()

	err := billing.Transition(inv, entity.InvoiceStatusPaid)

	var invalid *billing.InvalidTransitionError
	require.ErrorAs(t, err, &invalid, "no se puede pagar lo que no se envió")
	assert.Equal(t, entity.InvoiceStatusDraft, invalid.From)
	assert.Equal(t, entity.InvoiceStatusPaid, invalid.To)
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status, "el estado no debe mutar en un rechazo")
}

func TestTransition_EstadosTerminales(t *testing.T) {
	paid := draftInvoice()
	paid.Status = entity.InvoiceStatusPaid
	cancelled := draftInvoice()
	cancelled.Status = entity.InvoiceStatusCancelled

	var invalid *billing.InvalidTransitionError
	require.ErrorAs(t, billing.Transition(paid, entity.InvoiceStatusCancelled), &invalid,
		"una factura pagada no se cancela")
	require.ErrorAs(t, billing.Transition(cancelled, entity.InvoiceStatusDraft), &invalid,
		"de CANCELLED no se vuelve")
}

func TestTransition_CancelacionDesdeDraftYSent(t *testing.T) {
	fromDraft := draftInvoice()
	require.NoError(t, billing.Transition(fromDraft, entity.InvoiceStatusCancelled))

	fromSent := draftInvoice()
	fromSent.Status = entity.InvoiceStatusSent
	require.NoError(t, billing.Transition(fromSent, entity.InvoiceStatusCancelled))
}

func TestTransition_EnviarConTotalCero_Rechazado(t *testing.T) {
	inv := draftInvoice()
	inv.TotalAmount = decimal.Zero

	err := billing.Transition(inv, entity.InvoiceStatusSent)

	var validation *billing.ValidationError
	require.ErrorAs(t, err, &validation, "una factura vacía nunca sale de DRAFT")
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
}

func TestTransition_EstadoDesconocido_Rechazado(t *testing.T) {
	inv := draftInvoice()

	var invalid *billing.InvalidTransitionError
	require.ErrorAs(t, billing.Transition(inv, "ARCHIVED"), &invalid)
}

func TestLinesMutable_SoloEnDraft(t *testing.T) {
	inv := draftInvoice()
	assert.True(t, billing.LinesMutable(inv))

	inv.Status = entity.InvoiceStatusSent
	assert.False(t, billing.LinesMutable(inv), "fuera de DRAFT las líneas quedan congeladas")
}

func TestReleasesTickets_SoloCancelacion(t *testing.T) {
	assert.True(t, billing.ReleasesTickets(entity.InvoiceStatusCancelled))
	assert.False(t, billing.ReleasesTickets(entity.InvoiceStatusSent))
	assert.False(t, billing.ReleasesTickets(entity.InvoiceStatusPaid))
}
