package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func julio2026() billing.Period {
	p, _ := billing.ParsePeriod("2026-07")
	return p
}

// billableTicket construye un ticket ya clasificado como facturable.
func billableTicket(id string, hours float64, clauseID string) *entity.Ticket {
	tk := closedTicket(id, hours, clauseID)
	cid := clauseID
	tk.ClauseID = &cid
	tk.IsBillable = true
	return tk
}

func assembleInput(tickets ...*entity.Ticket) billing.AssembleInput {
	return billing.AssembleInput{
		ProjectName: "SEGUROS-CORE",
		Period:      julio2026(),
		Tickets:     tickets,
		Catalog:     testCatalog(),
		Currency:    entity.CurrencyEUR,
		CreatedBy:   "user-1",
		Now:         time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Assemble — agrupado y totales
// ──────────────────────────────────────────────────────────────────────────────

func TestAssemble_AgrupaPorClausulaYSumaTotales(t *testing.T) {
	// T1 y T2 en FLASH_001 (85.00/h), T3 en FLASH_002 (95.00/h).
	inv, err := billing.Assemble(assembleInput(
		billableTicket("BMW-1", 10.0, "FLASH_001"),
		billableTicket("BMW-2", 5.5, "FLASH_001"),
		billableTicket("BMW-3", 3.0, "FLASH_002"),
	))
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status, "toda factura nace en DRAFT")
	assert.Equal(t, "SEGUROS-CORE", inv.ProjectName)
	assert.Equal(t, "2026-07", inv.BillingPeriod)
	require.Len(t, inv.Lines, 2, "una línea por cláusula, no por ticket")

	// Líneas en orden lexicográfico de cláusula.
	l1, l2 := inv.Lines[0], inv.Lines[1]
	assert.Equal(t, "FLASH_001", l1.ClauseID)
	assert.Equal(t, []string{"BMW-1", "BMW-2"}, l1.TicketIDs)
	assert.Equal(t, "15.50", l1.Hours.StringFixed(2))
	assert.Equal(t, "1317.50", l1.LineTotal.StringFixed(2), "15.5h x 85.00")

	assert.Equal(t, "FLASH_002", l2.ClauseID)
	assert.Equal(t, "285.00", l2.LineTotal.StringFixed(2), "3.0h x 95.00")

	assert.Equal(t, "1602.50", inv.TotalAmount.StringFixed(2), "total = suma exacta de líneas")
	assert.Equal(t, 3, inv.TicketCount())
}

func TestAssemble_MismoInputMismaFactura(t *testing.T) {
	build := func() *entity.Invoice {
		// Tickets en orden distinto en cada llamada.
		inv, err := billing.Assemble(assembleInput(
			billableTicket("BMW-3", 3.0, "FLASH_002"),
			billableTicket("BMW-2", 5.5, "FLASH_001"),
			billableTicket("BMW-1", 10.0, "FLASH_001"),
		))
		require.NoError(t, err)
		return inv
	}
	a, b := build(), build()

	require.Len(t, b.Lines, len(a.Lines))
	for i := range a.Lines {
		assert.Equal(t, a.Lines[i].ClauseID, b.Lines[i].ClauseID, "orden de líneas estable")
		assert.Equal(t, a.Lines[i].TicketIDs, b.Lines[i].TicketIDs, "orden de tickets estable")
		assert.True(t, a.Lines[i].LineTotal.Equal(b.Lines[i].LineTotal))
	}
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Assemble — rechazos todo-o-nada
// ──────────────────────────────────────────────────────────────────────────────

func TestAssemble_SeleccionVacia_Rechazada(t *testing.T) {
	_, err := billing.Assemble(assembleInput())

	var empty *billing.EmptySelectionError
	require.ErrorAs(t, err, &empty, "nunca se genera una factura en cero")
	assert.Equal(t, "SEGUROS-CORE", empty.ProjectName)
	assert.Equal(t, "2026-07", empty.BillingPeriod)
}

func TestAssemble_TicketYaConsumido_Rechazado(t *testing.T) {
	consumed := billableTicket("BMW-2", 5.5, "FLASH_001")
	otherInvoice := "otra-factura"
	consumed.InvoiceID = &otherInvoice

	_, err := billing.Assemble(assembleInput(
		billableTicket("BMW-1", 10.0, "FLASH_001"),
		consumed,
	))

	var already *billing.AlreadyConsumedTicketError
	require.ErrorAs(t, err, &already, "un ticket solo puede pertenecer a una factura")
	assert.Equal(t, []string{"BMW-2"}, already.TicketIDs)
}

func TestAssemble_TicketNoFacturable_RechazaTodoConDetalle(t *testing.T) {
	bad := closedTicket("BMW-9", 2.0, "sin-label-util")
	bad.UnbillableReason = "ningún label coincide con una cláusula activa"

	_, err := billing.Assemble(assembleInput(
		billableTicket("BMW-1", 10.0, "FLASH_001"),
		bad,
	))

	var validation *billing.ValidationError
	require.ErrorAs(t, err, &validation, "cualquier ticket inválido rechaza la operación entera")
	require.Len(t, validation.Reasons, 1)
	assert.Contains(t, validation.Reasons[0], "BMW-9", "el detalle debe nombrar el ticket ofensor")
}

func TestAssemble_RecolectaTodasLasRazones(t *testing.T) {
	unbillable := closedTicket("BMW-8", 2.0)
	unbillable.UnbillableReason = "sin labels"

	outOfPeriod := billableTicket("BMW-7", 1.0, "FLASH_001")
	resolved := time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC) // junio, no julio
	outOfPeriod.ResolvedAt = &resolved

	_, err := billing.Assemble(assembleInput(unbillable, outOfPeriod))

	var validation *billing.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Len(t, validation.Reasons, 2, "todas las razones de rechazo, no solo la primera")
}

func TestAssemble_ClausulaDesconocida_Rechazada(t *testing.T) {
	orphan := billableTicket("BMW-6", 2.0, "BORRADA_999")

	_, err := billing.Assemble(assembleInput(orphan))

	var validation *billing.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Reasons[0], "BORRADA_999")
}

func TestAssemble_HorasCorruptas_Rechazadas(t *testing.T) {
	bad := billableTicket("BMW-5", 1.0, "FLASH_001")
	bad.HoursWorked = decimal.NewFromFloat(-2.0)

	_, err := billing.Assemble(assembleInput(bad))

	var invalid *billing.InvalidTicketDataError
	require.ErrorAs(t, err, &invalid)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CheckInvariants
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckInvariants_TotalManipulado_Detectado(t *testing.T) {
	inv, err := billing.Assemble(assembleInput(billableTicket("BMW-1", 10.0, "FLASH_001")))
	require.NoError(t, err)

	inv.TotalAmount = inv.TotalAmount.Add(decimal.NewFromInt(1))

	var consistency *billing.ConsistencyError
	require.ErrorAs(t, billing.CheckInvariants(inv), &consistency,
		"un total que no cuadra con las líneas es fatal")
	assert.Equal(t, inv.InvoiceID, consistency.InvoiceID)
}

func TestCheckInvariants_LineaManipulada_Detectada(t *testing.T) {
	inv, err := billing.Assemble(assembleInput(billableTicket("BMW-1", 10.0, "FLASH_001")))
	require.NoError(t, err)

	inv.Lines[0].LineTotal = decimal.NewFromInt(1)
	inv.TotalAmount = decimal.NewFromInt(1)

	var consistency *billing.ConsistencyError
	require.ErrorAs(t, billing.CheckInvariants(inv), &consistency)
}
