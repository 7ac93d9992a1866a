package billing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// Motor de mapeo: decide facturabilidad y asigna cláusula a cada ticket de
// forma determinista y repetible. No muta el catálogo; solo los campos de
// facturación del ticket.

// MaxHoursPerTicket tope de horas por ticket: un mes de 31 días de reloj.
// Por encima se considera dato corrupto del tracker.
var MaxHoursPerTicket = decimal.NewFromInt(744)

// currencyPlaces precisión monetaria: 2 decimales.
const currencyPlaces = 2

// razones diagnósticas para tickets no facturables.
const (
	reasonNotClosed = "estado distinto de CLOSED"
	reasonNoLabels  = "sin labels"
	reasonZeroHours = "sin horas registradas"
	reasonUnmapped  = "ningún label coincide con una cláusula activa"
)

// ValidateTicketData rechaza horas negativas o fuera de rango antes de
// cualquier clasificación. Nunca se coacciona a cero.
func ValidateTicketData(t *entity.Ticket) error {
	if t.HoursWorked.IsNegative() {
		return &InvalidTicketDataError{TicketID: t.TicketID, Reason: "horas negativas"}
	}
	if t.HoursWorked.GreaterThan(MaxHoursPerTicket) {
		return &InvalidTicketDataError{
			TicketID: t.TicketID,
			Reason:   fmt.Sprintf("horas %s exceden el tope de %s por ticket", t.HoursWorked, MaxHoursPerTicket),
		}
	}
	return nil
}

// AssignClause busca la cláusula activa cuyo id coincide con algún label del
// ticket. Los labels se recorren en orden lexicográfico y gana el primero
// que coincide: el desempate es fijo entre ejecuciones, no depende del orden
// en que el tracker devuelva los labels.
func AssignClause(labels []string, catalog Catalog) *entity.LegalClause {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)
	for _, label := range sorted {
		if cl := catalog.Active(label); cl != nil {
			return cl
		}
	}
	return nil
}

// ComputeAmount calcula horas x precio unitario con redondeo bancario
// (half-even) a precisión monetaria.
func ComputeAmount(hours, unitPrice decimal.Decimal) decimal.Decimal {
	return hours.Mul(unitPrice).RoundBank(currencyPlaces)
}

// Classify evalúa la facturabilidad del ticket y escribe sus campos de
// facturación. Regla: facturable solo si está CLOSED, tiene al menos un
// label, horas > 0 y exactamente una cláusula activa asignable.
//
// Retorna *InvalidTicketDataError si las horas son inválidas (el ticket no
// se toca) y *UnmappedTicketError si ningún label mapea (el ticket queda
// marcado no facturable con el diagnóstico, visible para corrección manual).
func Classify(t *entity.Ticket, catalog Catalog) error {
	if err := ValidateTicketData(t); err != nil {
		return err
	}

	markUnbillable := func(reason string) {
		t.IsBillable = false
		t.ClauseID = nil
		t.BillableAmount = decimal.Zero
		t.UnbillableReason = reason
	}

	if t.Status != entity.TicketStatusClosed {
		markUnbillable(reasonNotClosed)
		return nil
	}
	if len(t.Labels) == 0 {
		markUnbillable(reasonNoLabels)
		return nil
	}
	if !t.HoursWorked.IsPositive() {
		markUnbillable(reasonZeroHours)
		return nil
	}

	clause := AssignClause(t.Labels, catalog)
	if clause == nil {
		markUnbillable(reasonUnmapped)
		return &UnmappedTicketError{TicketID: t.TicketID, Reason: reasonUnmapped}
	}

	clauseID := clause.ClauseID
	t.IsBillable = true
	t.ClauseID = &clauseID
	t.BillableAmount = ComputeAmount(t.HoursWorked, clause.UnitPrice)
	t.UnbillableReason = ""
	return nil
}
