package billing

import (
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// Máquina de estados de la factura. Solo transiciones hacia adelante:
//
//	DRAFT -> SENT -> PAID
//	DRAFT -> CANCELLED
//	SENT  -> CANCELLED
//
// PAID y CANCELLED son terminales. Una vez fuera de DRAFT las líneas quedan
// congeladas (inmutables).
var transitions = map[string][]string{
	entity.InvoiceStatusDraft: {entity.InvoiceStatusSent, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusSent:  {entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
}

// CanTransition consulta la tabla de transiciones.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition aplica la transición sobre la factura o falla con
// *InvalidTransitionError. Enviar exige total distinto de cero: una factura
// vacía nunca sale de DRAFT.
func Transition(inv *entity.Invoice, to string) error {
	if !CanTransition(inv.Status, to) {
		return &InvalidTransitionError{From: inv.Status, To: to}
	}
	if to == entity.InvoiceStatusSent && inv.TotalAmount.IsZero() {
		return &ValidationError{Reasons: []string{"no se puede enviar una factura con total cero"}}
	}
	inv.Status = to
	return nil
}

// LinesMutable indica si las líneas de la factura aún pueden regenerarse.
// Solo DRAFT admite reemplazo de líneas.
func LinesMutable(inv *entity.Invoice) bool {
	return inv.Status == entity.InvoiceStatusDraft
}

// ReleasesTickets indica si la transición libera los tickets consumidos de
// vuelta al pool facturable (cancelación).
func ReleasesTickets(to string) bool {
	return to == entity.InvoiceStatusCancelled
}
