package billing

import (
	"fmt"
	"strings"
)

// Errores tipados del motor de facturación. Todos llevan los identificadores
// ofensores para que la capa HTTP pueda construir mensajes precisos; ninguno
// se traga dentro del motor. Se inspeccionan con errors.As.

// ValidationError selección malformada: se rechaza todo antes de mutar nada.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "selección inválida: " + strings.Join(e.Reasons, "; ")
}

// InvalidTicketDataError datos de ticket corruptos (horas negativas o fuera
// de rango). Se rechaza al caller, nunca se coacciona a cero.
type InvalidTicketDataError struct {
	TicketID string
	Reason   string
}

func (e *InvalidTicketDataError) Error() string {
	return fmt.Sprintf("ticket %s con datos inválidos: %s", e.TicketID, e.Reason)
}

// UnmappedTicketError el ticket no pudo clasificarse (sin cláusula activa que
// coincida). Recuperable: el ticket queda visible para corrección manual,
// solo se excluye del ensamblado.
type UnmappedTicketError struct {
	TicketID string
	Reason   string
}

func (e *UnmappedTicketError) Error() string {
	return fmt.Sprintf("ticket %s sin cláusula asignable: %s", e.TicketID, e.Reason)
}

// EmptySelectionError ningún ticket facturable en el rango. Nunca se genera
// una factura en cero.
type EmptySelectionError struct {
	ProjectName   string
	BillingPeriod string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("sin tickets facturables para %s en %s", e.ProjectName, e.BillingPeriod)
}

// OverlappingPeriodError ya existe una factura no cancelada para el mismo
// (proyecto, periodo). Error duro: previene la doble facturación.
type OverlappingPeriodError struct {
	ProjectName   string
	BillingPeriod string
	InvoiceID     string // factura existente que causa el solape
}

func (e *OverlappingPeriodError) Error() string {
	return fmt.Sprintf("periodo %s de %s ya facturado por %s", e.BillingPeriod, e.ProjectName, e.InvoiceID)
}

// AlreadyConsumedTicketError el ticket ya pertenece a otra factura.
type AlreadyConsumedTicketError struct {
	TicketIDs []string
}

func (e *AlreadyConsumedTicketError) Error() string {
	return "tickets ya consumidos por otra factura: " + strings.Join(e.TicketIDs, ", ")
}

// InvalidTransitionError transición de estado no permitida por la tabla.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de factura %s -> %s no permitida", e.From, e.To)
}

// ConsistencyError invariante interna violada (ej. total recalculado no
// coincide). Fatal: se aborta sin persistir nada.
type ConsistencyError struct {
	InvoiceID string
	Detail    string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistencia en factura %s: %s", e.InvoiceID, e.Detail)
}
