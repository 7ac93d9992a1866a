package entity

import "time"

// Acciones registradas en el audit log.
const (
	AuditActionInvoiceGenerated   = "INVOICE_GENERATED"
	AuditActionInvoiceRegenerated = "INVOICE_REGENERATED"
	AuditActionInvoiceStatus      = "INVOICE_STATUS_CHANGED"
	AuditActionClauseCreated      = "CLAUSE_CREATED"
	AuditActionClauseUpdated      = "CLAUSE_UPDATED"
	AuditActionClauseDeactivated  = "CLAUSE_DEACTIVATED"
	AuditActionTicketSync         = "TICKET_SYNC"
)

// AuditLog registro inmutable de una acción mutante del motor.
// Se escribe exactamente una vez por operación; un fallo al escribirlo no
// revierte la transacción de negocio (best-effort, se loguea un warning).
type AuditLog struct {
	LogID     int64
	UserID    string
	Action    string
	Details   string
	Timestamp time.Time
}
