package dto

import "time"

// AuditLogResponse registro del audit log en respuestas.
type AuditLogResponse struct {
	LogID     int64     `json:"log_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
