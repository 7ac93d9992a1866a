package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// AuditHandler expone la consulta del audit log (solo ADMIN).
type AuditHandler struct {
	auditRepo repository.AuditRepository
}

// NewAuditHandler construye el handler.
func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List devuelve registros filtrados por query params.
// GET /api/audit?user_id=&action=&from=&to=&limit=
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		UserID: c.Query("user_id"),
		Action: c.Query("action"),
		Limit:  c.QueryInt("limit"),
	}
	if from := c.Query("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		filter.StartDate = &ts
	}
	if to := c.Query("to"); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		filter.EndDate = &ts
	}

	logs, err := h.auditRepo.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.AuditLogResponse{
			LogID:     l.LogID,
			UserID:    l.UserID,
			Action:    l.Action,
			Details:   l.Details,
			Timestamp: l.Timestamp,
		})
	}
	return c.JSON(out)
}
