package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/application/tickets"
)

// TicketHandler maneja la sincronización y consulta de tickets (protegido).
type TicketHandler struct {
	uc *tickets.SyncUseCase
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *tickets.SyncUseCase) *TicketHandler {
	return &TicketHandler{uc: uc}
}

// Sync trae los tickets del tracker y los clasifica.
// POST /api/tickets/sync
func (h *TicketHandler) Sync(c *fiber.Ctx) error {
	var in dto.SyncTicketsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Sync(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// List devuelve todos los snapshots.
// GET /api/tickets
func (h *TicketHandler) List(c *fiber.Ctx) error {
	result, err := h.uc.ListTickets(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetByID obtiene un snapshot.
// GET /api/tickets/:id
func (h *TicketHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.uc.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
