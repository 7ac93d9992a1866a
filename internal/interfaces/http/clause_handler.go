package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/billing"
	"github.com/AymanElMikh/bmw/internal/application/dto"
)

// ClauseHandler maneja el catálogo de cláusulas legales (protegido).
type ClauseHandler struct {
	uc *billing.ClauseUseCase
}

// NewClauseHandler construye el handler.
func NewClauseHandler(uc *billing.ClauseUseCase) *ClauseHandler {
	return &ClauseHandler{uc: uc}
}

// Create da de alta una cláusula.
// POST /api/clauses
func (h *ClauseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClauseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	clause, err := h.uc.CreateClause(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(clause)
}

// Update modifica nombre, descripción o precio.
// PUT /api/clauses/:id
func (h *ClauseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateClauseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	clause, err := h.uc.UpdateClause(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clause)
}

// Deactivate excluye la cláusula de asignaciones futuras.
// POST /api/clauses/:id/deactivate
func (h *ClauseHandler) Deactivate(c *fiber.Ctx) error {
	clause, err := h.uc.SetClauseActive(c.Context(), GetUserID(c), c.Params("id"), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clause)
}

// Activate vuelve a hacer asignable la cláusula.
// POST /api/clauses/:id/activate
func (h *ClauseHandler) Activate(c *fiber.Ctx) error {
	clause, err := h.uc.SetClauseActive(c.Context(), GetUserID(c), c.Params("id"), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clause)
}

// GetByID obtiene una cláusula.
// GET /api/clauses/:id
func (h *ClauseHandler) GetByID(c *fiber.Ctx) error {
	clause, err := h.uc.GetClause(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clause)
}

// List lista el catálogo. Con ?active=true solo las asignables.
// GET /api/clauses
func (h *ClauseHandler) List(c *fiber.Ctx) error {
	clauses, err := h.uc.ListClauses(c.Context(), c.QueryBool("active"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(clauses)
}
