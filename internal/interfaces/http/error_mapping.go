package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	"github.com/AymanElMikh/bmw/internal/domain/billing"
)

// respondError traduce la taxonomía de errores del motor a respuestas HTTP.
// Los errores tipados llevan los identificadores ofensores en Details.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validation  *billing.ValidationError
		invalidData *billing.InvalidTicketDataError
		unmapped    *billing.UnmappedTicketError
		empty       *billing.EmptySelectionError
		overlap     *billing.OverlappingPeriodError
		consumed    *billing.AlreadyConsumedTicketError
		transition  *billing.InvalidTransitionError
		consistency *billing.ConsistencyError
	)
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "selección inválida", Details: validation.Reasons,
		})
	case errors.As(err, &invalidData):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "INVALID_TICKET_DATA", Message: invalidData.Error(), Details: []string{invalidData.TicketID},
		})
	case errors.As(err, &unmapped):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "UNMAPPED_TICKET", Message: unmapped.Error(), Details: []string{unmapped.TicketID},
		})
	case errors.As(err, &empty):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "EMPTY_SELECTION", Message: empty.Error(),
		})
	case errors.As(err, &overlap):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "OVERLAPPING_PERIOD", Message: overlap.Error(), Details: []string{overlap.InvoiceID},
		})
	case errors.As(err, &consumed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "TICKET_ALREADY_CONSUMED", Message: consumed.Error(), Details: consumed.TicketIDs,
		})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INVALID_TRANSITION", Message: transition.Error(),
		})
	case errors.As(err, &consistency):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "CONSISTENCY", Message: consistency.Error(),
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: "recurso no encontrado",
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "EMAIL_EXISTS", Message: "el email ya está registrado",
		})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "DUPLICATE", Message: err.Error(),
		})
	case errors.Is(err, domain.ErrClauseReferenced):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "CLAUSE_REFERENCED", Message: "la cláusula tiene facturas emitidas; el precio es inmutable",
		})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "credenciales inválidas",
		})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "acceso denegado",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
}
