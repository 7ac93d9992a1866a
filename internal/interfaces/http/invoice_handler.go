package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/billing"
	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// InvoiceHandler maneja generación, ciclo de vida, exportes y reportes de
// facturas (protegido).
type InvoiceHandler struct {
	generate  *billing.GenerateInvoiceUseCase
	lifecycle *billing.InvoiceLifecycleUseCase
	export    *reports.ExportUseCase
	summary   *reports.SummaryUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	generate *billing.GenerateInvoiceUseCase,
	lifecycle *billing.InvoiceLifecycleUseCase,
	export *reports.ExportUseCase,
	summary *reports.SummaryUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{generate: generate, lifecycle: lifecycle, export: export, summary: summary}
}

// Generate ensambla una factura DRAFT consumiendo los tickets.
// POST /api/invoices/generate
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.generate.GenerateInvoice(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// Regenerate reconstruye las líneas de una factura DRAFT.
// POST /api/invoices/:id/regenerate
func (h *InvoiceHandler) Regenerate(c *fiber.Ctx) error {
	invoice, err := h.generate.RegenerateInvoice(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// UpdateStatus aplica una transición de estado.
// PATCH /api/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.lifecycle.UpdateStatus(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// GetByID obtiene una factura con sus líneas.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.generate.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// List lista facturas con filtros opcionales por query.
// GET /api/invoices?project=&period=&status=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	filter := repository.InvoiceFilter{
		ProjectName:   c.Query("project"),
		BillingPeriod: c.Query("period"),
		Status:        c.Query("status"),
	}
	invoices, err := h.generate.ListInvoices(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoices)
}

// Export genera el documento en el formato pedido.
// GET /api/invoices/:id/export/:format   (format: pdf | excel | xml)
func (h *InvoiceHandler) Export(c *fiber.Ctx) error {
	result, err := h.export.ExportInvoice(c.Context(), c.Params("id"), c.Params("format"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Send(result.Content)
}

// MonthlySummary devuelve el resumen agregado de un periodo.
// GET /api/reports/summary/:period   (period: YYYY-MM)
func (h *InvoiceHandler) MonthlySummary(c *fiber.Ctx) error {
	result, err := h.summary.MonthlySummary(c.Context(), c.Params("period"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
