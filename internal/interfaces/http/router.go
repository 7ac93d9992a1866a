package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AymanElMikh/bmw/internal/application/auth"
	"github.com/AymanElMikh/bmw/internal/application/billing"
	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/application/tickets"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	ClauseUC   *billing.ClauseUseCase
	GenerateUC *billing.GenerateInvoiceUseCase
	Lifecycle  *billing.InvoiceLifecycleUseCase
	SyncUC     *tickets.SyncUseCase
	ExportUC   *reports.ExportUseCase
	SummaryUC  *reports.SummaryUseCase
	AuditRepo  repository.AuditRepository
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/users", RequireRole(entity.RoleAdmin), authHandler.ListUsers)

	// La escritura queda restringida a quien opera la facturación; la
	// lectura es libre para cualquier usuario autenticado.
	billingRoles := RequireRole(entity.RoleAdmin, entity.RoleProjectLeader)

	// Clauses (catálogo de tarifas)
	clauses := protected.Group("/clauses")
	clauseHandler := NewClauseHandler(deps.ClauseUC)
	clauses.Get("/", clauseHandler.List)
	clauses.Get("/:id", clauseHandler.GetByID)
	clauses.Post("/", RequireRole(entity.RoleAdmin), clauseHandler.Create)
	clauses.Put("/:id", RequireRole(entity.RoleAdmin), clauseHandler.Update)
	clauses.Post("/:id/deactivate", RequireRole(entity.RoleAdmin), clauseHandler.Deactivate)
	clauses.Post("/:id/activate", RequireRole(entity.RoleAdmin), clauseHandler.Activate)

	// Tickets (sincronización y revisión)
	ticketsGroup := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.SyncUC)
	ticketsGroup.Get("/", ticketHandler.List)
	ticketsGroup.Get("/:id", ticketHandler.GetByID)
	ticketsGroup.Post("/sync", billingRoles, ticketHandler.Sync)

	// Invoices (generación, ciclo de vida, exportes)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.GenerateUC, deps.Lifecycle, deps.ExportUC, deps.SummaryUC)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/export/:format", invoiceHandler.Export)
	invoices.Post("/generate", billingRoles, invoiceHandler.Generate)
	invoices.Post("/:id/regenerate", billingRoles, invoiceHandler.Regenerate)
	invoices.Patch("/:id/status", billingRoles, invoiceHandler.UpdateStatus)

	// Reports
	reportsGroup := protected.Group("/reports")
	reportsGroup.Get("/summary/:period", invoiceHandler.MonthlySummary)

	// Audit log (solo ADMIN)
	auditHandler := NewAuditHandler(deps.AuditRepo)
	protected.Get("/audit", RequireRole(entity.RoleAdmin), auditHandler.List)
}
