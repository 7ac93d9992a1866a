package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AymanElMikh/bmw/internal/application/auth"
	"github.com/AymanElMikh/bmw/internal/application/billing"
	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/application/tickets"
	infraexcel "github.com/AymanElMikh/bmw/internal/infrastructure/excel"
	infrajira "github.com/AymanElMikh/bmw/internal/infrastructure/jira"
	infrapdf "github.com/AymanElMikh/bmw/internal/infrastructure/pdf"
	"github.com/AymanElMikh/bmw/internal/infrastructure/postgres"
	infrasapxml "github.com/AymanElMikh/bmw/internal/infrastructure/sapxml"
	httpRouter "github.com/AymanElMikh/bmw/internal/interfaces/http"
	"github.com/AymanElMikh/bmw/pkg/config"
	"github.com/AymanElMikh/bmw/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	clauseRepo := postgres.NewClauseRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	generateUC := billing.NewGenerateInvoiceUseCase(txRunner, clauseRepo, ticketRepo, invoiceRepo, auditRepo, log)
	lifecycleUC := billing.NewInvoiceLifecycleUseCase(txRunner, auditRepo, log)
	clauseUC := billing.NewClauseUseCase(clauseRepo, auditRepo, log)

	jiraClient := infrajira.NewClient(cfg.Jira)
	syncUC := tickets.NewSyncUseCase(jiraClient, clauseRepo, ticketRepo, auditRepo, log)

	pdfGen := infrapdf.NewMarotoPDFGenerator()
	excelGen := infraexcel.NewGenerator()
	xmlBuilder := infrasapxml.NewBuilder()
	exportUC := reports.NewExportUseCase(invoiceRepo, clauseRepo, pdfGen, excelGen, xmlBuilder)
	summaryUC := reports.NewSummaryUseCase(invoiceRepo)

	authUC := auth.NewUseCase(userRepo, cfg.JWT)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ClauseUC:   clauseUC,
		GenerateUC: generateUC,
		Lifecycle:  lifecycleUC,
		SyncUC:     syncUC,
		ExportUC:   exportUC,
		SummaryUC:  summaryUC,
		AuditRepo:  auditRepo,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servidor detenido")
}
