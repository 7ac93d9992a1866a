// seed crea el esquema de la base y carga datos de demostración: cláusulas
// de la tarjeta de tarifas, un usuario administrador y tickets de ejemplo ya
// clasificados.
//
// Uso: go run ./cmd/seed
// Lee la configuración de la base de las mismas variables de entorno que la API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/infrastructure/postgres"
	"github.com/AymanElMikh/bmw/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id        TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	role           TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS legal_clauses (
	clause_id      TEXT PRIMARY KEY,
	clause_name    TEXT NOT NULL,
	description    TEXT,
	unit_price     NUMERIC(12,2) NOT NULL,
	currency       TEXT NOT NULL,
	effective_date TIMESTAMPTZ NOT NULL,
	created_by     TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS invoices (
	invoice_id     TEXT PRIMARY KEY,
	project_name   TEXT NOT NULL,
	billing_period TEXT NOT NULL,
	currency       TEXT NOT NULL,
	total_amount   NUMERIC(14,2) NOT NULL,
	status         TEXT NOT NULL,
	created_by     TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

-- Una sola factura viva por (proyecto, periodo): las canceladas no bloquean.
CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_project_period_active
	ON invoices (project_name, billing_period)
	WHERE status <> 'CANCELLED';

CREATE TABLE IF NOT EXISTS invoice_lines (
	line_id    TEXT PRIMARY KEY,
	invoice_id TEXT NOT NULL REFERENCES invoices(invoice_id) ON DELETE CASCADE,
	clause_id  TEXT NOT NULL REFERENCES legal_clauses(clause_id),
	ticket_ids TEXT[] NOT NULL,
	hours      NUMERIC(10,2) NOT NULL,
	unit_price NUMERIC(12,2) NOT NULL,
	line_total NUMERIC(14,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
	ticket_id         TEXT PRIMARY KEY,
	summary           TEXT NOT NULL,
	description       TEXT,
	status            TEXT NOT NULL,
	hours_worked      NUMERIC(10,2) NOT NULL DEFAULT 0,
	labels            TEXT[] NOT NULL DEFAULT '{}',
	assignee          TEXT,
	resolved_at       TIMESTAMPTZ,
	clause_id         TEXT REFERENCES legal_clauses(clause_id),
	is_billable       BOOLEAN NOT NULL DEFAULT FALSE,
	billable_amount   NUMERIC(14,2) NOT NULL DEFAULT 0,
	unbillable_reason TEXT,
	invoice_id        TEXT REFERENCES invoices(invoice_id),
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_billable_pool
	ON tickets (resolved_at) WHERE is_billable AND invoice_id IS NULL;

CREATE TABLE IF NOT EXISTS audit_logs (
	log_id    BIGSERIAL PRIMARY KEY,
	user_id   TEXT NOT NULL,
	action    TEXT NOT NULL,
	details   TEXT,
	timestamp TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs (timestamp DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		fail("crear esquema: %v", err)
	}
	fmt.Println("esquema creado")

	now := time.Now().UTC()

	// Usuario administrador de demo
	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		fail("hashear password: %v", err)
	}
	adminID := uuid.NewString()
	userRepo := postgres.NewUserRepository(pool)
	if existing, err := userRepo.GetByEmail("admin@example.com"); err != nil {
		fail("consultar usuario: %v", err)
	} else if existing == nil {
		err := userRepo.Create(&entity.User{
			UserID:       adminID,
			Name:         "Admin",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Role:         entity.RoleAdmin,
			CreatedAt:    now,
		})
		if err != nil {
			fail("crear admin: %v", err)
		}
		fmt.Println("usuario admin@example.com creado (password: admin12345)")
	} else {
		adminID = existing.UserID
	}

	// Cláusulas de la tarjeta de tarifas
	clauseRepo := postgres.NewClauseRepository(pool)
	clauses := []*entity.LegalClause{
		{
			ClauseID:    "FLASH_001",
			ClauseName:  "Soporte correctivo estándar",
			Description: "Incidencias de severidad media resueltas en horario laboral",
			UnitPrice:   decimal.NewFromFloat(85.00),
		},
		{
			ClauseID:    "FLASH_002",
			ClauseName:  "Soporte correctivo urgente",
			Description: "Incidencias de severidad alta con SLA de 4 horas",
			UnitPrice:   decimal.NewFromFloat(95.00),
		},
		{
			ClauseID:    "MAINT_001",
			ClauseName:  "Mantenimiento preventivo",
			Description: "Tareas planificadas de mantenimiento y actualización",
			UnitPrice:   decimal.NewFromFloat(70.00),
		},
	}
	for _, c := range clauses {
		c.Currency = entity.CurrencyEUR
		c.EffectiveDate = now.AddDate(0, -6, 0)
		c.CreatedBy = adminID
		c.CreatedAt = now
		c.IsActive = true
		if existing, err := clauseRepo.GetByID(c.ClauseID); err != nil {
			fail("consultar cláusula: %v", err)
		} else if existing == nil {
			if err := clauseRepo.Create(c); err != nil {
				fail("crear cláusula %s: %v", c.ClauseID, err)
			}
			fmt.Printf("cláusula %s creada (%s EUR/h)\n", c.ClauseID, c.UnitPrice.StringFixed(2))
		}
	}

	// Tickets de demo del mes anterior, ya clasificados por el motor
	catalogClauses, err := clauseRepo.ListAll()
	if err != nil {
		fail("cargar catálogo: %v", err)
	}
	catalog := domainbilling.NewCatalog(catalogClauses)

	lastMonth := now.AddDate(0, -1, 0)
	resolved := time.Date(lastMonth.Year(), lastMonth.Month(), 15, 10, 0, 0, 0, time.UTC)
	demo := []*entity.Ticket{
		{TicketID: "BMW-101", Summary: "Error al guardar expediente", Status: entity.TicketStatusClosed, HoursWorked: decimal.NewFromFloat(10.0), Labels: []string{"FLASH_001"}, Assignee: "dev1"},
		{TicketID: "BMW-102", Summary: "Timeout en consulta de pólizas", Status: entity.TicketStatusClosed, HoursWorked: decimal.NewFromFloat(5.5), Labels: []string{"FLASH_001"}, Assignee: "dev2"},
		{TicketID: "BMW-103", Summary: "Caída del servicio de informes", Status: entity.TicketStatusClosed, HoursWorked: decimal.NewFromFloat(3.0), Labels: []string{"FLASH_002", "urgent"}, Assignee: "dev1"},
		{TicketID: "BMW-104", Summary: "Actualización de certificados", Status: entity.TicketStatusClosed, HoursWorked: decimal.NewFromFloat(2.0), Labels: []string{"internal"}, Assignee: "dev3"},
		{TicketID: "BMW-105", Summary: "Consulta sin resolver", Status: entity.TicketStatusOpen, HoursWorked: decimal.NewFromFloat(1.0), Labels: []string{"FLASH_001"}},
	}
	ticketRepo := postgres.NewTicketRepository(pool)
	for _, t := range demo {
		t.ResolvedAt = &resolved
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := domainbilling.Classify(t, catalog); err != nil {
			// los no mapeables quedan marcados no facturables; basta con avisar
			fmt.Printf("ticket %s: %v\n", t.TicketID, err)
		}
		if _, err := ticketRepo.Upsert(t); err != nil {
			fail("insertar ticket %s: %v", t.TicketID, err)
		}
	}
	fmt.Printf("%d tickets de demo cargados\n", len(demo))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
