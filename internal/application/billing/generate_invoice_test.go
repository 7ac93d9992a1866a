package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/AymanElMikh/bmw/internal/application/billing"
	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeClauseRepo struct {
	clauses    map[string]*entity.LegalClause
	referenced map[string]bool
}

func newFakeClauseRepo(clauses ...*entity.LegalClause) *fakeClauseRepo {
	r := &fakeClauseRepo{clauses: map[string]*entity.LegalClause{}, referenced: map[string]bool{}}
	for _, c := range clauses {
		r.clauses[c.ClauseID] = c
	}
	return r
}

func (r *fakeClauseRepo) Create(c *entity.LegalClause) error { r.clauses[c.ClauseID] = c; return nil }
func (r *fakeClauseRepo) Update(c *entity.LegalClause) error { r.clauses[c.ClauseID] = c; return nil }
func (r *fakeClauseRepo) GetByID(id string) (*entity.LegalClause, error) {
	return r.clauses[id], nil
}
func (r *fakeClauseRepo) ListActive() ([]*entity.LegalClause, error) {
	var out []*entity.LegalClause
	for _, c := range r.clauses {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}
func (r *fakeClauseRepo) ListAll() ([]*entity.LegalClause, error) {
	var out []*entity.LegalClause
	for _, c := range r.clauses {
		out = append(out, c)
	}
	return out, nil
}
func (r *fakeClauseRepo) SetActive(id string, active bool) error {
	if c := r.clauses[id]; c != nil {
		c.IsActive = active
	}
	return nil
}
func (r *fakeClauseRepo) IsReferenced(id string) (bool, error) { return r.referenced[id], nil }

type fakeTicketRepo struct {
	tickets map[string]*entity.Ticket
	// consumeShortfall simula una carrera: ConsumeAll consume n-1 filas.
	consumeShortfall bool
}

func newFakeTicketRepo(tickets ...*entity.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: map[string]*entity.Ticket{}}
	for _, t := range tickets {
		r.tickets[t.TicketID] = t
	}
	return r
}

func (r *fakeTicketRepo) GetByID(id string) (*entity.Ticket, error) { return r.tickets[id], nil }
func (r *fakeTicketRepo) GetByIDs(ids []string) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	for _, id := range ids {
		if t := r.tickets[id]; t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}
func (r *fakeTicketRepo) List() ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	for _, t := range r.tickets {
		out = append(out, t)
	}
	return out, nil
}
func (r *fakeTicketRepo) ListBillableUnconsumed(from, to time.Time) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	for _, t := range r.tickets {
		if t.IsBillable && t.InvoiceID == nil && t.ResolvedAt != nil &&
			!t.ResolvedAt.Before(from) && !t.ResolvedAt.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}
func (r *fakeTicketRepo) Upsert(t *entity.Ticket) (bool, error) {
	if existing := r.tickets[t.TicketID]; existing != nil && existing.InvoiceID != nil {
		return false, nil
	}
	r.tickets[t.TicketID] = t
	return true, nil
}
func (r *fakeTicketRepo) ConsumeAll(ids []string, invoiceID string) (int64, error) {
	if r.consumeShortfall {
		return int64(len(ids)) - 1, nil
	}
	var n int64
	for _, id := range ids {
		if t := r.tickets[id]; t != nil && t.InvoiceID == nil {
			inv := invoiceID
			t.InvoiceID = &inv
			n++
		}
	}
	return n, nil
}
func (r *fakeTicketRepo) ReleaseByInvoice(invoiceID string) error {
	for _, t := range r.tickets {
		if t.InvoiceID != nil && *t.InvoiceID == invoiceID {
			t.InvoiceID = nil
		}
	}
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	lines    map[string][]*entity.InvoiceLine
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}, lines: map[string][]*entity.InvoiceLine{}}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	for _, existing := range r.invoices {
		if existing.ProjectName == inv.ProjectName &&
			existing.BillingPeriod == inv.BillingPeriod &&
			existing.Status != entity.InvoiceStatusCancelled {
			return domain.ErrDuplicate
		}
	}
	clone := *inv
	clone.Lines = nil
	r.invoices[inv.InvoiceID] = &clone
	return nil
}
func (r *fakeInvoiceRepo) CreateLine(l *entity.InvoiceLine) error {
	r.lines[l.InvoiceID] = append(r.lines[l.InvoiceID], l)
	return nil
}
func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) { return r.invoices[id], nil }
func (r *fakeInvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	return r.lines[invoiceID], nil
}
func (r *fakeInvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if filter.BillingPeriod != "" && inv.BillingPeriod != filter.BillingPeriod {
			continue
		}
		if filter.ProjectName != "" && inv.ProjectName != filter.ProjectName {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}
func (r *fakeInvoiceRepo) GetActiveByProjectAndPeriod(project, period string) (*entity.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.ProjectName == project && inv.BillingPeriod == period &&
			inv.Status != entity.InvoiceStatusCancelled {
			return inv, nil
		}
	}
	return nil, nil
}
func (r *fakeInvoiceRepo) GetByIDForUpdate(id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}
func (r *fakeInvoiceRepo) UpdateStatus(inv *entity.Invoice) error {
	if stored := r.invoices[inv.InvoiceID]; stored != nil {
		stored.Status = inv.Status
	}
	return nil
}
func (r *fakeInvoiceRepo) UpdateTotals(inv *entity.Invoice) error {
	if stored := r.invoices[inv.InvoiceID]; stored != nil {
		stored.TotalAmount = inv.TotalAmount
	}
	return nil
}
func (r *fakeInvoiceRepo) DeleteLinesByInvoiceID(invoiceID string) error {
	delete(r.lines, invoiceID)
	return nil
}

type fakeAuditRepo struct {
	records []*entity.AuditLog
}

func (r *fakeAuditRepo) Record(l *entity.AuditLog) error { r.records = append(r.records, l); return nil }
func (r *fakeAuditRepo) List(repository.AuditFilter) ([]*entity.AuditLog, error) {
	return r.records, nil
}

// fakeTxRunner pasa los mismos fakes al callback (sin transaccionalidad real).
type fakeTxRunner struct {
	tickets  *fakeTicketRepo
	invoices *fakeInvoiceRepo
}

func (r *fakeTxRunner) RunBilling(_ context.Context, fn func(
	ticketRepo repository.TicketRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(r.tickets, r.invoices)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	clauses  *fakeClauseRepo
	tickets  *fakeTicketRepo
	invoices *fakeInvoiceRepo
	audit    *fakeAuditRepo
	generate *appbilling.GenerateInvoiceUseCase
	cycle    *appbilling.InvoiceLifecycleUseCase
}

func newFixture(t *testing.T, tickets ...*entity.Ticket) *fixture {
	t.Helper()
	f := &fixture{
		clauses: newFakeClauseRepo(
			demoClause("FLASH_001", "85.00"),
			demoClause("FLASH_002", "95.00"),
		),
		tickets:  newFakeTicketRepo(tickets...),
		invoices: newFakeInvoiceRepo(),
		audit:    &fakeAuditRepo{},
	}
	runner := &fakeTxRunner{tickets: f.tickets, invoices: f.invoices}
	f.generate = appbilling.NewGenerateInvoiceUseCase(runner, f.clauses, f.tickets, f.invoices, f.audit, nil)
	f.cycle = appbilling.NewInvoiceLifecycleUseCase(runner, f.audit, nil)
	return f
}

func demoClause(id, price string) *entity.LegalClause {
	return &entity.LegalClause{
		ClauseID:   id,
		ClauseName: "Cláusula " + id,
		UnitPrice:  decimal.RequireFromString(price),
		Currency:   entity.CurrencyEUR,
		IsActive:   true,
	}
}

func demoTicket(id string, hours float64, clauseID string) *entity.Ticket {
	resolved := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)
	cid := clauseID
	return &entity.Ticket{
		TicketID:    id,
		Summary:     "ticket " + id,
		Status:      entity.TicketStatusClosed,
		HoursWorked: decimal.NewFromFloat(hours),
		Labels:      []string{clauseID},
		ResolvedAt:  &resolved,
		ClauseID:    &cid,
		IsBillable:  true,
	}
}

func generateRequest() dto.GenerateInvoiceRequest {
	return dto.GenerateInvoiceRequest{
		ProjectName:   "SEGUROS-CORE",
		BillingPeriod: "2026-07",
		Currency:      entity.CurrencyEUR,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GenerateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateInvoice_ConsumeTicketsYPersiste(t *testing.T) {
	f := newFixture(t,
		demoTicket("BMW-1", 10.0, "FLASH_001"),
		demoTicket("BMW-2", 5.5, "FLASH_001"),
		demoTicket("BMW-3", 3.0, "FLASH_002"),
	)

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)

	assert.Equal(t, "1602.50", inv.TotalAmount.StringFixed(2))
	require.Len(t, inv.Lines, 2)

	// Los tres tickets quedan consumidos por esta factura.
	for _, id := range []string{"BMW-1", "BMW-2", "BMW-3"} {
		tk := f.tickets.tickets[id]
		require.NotNil(t, tk.InvoiceID, "ticket %s debe quedar consumido", id)
		assert.Equal(t, inv.InvoiceID, *tk.InvoiceID)
	}

	// Audit post-commit.
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, entity.AuditActionInvoiceGenerated, f.audit.records[0].Action)
}

func TestGenerateInvoice_PeriodoYaFacturado_Conflicto(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	_, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)

	// Reponer un ticket libre: el conflicto debe venir del periodo, no del pool.
	f.tickets.tickets["BMW-9"] = demoTicket("BMW-9", 1.0, "FLASH_001")

	_, err = f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	var overlap *domainbilling.OverlappingPeriodError
	require.ErrorAs(t, err, &overlap, "segunda factura del mismo (proyecto, periodo) debe rechazarse")
	assert.Equal(t, "2026-07", overlap.BillingPeriod)
}

func TestGenerateInvoice_FacturaCanceladaNoBloqueaElPeriodo(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	first, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)

	_, err = f.cycle.UpdateStatus(context.Background(), "user-1", first.InvoiceID,
		dto.UpdateInvoiceStatusRequest{Status: entity.InvoiceStatusCancelled})
	require.NoError(t, err)

	second, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err, "cancelar libera el periodo y los tickets")
	assert.NotEqual(t, first.InvoiceID, second.InvoiceID)
}

func TestGenerateInvoice_CarreraDeConsumo_Abortada(t *testing.T) {
	f := newFixture(t,
		demoTicket("BMW-1", 10.0, "FLASH_001"),
		demoTicket("BMW-2", 5.5, "FLASH_001"),
	)
	f.tickets.consumeShortfall = true

	_, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())

	var consumed *domainbilling.AlreadyConsumedTicketError
	require.ErrorAs(t, err, &consumed,
		"si ConsumeAll no alcanza a todos los tickets otro ensamblado ganó la carrera")
	assert.Empty(t, f.audit.records, "una operación abortada no deja rastro de auditoría")
}

func TestGenerateInvoice_SeleccionExplicita_IdInexistente(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	req := generateRequest()
	req.TicketIDs = []string{"BMW-1", "NO-EXISTE"}
	_, err := f.generate.GenerateInvoice(context.Background(), "user-1", req)

	var validation *domainbilling.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Reasons[0], "NO-EXISTE")
}

func TestGenerateInvoice_SinTicketsEnElPeriodo(t *testing.T) {
	f := newFixture(t) // pool vacío

	_, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())

	var empty *domainbilling.EmptySelectionError
	require.ErrorAs(t, err, &empty)
}

func TestGenerateInvoice_PeriodoMalformado(t *testing.T) {
	f := newFixture(t)

	req := generateRequest()
	req.BillingPeriod = "julio-2026"
	_, err := f.generate.GenerateInvoice(context.Background(), "user-1", req)

	var validation *domainbilling.ValidationError
	require.ErrorAs(t, err, &validation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RegenerateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestRegenerateInvoice_DraftRecalculaConElPoolActual(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)
	assert.Equal(t, "850.00", inv.TotalAmount.StringFixed(2))

	// Aparece un ticket nuevo del mismo periodo (corrección tardía de horas).
	f.tickets.tickets["BMW-2"] = demoTicket("BMW-2", 2.0, "FLASH_001")

	regen, err := f.generate.RegenerateInvoice(context.Background(), "user-1", inv.InvoiceID)
	require.NoError(t, err)

	assert.Equal(t, inv.InvoiceID, regen.InvoiceID, "la regeneración conserva la identidad")
	assert.Equal(t, "1020.00", regen.TotalAmount.StringFixed(2), "12h x 85.00")
	require.Len(t, regen.Lines, 1)
	assert.Equal(t, []string{"BMW-1", "BMW-2"}, regen.Lines[0].TicketIDs)
}

func TestRegenerateInvoice_FueraDeDraft_Prohibida(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)
	_, err = f.cycle.UpdateStatus(context.Background(), "user-1", inv.InvoiceID,
		dto.UpdateInvoiceStatusRequest{Status: entity.InvoiceStatusSent})
	require.NoError(t, err)

	_, err = f.generate.RegenerateInvoice(context.Background(), "user-1", inv.InvoiceID)

	var invalid *domainbilling.InvalidTransitionError
	require.ErrorAs(t, err, &invalid, "las líneas quedan congeladas fuera de DRAFT")
}

func TestRegenerateInvoice_FacturaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.generate.RegenerateInvoice(context.Background(), "user-1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests UpdateStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_CancelarLiberaLosTickets(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)
	require.NotNil(t, f.tickets.tickets["BMW-1"].InvoiceID)

	_, err = f.cycle.UpdateStatus(context.Background(), "user-1", inv.InvoiceID,
		dto.UpdateInvoiceStatusRequest{Status: entity.InvoiceStatusCancelled})
	require.NoError(t, err)

	assert.Nil(t, f.tickets.tickets["BMW-1"].InvoiceID,
		"la cancelación devuelve los tickets al pool facturable")
}

func TestUpdateStatus_EnviarNoLiberaTickets(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)

	resp, err := f.cycle.UpdateStatus(context.Background(), "user-1", inv.InvoiceID,
		dto.UpdateInvoiceStatusRequest{Status: entity.InvoiceStatusSent})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusSent, resp.Status)
	assert.NotNil(t, f.tickets.tickets["BMW-1"].InvoiceID, "enviar no toca el consumo")
}

func TestUpdateStatus_TransicionInvalida(t *testing.T) {
	f := newFixture(t, demoTicket("BMW-1", 10.0, "FLASH_001"))

	inv, err := f.generate.GenerateInvoice(context.Background(), "user-1", generateRequest())
	require.NoError(t, err)

	_, err = f.cycle.UpdateStatus(context.Background(), "user-1", inv.InvoiceID,
		dto.UpdateInvoiceStatusRequest{Status: entity.InvoiceStatusPaid})

	var invalid *domainbilling.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}
