package tickets_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/application/tickets"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	fetched []*entity.Ticket
	err     error
}

func (s *fakeSource) FetchTickets(context.Context, tickets.SourceQuery) ([]*entity.Ticket, error) {
	return s.fetched, s.err
}

type stubClauseRepo struct {
	clauses []*entity.LegalClause
}

func (r *stubClauseRepo) Create(*entity.LegalClause) error                { return nil }
func (r *stubClauseRepo) Update(*entity.LegalClause) error                { return nil }
func (r *stubClauseRepo) GetByID(string) (*entity.LegalClause, error)     { return nil, nil }
func (r *stubClauseRepo) ListActive() ([]*entity.LegalClause, error)      { return r.clauses, nil }
func (r *stubClauseRepo) ListAll() ([]*entity.LegalClause, error)         { return r.clauses, nil }
func (r *stubClauseRepo) SetActive(string, bool) error                    { return nil }
func (r *stubClauseRepo) IsReferenced(string) (bool, error)               { return false, nil }

type stubTicketRepo struct {
	stored   map[string]*entity.Ticket
	consumed map[string]bool
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{stored: map[string]*entity.Ticket{}, consumed: map[string]bool{}}
}

func (r *stubTicketRepo) GetByID(id string) (*entity.Ticket, error)       { return r.stored[id], nil }
func (r *stubTicketRepo) GetByIDs([]string) ([]*entity.Ticket, error)     { return nil, nil }
func (r *stubTicketRepo) List() ([]*entity.Ticket, error)                 { return nil, nil }
func (r *stubTicketRepo) ListBillableUnconsumed(time.Time, time.Time) ([]*entity.Ticket, error) {
	return nil, nil
}
func (r *stubTicketRepo) Upsert(t *entity.Ticket) (bool, error) {
	if r.consumed[t.TicketID] {
		return false, nil
	}
	r.stored[t.TicketID] = t
	return true, nil
}
func (r *stubTicketRepo) ConsumeAll([]string, string) (int64, error) { return 0, nil }
func (r *stubTicketRepo) ReleaseByInvoice(string) error              { return nil }

type stubAuditRepo struct {
	records []*entity.AuditLog
}

func (r *stubAuditRepo) Record(l *entity.AuditLog) error { r.records = append(r.records, l); return nil }
func (r *stubAuditRepo) List(repository.AuditFilter) ([]*entity.AuditLog, error) { return nil, nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

func syncRequest() dto.SyncTicketsRequest {
	return dto.SyncTicketsRequest{
		ProjectKey:  "BMW",
		PeriodStart: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	}
}

func fetchedTicket(id string, hours float64, labels ...string) *entity.Ticket {
	resolved := time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)
	return &entity.Ticket{
		TicketID:    id,
		Summary:     "ticket " + id,
		Status:      entity.TicketStatusClosed,
		HoursWorked: decimal.NewFromFloat(hours),
		Labels:      labels,
		ResolvedAt:  &resolved,
	}
}

func newSyncFixture(source *fakeSource) (*tickets.SyncUseCase, *stubTicketRepo, *stubAuditRepo) {
	clauseRepo := &stubClauseRepo{clauses: []*entity.LegalClause{{
		ClauseID:   "FLASH_001",
		ClauseName: "Soporte estándar",
		UnitPrice:  decimal.RequireFromString("85.00"),
		Currency:   entity.CurrencyEUR,
		IsActive:   true,
	}}}
	ticketRepo := newStubTicketRepo()
	auditRepo := &stubAuditRepo{}
	uc := tickets.NewSyncUseCase(source, clauseRepo, ticketRepo, auditRepo, nil)
	return uc, ticketRepo, auditRepo
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Sync
// ──────────────────────────────────────────────────────────────────────────────

func TestSync_ClasificaYPersiste(t *testing.T) {
	uc, repo, audit := newSyncFixture(&fakeSource{fetched: []*entity.Ticket{
		fetchedTicket("BMW-1", 10.0, "FLASH_001"),
		fetchedTicket("BMW-2", 2.0, "internal"), // sin cláusula: excluido
	}})

	resp, err := uc.Sync(context.Background(), "user-1", syncRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.BillableCount)
	assert.Equal(t, 1, resp.ExcludedCount)
	assert.Equal(t, []string{"BMW-2"}, resp.ExcludedIDs)

	stored := repo.stored["BMW-1"]
	require.NotNil(t, stored)
	assert.True(t, stored.IsBillable)
	assert.Equal(t, "850.00", stored.BillableAmount.StringFixed(2))

	excluded := repo.stored["BMW-2"]
	require.NotNil(t, excluded, "el excluido también se persiste, visible para corrección")
	assert.False(t, excluded.IsBillable)
	assert.NotEmpty(t, excluded.UnbillableReason)

	require.Len(t, audit.records, 1)
	assert.Equal(t, entity.AuditActionTicketSync, audit.records[0].Action)
}

func TestSync_TicketConsumidoNoSeToca(t *testing.T) {
	uc, repo, _ := newSyncFixture(&fakeSource{fetched: []*entity.Ticket{
		fetchedTicket("BMW-1", 10.0, "FLASH_001"),
	}})
	repo.consumed["BMW-1"] = true

	resp, err := uc.Sync(context.Background(), "user-1", syncRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"BMW-1"}, resp.SkippedIDs,
		"un refetch jamás re-factura un ticket ya consumido")
	assert.Zero(t, resp.BillableCount)
	assert.Nil(t, repo.stored["BMW-1"])
}

func TestSync_HorasCorruptas_AbortaSinPersistir(t *testing.T) {
	bad := fetchedTicket("BMW-9", 0, "FLASH_001")
	bad.HoursWorked = decimal.NewFromFloat(-4)
	uc, repo, audit := newSyncFixture(&fakeSource{fetched: []*entity.Ticket{
		fetchedTicket("BMW-1", 10.0, "FLASH_001"),
		bad,
	}})

	_, err := uc.Sync(context.Background(), "user-1", syncRequest())

	var invalid *domainbilling.InvalidTicketDataError
	require.ErrorAs(t, err, &invalid, "datos corruptos rechazan el sync entero")
	assert.Empty(t, repo.stored, "nada se persiste si un ticket trae datos corruptos")
	assert.Empty(t, audit.records)
}

func TestSync_ProjectKeyInvalido(t *testing.T) {
	uc, _, _ := newSyncFixture(&fakeSource{})

	req := syncRequest()
	req.ProjectKey = "bmw-01"
	_, err := uc.Sync(context.Background(), "user-1", req)

	var validation *domainbilling.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSync_RangoInvertido(t *testing.T) {
	uc, _, _ := newSyncFixture(&fakeSource{})

	req := syncRequest()
	req.PeriodStart, req.PeriodEnd = req.PeriodEnd, req.PeriodStart
	_, err := uc.Sync(context.Background(), "user-1", req)

	var validation *domainbilling.ValidationError
	require.ErrorAs(t, err, &validation)
}
