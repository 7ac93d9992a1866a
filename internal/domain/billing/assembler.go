package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// Ensamblador de facturas: función pura sobre el snapshot de tickets y
// catálogo. La persistencia, el consumo de tickets y el audit quedan en la
// capa de aplicación; aquí solo viven las reglas de agrupado, cálculo y
// redondeo.

// AssembleInput parámetros del ensamblado.
type AssembleInput struct {
	ProjectName string
	Period      Period
	Tickets     []*entity.Ticket // selección ya resuelta (explícita o todos los facturables del periodo)
	Catalog     Catalog
	Currency    string
	CreatedBy   string
	Now         time.Time
}

// Assemble valida la selección completa y construye la factura en DRAFT.
// Todo-o-nada: si cualquier ticket falla la validación se rechaza la
// operación entera; las facturas parciales están prohibidas.
//
// Redondeo: una sola vez por línea (half-even a 2 decimales), nunca por
// ticket, para evitar deriva acumulada. El total es la suma exacta de las
// líneas ya redondeadas.
func Assemble(in AssembleInput) (*entity.Invoice, error) {
	if in.ProjectName == "" {
		return nil, &ValidationError{Reasons: []string{"project_name requerido"}}
	}
	if in.Period.IsZero() {
		return nil, &ValidationError{Reasons: []string{"periodo de facturación requerido"}}
	}
	if len(in.Tickets) == 0 {
		return nil, &EmptySelectionError{ProjectName: in.ProjectName, BillingPeriod: in.Period.String()}
	}

	var reasons []string
	var consumed []string
	for _, t := range in.Tickets {
		if err := ValidateTicketData(t); err != nil {
			return nil, err
		}
		if t.IsConsumed() {
			consumed = append(consumed, t.TicketID)
			continue
		}
		if !t.IsBillable {
			reasons = append(reasons, fmt.Sprintf("ticket %s no es facturable (%s)", t.TicketID, nonEmptyReason(t.UnbillableReason)))
			continue
		}
		if t.ClauseID == nil || *t.ClauseID == "" {
			reasons = append(reasons, fmt.Sprintf("ticket %s facturable pero sin cláusula asignada", t.TicketID))
			continue
		}
		if in.Catalog.Get(*t.ClauseID) == nil {
			reasons = append(reasons, fmt.Sprintf("ticket %s referencia la cláusula desconocida %s", t.TicketID, *t.ClauseID))
			continue
		}
		if t.ResolvedAt == nil || !in.Period.Contains(*t.ResolvedAt) {
			reasons = append(reasons, fmt.Sprintf("ticket %s resuelto fuera del periodo %s", t.TicketID, in.Period))
		}
	}
	// Consumidos primero: es el conflicto más específico y el que el caller
	// concurrente necesita distinguir.
	if len(consumed) > 0 {
		sort.Strings(consumed)
		return nil, &AlreadyConsumedTicketError{TicketIDs: consumed}
	}
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	// Agrupar por cláusula. Las líneas se emiten en orden lexicográfico de
	// clause_id y los tickets dentro de cada línea por ticket_id: mismo input,
	// misma factura (idempotencia del reensamblado en DRAFT).
	byClause := make(map[string][]*entity.Ticket)
	for _, t := range in.Tickets {
		byClause[*t.ClauseID] = append(byClause[*t.ClauseID], t)
	}
	clauseIDs := make([]string, 0, len(byClause))
	for id := range byClause {
		clauseIDs = append(clauseIDs, id)
	}
	sort.Strings(clauseIDs)

	invoiceID := uuid.New().String()
	inv := &entity.Invoice{
		InvoiceID:     invoiceID,
		ProjectName:   in.ProjectName,
		BillingPeriod: in.Period.String(),
		Currency:      in.Currency,
		Status:        entity.InvoiceStatusDraft,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     in.Now,
	}

	total := decimal.Zero
	for _, clauseID := range clauseIDs {
		group := byClause[clauseID]
		sort.Slice(group, func(i, j int) bool { return group[i].TicketID < group[j].TicketID })

		hours := decimal.Zero
		ticketIDs := make([]string, 0, len(group))
		for _, t := range group {
			hours = hours.Add(t.HoursWorked)
			ticketIDs = append(ticketIDs, t.TicketID)
		}
		unitPrice := in.Catalog.Get(clauseID).UnitPrice
		line := &entity.InvoiceLine{
			LineID:    uuid.New().String(),
			InvoiceID: invoiceID,
			ClauseID:  clauseID,
			TicketIDs: ticketIDs,
			Hours:     hours,
			UnitPrice: unitPrice,
			LineTotal: ComputeAmount(hours, unitPrice),
		}
		inv.Lines = append(inv.Lines, line)
		total = total.Add(line.LineTotal)
	}
	inv.TotalAmount = total

	// Verificación de invariante antes de entregar al caller: el total debe
	// ser exactamente la suma de las líneas. Si no, nada se persiste.
	if err := CheckInvariants(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CheckInvariants verifica las invariantes numéricas de una factura ya
// construida: total == suma de líneas y cada línea == horas x precio
// redondeado. Violación => ConsistencyError (fatal, abortar sin persistir).
func CheckInvariants(inv *entity.Invoice) error {
	if sum := inv.SumLines(); !inv.TotalAmount.Equal(sum) {
		return &ConsistencyError{
			InvoiceID: inv.InvoiceID,
			Detail:    fmt.Sprintf("total %s != suma de líneas %s", inv.TotalAmount, sum),
		}
	}
	for _, l := range inv.Lines {
		if expect := ComputeAmount(l.Hours, l.UnitPrice); !l.LineTotal.Equal(expect) {
			return &ConsistencyError{
				InvoiceID: inv.InvoiceID,
				Detail:    fmt.Sprintf("línea %s: total %s != %s horas x %s", l.ClauseID, l.LineTotal, l.Hours, l.UnitPrice),
			}
		}
	}
	return nil
}

func nonEmptyReason(r string) string {
	if r == "" {
		return "sin clasificar"
	}
	return r
}
