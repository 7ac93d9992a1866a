// Package pdf implementa la representación imprimible de una factura de
// soporte por cláusulas contractuales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proyecto  │  N° Factura + Periodo + Estado          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cláusula | Tickets | Horas | Tarifa | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL A FACTURAR                                            │
//	│  FOOTER: emisión + moneda                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

var _ reports.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 54, Green: 96, Blue: 146}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa reports.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador con formato numérico europeo.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// Generate genera el PDF de la factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(_ context.Context, inv *entity.Invoice, clauseNames map[string]string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura de soporte "+inv.InvoiceID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableLineRows(inv, clauseNames) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: proyecto (izq) y n° de factura + periodo + estado (der).
func (g *MarotoPDFGenerator) headerRow(inv *entity.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.ProjectName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Soporte por cláusulas contractuales", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA DE SOPORTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceID, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Periodo: %s   |   Estado: %s", inv.BillingPeriod, inv.Status), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cláusula", 4, align.Left),
		h("Tickets", 2, align.Center),
		h("Horas", 2, align.Right),
		h("Tarifa/h", 2, align.Right),
		h("Importe", 2, align.Right),
	)
}

// tableLineRows: una fila por línea agregada por cláusula.
func (g *MarotoPDFGenerator) tableLineRows(inv *entity.Invoice, clauseNames map[string]string) []core.Row {
	result := make([]core.Row, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		name := clauseNames[l.ClauseID]
		if name == "" {
			name = l.ClauseID
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(
				fmt.Sprintf("%s — %s", l.ClauseID, name),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				fmt.Sprintf("%d", len(l.TicketIDs)),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				l.Hours.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				g.amount(l.UnitPrice, inv.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				g.amount(l.LineTotal, inv.Currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: total a facturar alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(inv *entity.Invoice) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL A FACTURAR:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(g.amount(inv.TotalAmount, inv.Currency), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// footerRow: fecha de emisión y moneda.
func footerRow(inv *entity.Invoice) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Emitida: %s   |   Moneda: %s   |   Emitida por: %s",
			inv.CreatedAt.Format("02/01/2006"), inv.Currency, inv.CreatedBy,
		), props.Text{Size: 7, Color: colorGray, Top: 1}),
	))
}

// amount formatea el importe con separadores de miles del locale y el código
// de moneda.
func (g *MarotoPDFGenerator) amount(d decimal.Decimal, currency string) string {
	f, _ := d.Float64()
	return g.printer.Sprintf("%.2f %s", f, currency)
}
