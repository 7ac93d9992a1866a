// Package sapxml construye el documento XML de intercambio con el ERP (SAP)
// para una factura. El esquema es el formato plano acordado con contabilidad:
// cabecera + una posición por cláusula con la lista de tickets facturados.
package sapxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

var _ reports.InvoiceXMLBuilder = (*Builder)(nil)

// Builder implementa reports.InvoiceXMLBuilder con etree.
type Builder struct{}

// NewBuilder construye el builder.
func NewBuilder() *Builder { return &Builder{} }

// Build genera los bytes del documento SupportInvoice.
func (b *Builder) Build(inv *entity.Invoice, clauseNames map[string]string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("SupportInvoice")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("Header")
	header.CreateElement("InvoiceID").SetText(inv.InvoiceID)
	header.CreateElement("Project").SetText(inv.ProjectName)
	header.CreateElement("BillingPeriod").SetText(inv.BillingPeriod)
	header.CreateElement("Currency").SetText(inv.Currency)
	header.CreateElement("Status").SetText(inv.Status)
	header.CreateElement("TotalAmount").SetText(inv.TotalAmount.StringFixed(2))
	header.CreateElement("IssueDate").SetText(inv.CreatedAt.UTC().Format("2006-01-02"))

	items := root.CreateElement("Items")
	for i, l := range inv.Lines {
		item := items.CreateElement("Item")
		item.CreateAttr("position", strconv.Itoa(i+1))
		item.CreateElement("ClauseID").SetText(l.ClauseID)
		name := clauseNames[l.ClauseID]
		if name == "" {
			name = l.ClauseID
		}
		item.CreateElement("ClauseName").SetText(name)
		item.CreateElement("Hours").SetText(l.Hours.StringFixed(2))
		item.CreateElement("UnitPrice").SetText(l.UnitPrice.StringFixed(2))
		item.CreateElement("Amount").SetText(l.LineTotal.StringFixed(2))
		item.CreateElement("Tickets").SetText(strings.Join(l.TicketIDs, ","))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("sapxml: serializar documento: %w", err)
	}
	return out, nil
}
