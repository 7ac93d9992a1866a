package sapxml_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/infrastructure/sapxml"
)

func demoInvoice() *entity.Invoice {
	return &entity.Invoice{
		InvoiceID:     "inv-001",
		ProjectName:   "SEGUROS-CORE",
		BillingPeriod: "2026-07",
		Currency:      entity.CurrencyEUR,
		TotalAmount:   decimal.RequireFromString("1602.50"),
		Status:        entity.InvoiceStatusDraft,
		CreatedAt:     time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Lines: []*entity.InvoiceLine{
			{
				ClauseID:  "FLASH_001",
				TicketIDs: []string{"BMW-1", "BMW-2"},
				Hours:     decimal.RequireFromString("15.5"),
				UnitPrice: decimal.RequireFromString("85.00"),
				LineTotal: decimal.RequireFromString("1317.50"),
			},
			{
				ClauseID:  "FLASH_002",
				TicketIDs: []string{"BMW-3"},
				Hours:     decimal.RequireFromString("3"),
				UnitPrice: decimal.RequireFromString("95.00"),
				LineTotal: decimal.RequireFromString("285.00"),
			},
		},
	}
}

func TestBuild_DocumentoCompleto(t *testing.T) {
	names := map[string]string{"FLASH_001": "Soporte estándar", "FLASH_002": "Soporte urgente"}

	out, err := sapxml.NewBuilder().Build(demoInvoice(), names)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out), "la salida debe ser XML válido")

	root := doc.SelectElement("SupportInvoice")
	require.NotNil(t, root)

	header := root.SelectElement("Header")
	require.NotNil(t, header)
	assert.Equal(t, "inv-001", header.SelectElement("InvoiceID").Text())
	assert.Equal(t, "2026-07", header.SelectElement("BillingPeriod").Text())
	assert.Equal(t, "1602.50", header.SelectElement("TotalAmount").Text(),
		"los importes van siempre con 2 decimales")
	assert.Equal(t, "2026-08-01", header.SelectElement("IssueDate").Text())

	items := root.SelectElement("Items").SelectElements("Item")
	require.Len(t, items, 2, "una posición por línea")

	first := items[0]
	assert.Equal(t, "1", first.SelectAttrValue("position", ""))
	assert.Equal(t, "FLASH_001", first.SelectElement("ClauseID").Text())
	assert.Equal(t, "Soporte estándar", first.SelectElement("ClauseName").Text())
	assert.Equal(t, "15.50", first.SelectElement("Hours").Text())
	assert.Equal(t, "BMW-1,BMW-2", first.SelectElement("Tickets").Text())
}

func TestBuild_ClausulaSinNombreUsaElID(t *testing.T) {
	out, err := sapxml.NewBuilder().Build(demoInvoice(), nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	item := doc.SelectElement("SupportInvoice").SelectElement("Items").SelectElements("Item")[0]
	assert.Equal(t, "FLASH_001", item.SelectElement("ClauseName").Text(),
		"sin nombre resuelto el id sirve de respaldo")
}
