// Package excel genera el libro XLSX de una factura con excelize.
package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AymanElMikh/bmw/internal/application/reports"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

var _ reports.InvoiceExcelGenerator = (*Generator)(nil)

const sheetName = "Factura"

// Generator implementa reports.InvoiceExcelGenerator.
type Generator struct{}

// NewGenerator construye el generador.
func NewGenerator() *Generator { return &Generator{} }

// Generate genera el libro con una hoja: cabecera de factura, tabla de
// líneas y fila de total.
func (g *Generator) Generate(inv *entity.Invoice, clauseNames map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("excel: eliminar hoja por defecto: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: crear estilo: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: crear estilo: %w", err)
	}

	// Cabecera de la factura
	set := func(cell string, value any) {
		_ = f.SetCellValue(sheetName, cell, value)
	}
	set("A1", "Factura")
	set("B1", inv.InvoiceID)
	set("A2", "Proyecto")
	set("B2", inv.ProjectName)
	set("A3", "Periodo")
	set("B3", inv.BillingPeriod)
	set("A4", "Estado")
	set("B4", inv.Status)
	set("A5", "Moneda")
	set("B5", inv.Currency)
	_ = f.SetCellStyle(sheetName, "A1", "A5", boldStyle)

	// Tabla de líneas
	const tableStart = 7
	headers := []string{"Cláusula", "Nombre", "Tickets", "Horas", "Tarifa/h", "Importe"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableStart)
		set(cell, h)
	}
	first, _ := excelize.CoordinatesToCellName(1, tableStart)
	last, _ := excelize.CoordinatesToCellName(len(headers), tableStart)
	_ = f.SetCellStyle(sheetName, first, last, headerStyle)

	rowNum := tableStart
	for _, l := range inv.Lines {
		rowNum++
		name := clauseNames[l.ClauseID]
		if name == "" {
			name = l.ClauseID
		}
		hours, _ := l.Hours.Float64()
		price, _ := l.UnitPrice.Float64()
		total, _ := l.LineTotal.Float64()
		values := []any{l.ClauseID, name, strings.Join(l.TicketIDs, ", "), hours, price, total}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			set(cell, v)
		}
	}

	// Total
	rowNum += 2
	labelCell, _ := excelize.CoordinatesToCellName(5, rowNum)
	totalCell, _ := excelize.CoordinatesToCellName(6, rowNum)
	set(labelCell, "TOTAL")
	grand, _ := inv.TotalAmount.Float64()
	set(totalCell, grand)
	_ = f.SetCellStyle(sheetName, labelCell, totalCell, boldStyle)

	_ = f.SetColWidth(sheetName, "A", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "C", 40)
	_ = f.SetColWidth(sheetName, "D", "F", 12)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
