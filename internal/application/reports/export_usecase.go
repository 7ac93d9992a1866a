package reports

import (
	"context"
	"fmt"

	"github.com/AymanElMikh/bmw/internal/domain"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
)

// Formatos de exportación soportados.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
	FormatXML   = "xml"
)

// InvoicePDFGenerator genera el PDF de una factura.
type InvoicePDFGenerator interface {
	Generate(ctx context.Context, inv *entity.Invoice, clauseNames map[string]string) ([]byte, error)
}

// InvoiceExcelGenerator genera el libro Excel de una factura.
type InvoiceExcelGenerator interface {
	Generate(inv *entity.Invoice, clauseNames map[string]string) ([]byte, error)
}

// InvoiceXMLBuilder construye el XML de intercambio (formato SAP) de una
// factura.
type InvoiceXMLBuilder interface {
	Build(inv *entity.Invoice, clauseNames map[string]string) ([]byte, error)
}

// Export resultado binario de una exportación.
type Export struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportUseCase genera documentos de factura en PDF, Excel o XML. Los
// exportes son proyecciones de solo lectura: nunca mutan la factura y pueden
// generarse en cualquier estado.
type ExportUseCase struct {
	invoiceRepo repository.InvoiceRepository
	clauseRepo  repository.ClauseRepository
	pdf         InvoicePDFGenerator
	excel       InvoiceExcelGenerator
	xml         InvoiceXMLBuilder
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(
	invoiceRepo repository.InvoiceRepository,
	clauseRepo repository.ClauseRepository,
	pdf InvoicePDFGenerator,
	excel InvoiceExcelGenerator,
	xml InvoiceXMLBuilder,
) *ExportUseCase {
	return &ExportUseCase{
		invoiceRepo: invoiceRepo,
		clauseRepo:  clauseRepo,
		pdf:         pdf,
		excel:       excel,
		xml:         xml,
	}
}

// ExportInvoice genera el documento de la factura en el formato pedido.
func (uc *ExportUseCase) ExportInvoice(ctx context.Context, invoiceID, format string) (*Export, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	names, err := uc.clauseNames(inv)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		content, err := uc.pdf.Generate(ctx, inv, names)
		if err != nil {
			return nil, fmt.Errorf("generar PDF: %w", err)
		}
		return &Export{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("factura_%s.pdf", inv.InvoiceID),
		}, nil
	case FormatExcel:
		content, err := uc.excel.Generate(inv, names)
		if err != nil {
			return nil, fmt.Errorf("generar Excel: %w", err)
		}
		return &Export{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    fmt.Sprintf("factura_%s.xlsx", inv.InvoiceID),
		}, nil
	case FormatXML:
		content, err := uc.xml.Build(inv, names)
		if err != nil {
			return nil, fmt.Errorf("generar XML: %w", err)
		}
		return &Export{
			Content:     content,
			ContentType: "application/xml",
			Filename:    fmt.Sprintf("factura_%s.xml", inv.InvoiceID),
		}, nil
	default:
		return nil, fmt.Errorf("formato %q no soportado: %w", format, domain.ErrInvalidInput)
	}
}

// clauseNames resuelve los nombres de las cláusulas referenciadas por las
// líneas, para los encabezados del documento.
func (uc *ExportUseCase) clauseNames(inv *entity.Invoice) (map[string]string, error) {
	names := make(map[string]string, len(inv.Lines))
	for _, l := range inv.Lines {
		if _, ok := names[l.ClauseID]; ok {
			continue
		}
		clause, err := uc.clauseRepo.GetByID(l.ClauseID)
		if err != nil {
			return nil, err
		}
		if clause != nil {
			names[l.ClauseID] = clause.ClauseName
		} else {
			names[l.ClauseID] = l.ClauseID
		}
	}
	return names, nil
}
