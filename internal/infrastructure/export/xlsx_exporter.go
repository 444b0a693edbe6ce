// Package export renders reports as spreadsheet downloads.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContentTypeXLSX is the MIME type of exported workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	productsSheet = "Products"
	summarySheet  = "Summary"
)

var productHeaders = []string{
	"ID", "External ID", "SKU", "Name", "Brand", "Model", "Category", "Color",
	"Price", "Currency", "Stock", "Created At", "Updated At", "Deleted",
}

// XLSXExporter writes custom reports as Excel workbooks
type XLSXExporter struct{}

// NewXLSXExporter creates an exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType returns the MIME type of the workbooks
func (e *XLSXExporter) ContentType() string {
	return ContentTypeXLSX
}

// Filename returns the download name for a custom report
func (e *XLSXExporter) Filename(r *report.CustomReport) string {
	return fmt.Sprintf("custom-report-%s.xlsx", r.Criteria)
}

// CustomReport renders the matched products on one sheet and the query on another
func (e *XLSXExporter) CustomReport(r *report.CustomReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, header := range productHeaders {
		if err := setCell(f, productsSheet, col+1, 1, header); err != nil {
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(productHeaders), 1)
	if err := f.SetCellStyle(productsSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i := range r.Products {
		if err := writeProductRow(f, i+2, &r.Products[i]); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][2]any{
		{"Criteria", criterionLabel(r.Criteria)},
		{"Value", r.Value},
		{"Count", r.Count},
	}
	for i, row := range summary {
		if err := setCell(f, summarySheet, 1, i+1, row[0]); err != nil {
			return nil, err
		}
		if err := setCell(f, summarySheet, 2, i+1, row[1]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// criterionLabel turns a criterion name into a column-style title,
// createdAt into "Created At"
func criterionLabel(c catalog.Criterion) string {
	if c == catalog.CriterionSKU {
		return "SKU"
	}
	var b strings.Builder
	for i, r := range c.String() {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	// Casers keep state, so one per call
	return cases.Title(language.English).String(b.String())
}

func writeProductRow(f *excelize.File, row int, p *catalog.Product) error {
	values := []any{
		p.ID.String(), p.ExternalID, p.SKU, p.Name, p.Brand, p.Model, p.Category, p.Color,
		priceCell(p.Price), p.Currency, stockCell(p.Stock), p.CreatedAt, p.UpdatedAt, p.Deleted,
	}
	for col, v := range values {
		if err := setCell(f, productsSheet, col+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

// unparsed measures are exported as their upstream text
func priceCell(p catalog.Price) any {
	switch p.Status {
	case catalog.MeasureValid:
		v, _ := p.Amount.Float64()
		return v
	case catalog.MeasureUnparsed:
		return p.Raw
	default:
		return ""
	}
}

func stockCell(s catalog.Stock) any {
	switch s.Status {
	case catalog.MeasureValid:
		return s.Quantity
	case catalog.MeasureUnparsed:
		return s.Raw
	default:
		return ""
	}
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
