package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
)

const (
	sheetLineItems = "Line Items"
	sheetWarnings  = "Warnings"
)

var lineItemHeaders = []string{"Part Number", "Series", "Description", "Price", "Discount", "MOQ", "Net Price"}

var warningHeaders = []string{"Type", "Line", "Part Number", "Message"}

// ExportXLSX renders a parse result as a workbook with a line item sheet and a
// warnings sheet. Prices are written as numbers with a currency format so the
// workbook can be summed; discount rows keep their text cells.
func ExportXLSX(result *parser.ParseResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetLineItems); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetWarnings); err != nil {
		return nil, fmt.Errorf("create warnings sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	currency := `"$"#,##0.00`
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	if err != nil {
		return nil, fmt.Errorf("create currency style: %w", err)
	}

	writeHeader(f, sheetLineItems, lineItemHeaders, bold)
	writeHeader(f, sheetWarnings, warningHeaders, bold)

	row := 2
	if result != nil {
		for _, r := range result.Rows {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheetLineItems, cell, v)
			}

			write(1, r.PartNumber)
			write(2, r.Series)
			write(3, r.Description)
			if r.UnitPrice != nil {
				write(4, r.UnitPrice.InexactFloat64())
			} else {
				write(4, r.Price)
			}
			write(5, r.Discount)
			write(6, r.MOQ)
			if r.NetUnitPrice != nil {
				write(7, r.NetUnitPrice.InexactFloat64())
			} else {
				write(7, r.NetPrice)
			}
			row++
		}
	}
	if row > 2 {
		_ = f.SetCellStyle(sheetLineItems, "D2", fmt.Sprintf("D%d", row-1), money)
		_ = f.SetCellStyle(sheetLineItems, "G2", fmt.Sprintf("G%d", row-1), money)
	}

	_ = f.SetColWidth(sheetLineItems, "A", "B", 14)
	_ = f.SetColWidth(sheetLineItems, "C", "C", 48)
	_ = f.SetColWidth(sheetLineItems, "D", "G", 12)

	row = 2
	if result != nil {
		for _, w := range result.Warnings {
			line := ""
			if w.LineNumber != nil {
				line = fmt.Sprint(*w.LineNumber)
			}
			values := []any{string(w.Type), line, w.PartNumber, w.Message}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetSheetRow(sheetWarnings, cell, &values)
			row++
		}
		for _, e := range result.Errors {
			values := []any{"error", "", "", e}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetSheetRow(sheetWarnings, cell, &values)
			row++
		}
	}
	_ = f.SetColWidth(sheetWarnings, "A", "A", 18)
	_ = f.SetColWidth(sheetWarnings, "D", "D", 72)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXFilename mirrors parser.OutputFilename for workbooks.
func XLSXFilename(meta parser.QuoteMetadata) string {
	return strings.TrimSuffix(parser.OutputFilename(meta), ".csv") + ".xlsx"
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
}
