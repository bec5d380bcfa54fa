package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook. Cells keep their Go type so numbers stay numeric.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// SpreadsheetExporter renders sheets into an .xlsx workbook.
type SpreadsheetExporter struct{}

// NewSpreadsheetExporter constructs a spreadsheet exporter.
func NewSpreadsheetExporter() *SpreadsheetExporter {
	return &SpreadsheetExporter{}
}

// Render writes every sheet in order and returns the workbook bytes.
func (e *SpreadsheetExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook requires at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"6366F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if sheet.Name == "" {
			return nil, fmt.Errorf("sheet %d has no name", i)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %q header: %w", sheet.Name, err)
	}
	if len(sheet.Headers) > 0 {
		if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("style %q header: %w", sheet.Name, err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
		if err != nil {
			return fmt.Errorf("resolve %q columns: %w", sheet.Name, err)
		}
		if err := f.SetColWidth(sheet.Name, "A", lastCol, 22); err != nil {
			return fmt.Errorf("size %q columns: %w", sheet.Name, err)
		}
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve %q row %d: %w", sheet.Name, i, err)
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write %q row %d: %w", sheet.Name, i, err)
		}
	}
	return nil
}
