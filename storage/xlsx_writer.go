package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"bikeshare-dashboard/models"
)

const xlsxSheet = "daily_rentals"

// XLSXWriter writes a table to a spreadsheet. Numeric columns are stored as
// numbers so the sheet can be charted directly.
type XLSXWriter struct {
	path string
	file *excelize.File
}

// NewXLSXWriter prepares a workbook that is saved to path on Close.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	return &XLSXWriter{path: path, file: f}, nil
}

// Path returns the output file path.
func (x *XLSXWriter) Path() string { return x.path }

// Write fills the sheet with a header row followed by the records.
func (x *XLSXWriter) Write(table *models.Table) error {
	cols := exportColumns(table)

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := x.file.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i := range table.Records {
		rec := &table.Records[i]
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			row[j] = xlsxCell(rec, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := x.file.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+2, err)
		}
	}

	if err := x.file.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx: freeze header: %w", err)
	}
	return nil
}

// Close saves the workbook and releases it.
func (x *XLSXWriter) Close() error {
	if err := x.file.SaveAs(x.path); err != nil {
		_ = x.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return x.file.Close()
}

func xlsxCell(r *models.DailyRecord, column string) interface{} {
	text := cellText(r, column)
	switch column {
	case models.ColDate, models.ColYearMonth, models.ColRentalCategory:
		return text
	}
	if text == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v
	}
	return text
}
