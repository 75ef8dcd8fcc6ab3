// Package exporter writes a fused table to CSV and XLSX. Unknown values
// become empty cells.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/okian/recessionwatch/internal/domain/fusion"
)

// SheetName is the worksheet holding the table in XLSX exports.
const SheetName = "fused"

// DateHeader is the name of the leading date column.
const DateHeader = "date"

// Rows renders the table as a header and string records.
func Rows(t *fusion.Table) ([]string, [][]string) {
	cols := t.Columns()
	headers := append([]string{DateHeader}, cols...)
	records := make([][]string, t.Len())
	for i, d := range t.Dates() {
		rec := make([]string, len(headers))
		rec[0] = d.String()
		for j, c := range cols {
			rec[j+1] = t.Value(i, c).String()
		}
		records[i] = rec
	}
	return headers, records
}

// WriteCSV writes the table as CSV to w.
func WriteCSV(w io.Writer, t *fusion.Table) error {
	headers, records := Rows(t)
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the table as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, t *fusion.Table) error {
	f, err := workbook(t)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile picks the format from the path extension (.csv or .xlsx) and
// writes the table there, creating parent directories.
func WriteFile(path string, t *fusion.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		if err := WriteCSV(file, t); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	case ".xlsx":
		f, err := workbook(t)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func workbook(t *fusion.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, 0, len(cols)+1)
	header = append(header, DateHeader)
	for _, c := range cols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, d := range t.Dates() {
		row := make([]interface{}, len(cols)+1)
		row[0] = d.String()
		for j, c := range cols {
			if v, ok := t.Value(i, c).Get(); ok {
				row[j+1] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return f, nil
}
