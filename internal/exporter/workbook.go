package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"acadcli/internal/config"
)

// sheetData describes one sheet of an output workbook: an optional header
// row followed by data rows, written top to bottom.
type sheetData struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// writeWorkbook writes the sheets to a new xlsx workbook at path, replacing
// any existing file. The first sheet takes over the default sheet so the
// workbook opens on it.
func writeWorkbook(path string, sheets []sheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(config.DefaultSheetName, sheets[0].Name); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, sheet := range sheets[1:] {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet sheetData) error {
	row := 1
	if len(sheet.Headers) > 0 {
		if err := setRow(f, sheet.Name, row, sheet.Headers); err != nil {
			return err
		}
		row++
	}
	for _, cells := range sheet.Rows {
		if err := setRow(f, sheet.Name, row, cells); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell for row %d: %w", row, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", row, sheet, err)
	}
	return nil
}
