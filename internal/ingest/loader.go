// Package ingest reads grade spreadsheets and CSV exports into the tabular
// form the transform package consumes. It does not interpret cell contents;
// it only establishes the header row, trims trailing blank rows, and reports
// structural problems as typed input errors.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// Loader reads tables from the supported input formats.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a table loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadTable reads the file at path into a Table, dispatching on extension.
// Supported formats are .xlsx and .csv.
func (l *Loader) LoadTable(ctx context.Context, path string) (*domain.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return l.loadExcel(ctx, path, "")
	case ".csv":
		return l.loadCSV(ctx, path)
	default:
		return nil, apperrors.NewInputError(fmt.Sprintf("unsupported input format %q", filepath.Ext(path)), nil).
			WithContext("path", path)
	}
}

// LoadSheet reads a specific sheet from a workbook. It is used for workbooks
// where the table of interest is not the first sheet, such as advising
// exports.
func (l *Loader) LoadSheet(ctx context.Context, path, sheet string) (*domain.Table, error) {
	return l.loadExcel(ctx, path, sheet)
}

// LoadBytes reads an in-memory table, typically an archive member. The name
// decides the format and becomes the table name.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*domain.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", name), err)
		}
		defer f.Close()
		return l.excelTable(ctx, f, name, "")
	case ".csv":
		return l.csvTable(ctx, name, data)
	default:
		return nil, apperrors.NewInputError(fmt.Sprintf("unsupported input format %q", filepath.Ext(name)), nil).
			WithContext("name", name)
	}
}

// loadExcel reads a workbook sheet into a Table. With an empty sheet name the
// first sheet containing data is used.
func (l *Loader) loadExcel(ctx context.Context, path, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()
	return l.excelTable(ctx, f, path, sheet)
}

func (l *Loader) excelTable(ctx context.Context, f *excelize.File, path, sheet string) (*domain.Table, error) {
	var rows [][]string
	var err error
	sheetName := sheet

	if sheetName != "" {
		rows, err = f.GetRows(sheetName)
		if err != nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheetName)).
				WithContext("path", path)
		}
	} else {
		// Probe the sheets in workbook order and take the first one that
		// actually holds data.
		for _, name := range f.GetSheetList() {
			testRows, testErr := f.GetRows(name)
			if testErr != nil {
				continue
			}
			if hasAnyData(testRows) {
				rows = testRows
				sheetName = name
				break
			}
		}
		if sheetName == "" {
			return nil, apperrors.NewInputError(fmt.Sprintf("workbook %s has no sheet with data", path), nil)
		}
	}

	l.logger.DebugContext(ctx, "loaded workbook sheet",
		slog.String("path", path),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))

	return buildTable(filepath.Base(path), rows)
}

// loadCSV reads a CSV file into a Table. Rows may have varying widths; a
// leading UTF-8 byte order mark is dropped.
func (l *Loader) loadCSV(ctx context.Context, path string) (*domain.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to read %s", path), err)
	}
	return l.csvTable(ctx, path, content)
}

func (l *Loader) csvTable(ctx context.Context, path string, content []byte) (*domain.Table, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to parse CSV %s", path), err)
	}

	l.logger.DebugContext(ctx, "loaded csv",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	return buildTable(filepath.Base(path), rows)
}

// buildTable turns raw sheet rows into a Table: the first row becomes the
// column headers, trailing blank rows are dropped, and duplicate headers are
// reported as an input error because column references would be ambiguous.
func buildTable(name string, rows [][]string) (*domain.Table, error) {
	rows = trimTrailingBlankRows(rows)
	if len(rows) == 0 {
		return nil, apperrors.NewInputError(fmt.Sprintf("%s contains no data", name), nil)
	}

	columns := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		columns[i] = header
		if header == "" {
			continue
		}
		if seen[header] {
			return nil, apperrors.NewInputError(fmt.Sprintf("%s declares column %q more than once", name, header), nil)
		}
		seen[header] = true
	}

	return &domain.Table{
		Name:    name,
		Columns: columns,
		Rows:    rows[1:],
	}, nil
}

// trimTrailingBlankRows drops rows at the end of the sheet that hold no data.
// Spreadsheets routinely carry formatting-only rows past the real content.
func trimTrailingBlankRows(rows [][]string) [][]string {
	last := len(rows) - 1
	for last >= 0 && !rowHasData(rows[last]) {
		last--
	}
	return rows[:last+1]
}

func rowHasData(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

func hasAnyData(rows [][]string) bool {
	for _, row := range rows {
		if rowHasData(row) {
			return true
		}
	}
	return false
}
