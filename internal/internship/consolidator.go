// Package internship consolidates per-student internship hour workbooks into
// one wide report. Each input workbook belongs to one student (the file stem);
// its sheets are scanned for a header row naming an internship code column
// and a completed hours column, and the rows below it are read until the
// table ends.
package internship

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"acadcli/internal/batch"
	apperrors "acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// Report holds the consolidated hours table plus the bookkeeping lists.
// Processed and Skipped are sorted stems; a stem lands in Skipped when no
// sheet of its workbook yielded any hours.
type Report struct {
	Table     *domain.Table
	Processed []string
	Skipped   []string
}

// Consolidator reads internship workbooks and builds the wide report
type Consolidator struct {
	logger *slog.Logger
}

// NewConsolidator creates an internship consolidator
func NewConsolidator(logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{logger: logger}
}

type studentHours struct {
	stem  string
	hours map[string]int
}

// Consolidate reads every payload and assembles one row per student. The
// Student column comes first; the remaining columns are the internship codes
// seen anywhere, sorted case-insensitively, with 0 filling the gaps. An
// input set where no workbook yields hours is an input error.
func (c *Consolidator) Consolidate(ctx context.Context, payloads []batch.Payload) (*Report, error) {
	if len(payloads) == 0 {
		return nil, apperrors.NewInputError("no internship workbooks to consolidate", nil)
	}

	var entries []studentHours
	var skipped []string
	codeSet := make(map[string]bool)

	for _, p := range payloads {
		hours, err := c.extractHours(ctx, p)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping internship workbook",
				slog.String("file", p.Name),
				slog.String("error", err.Error()))
			skipped = append(skipped, p.Stem)
			continue
		}
		if len(hours) == 0 {
			c.logger.WarnContext(ctx, "no internship hours found",
				slog.String("file", p.Name))
			skipped = append(skipped, p.Stem)
			continue
		}

		entries = append(entries, studentHours{stem: p.Stem, hours: hours})
		for code := range hours {
			codeSet[code] = true
		}
	}

	if len(entries) == 0 {
		return nil, apperrors.NewInputError("no internship data found in any workbook", nil).
			WithContext("workbooks", len(payloads)).
			WithContext("skipped", len(skipped))
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return lessCaseInsensitive(entries[a].stem, entries[b].stem)
	})
	sort.Strings(skipped)

	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(a, b int) bool {
		return lessCaseInsensitive(codes[a], codes[b])
	})

	table := &domain.Table{
		Columns: append([]string{"Student"}, codes...),
		Rows:    make([][]string, 0, len(entries)),
	}
	processed := make([]string, 0, len(entries))
	for _, entry := range entries {
		row := make([]string, 0, len(codes)+1)
		row = append(row, entry.stem)
		for _, code := range codes {
			row = append(row, strconv.Itoa(entry.hours[code]))
		}
		table.Rows = append(table.Rows, row)
		processed = append(processed, entry.stem)
	}

	c.logger.InfoContext(ctx, "internship workbooks consolidated",
		slog.Int("students", len(processed)),
		slog.Int("codes", len(codes)),
		slog.Int("skipped", len(skipped)))

	return &Report{Table: table, Processed: processed, Skipped: skipped}, nil
}

// extractHours opens one workbook and returns the first sheet's hours map
// that is non-empty. Sheets are tried in workbook order.
func (c *Consolidator) extractHours(ctx context.Context, p batch.Payload) (map[string]int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(p.Data))
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", p.Name), err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		hours := scanSheet(rows)
		if len(hours) > 0 {
			c.logger.DebugContext(ctx, "internship hours extracted",
				slog.String("file", p.Name),
				slog.String("sheet", sheet),
				slog.Int("codes", len(hours)))
			return hours, nil
		}
	}

	return nil, nil
}

// scanSheet locates the header row and reads the table below it. The header
// is the first row with a cell naming the internship code column and a cell
// naming the completed hours column. Reading stops at a blank code cell or a
// hours cell that is not a number; blank hours read as 0.
func scanSheet(rows [][]string) map[string]int {
	codeCol, hoursCol, headerRow := findHeader(rows)
	if headerRow < 0 {
		return nil
	}

	hours := make(map[string]int)
	for i := headerRow + 1; i < len(rows); i++ {
		code := cellAt(rows[i], codeCol)
		if code == "" {
			break
		}
		raw := cellAt(rows[i], hoursCol)
		value := 0
		if raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				break
			}
			value = int(parsed)
		}
		hours[code] = value
	}
	return hours
}

// findHeader scans every row for the two header cells. The code column is
// the first cell mentioning both "internship" and "code"; the hours column
// is the first cell mentioning "completed", which covers the spellings seen
// in the wild (Completed, Completed Hours, # Completed, Hrs Completed).
func findHeader(rows [][]string) (codeCol, hoursCol, headerRow int) {
	for ri, row := range rows {
		codeCol, hoursCol = -1, -1
		for ci, cell := range row {
			norm := normCell(cell)
			if codeCol < 0 && strings.Contains(norm, "internship") && strings.Contains(norm, "code") {
				codeCol = ci
			}
			if hoursCol < 0 && strings.Contains(norm, "completed") {
				hoursCol = ci
			}
		}
		if codeCol >= 0 && hoursCol >= 0 {
			return codeCol, hoursCol, ri
		}
	}
	return -1, -1, -1
}

// normCell lowercases and collapses runs of whitespace to single spaces
func normCell(cell string) string {
	return strings.Join(strings.Fields(strings.ToLower(cell)), " ")
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func lessCaseInsensitive(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
