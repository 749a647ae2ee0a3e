package domain

import "strings"

// Table represents a rectangular spreadsheet extract. Columns preserves the
// header order of the source; Rows holds cell text in the same column order.
// Rows may be ragged: trailing empty cells are often dropped by spreadsheet
// readers, so cell access goes through Cell which treats a missing index as
// an empty string.
type Table struct {
	Name    string     `json:"name,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1 when the
// header is absent. Matching is exact on the trimmed header text.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == strings.TrimSpace(name) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell text at (row, col), or "" when the row is
// ragged and the column falls past its end.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	cells := t.Rows[row]
	if col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}

// IsEmpty reports whether the table has no data rows
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}
