package transform

import (
	"fmt"
	"strings"

	"acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// detectSampleDepth is how many non-empty cell values are sampled per
// candidate slot column when probing for cell-encoded layout.
const detectSampleDepth = 8

// Detection reports the layout a table appears to use and the evidence
// behind the call, so callers can surface the decision instead of
// applying it silently.
type Detection struct {
	Mode          Mode     `json:"mode"`
	SlotColumns   []string `json:"slot_columns,omitempty"`
	HeaderMatches int      `json:"header_matches"`
	CellMatches   int      `json:"cell_matches"`
	Reason        string   `json:"reason"`
}

// Detect inspects a table and reports which layout Normalize should use.
// The rule is fixed and applied in order:
//
//  1. if any non-identity header parses as a course token (with or
//     without a grade segment), the table is column-encoded
//  2. otherwise, non-identity columns whose header starts with COURSE
//     and whose sampled cell values (up to 8 per column) parse as
//     complete tokens are slot columns, and the table is cell-encoded
//  3. otherwise detection fails with an input error
//
// Detect never mutates the table. The identity column named in opts is
// excluded from both scans when present.
func Detect(table *domain.Table, opts Options) (*Detection, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, errors.NewInputError("table has no header row", nil)
	}

	opts = opts.withDefaults()
	parser, err := NewParser(opts)
	if err != nil {
		return nil, err
	}

	idIdx := -1
	if strings.TrimSpace(opts.IdentityColumn) != "" {
		idIdx = table.ColumnIndex(opts.IdentityColumn)
	}

	headerMatches := 0
	candidates := 0
	for j, name := range table.Columns {
		if j == idIdx {
			continue
		}
		candidates++
		if _, failure := parser.ParseHeaderToken(name); failure == nil {
			headerMatches++
		}
	}
	if headerMatches > 0 {
		return &Detection{
			Mode:          ModeColumnEncoded,
			HeaderMatches: headerMatches,
			Reason: fmt.Sprintf("%d of %d headers parse as course tokens",
				headerMatches, candidates),
		}, nil
	}

	var slotColumns []string
	cellMatches := 0
	for j, name := range table.Columns {
		if j == idIdx {
			continue
		}
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), "COURSE") {
			continue
		}
		sampled := 0
		matched := false
		for i := 0; i < len(table.Rows) && sampled < detectSampleDepth; i++ {
			cell := table.Cell(i, j)
			if cell == "" {
				continue
			}
			sampled++
			if _, failure := parser.Parse(cell); failure == nil {
				cellMatches++
				matched = true
			}
		}
		if matched {
			slotColumns = append(slotColumns, name)
		}
	}
	if len(slotColumns) > 0 {
		return &Detection{
			Mode:        ModeCellEncoded,
			SlotColumns: slotColumns,
			CellMatches: cellMatches,
			Reason: fmt.Sprintf("%d slot columns with parseable cell values",
				len(slotColumns)),
		}, nil
	}

	return nil, errors.NewInputError("could not detect table layout", nil).
		WithContext("source", table.Name).
		WithContext("columns", len(table.Columns))
}
