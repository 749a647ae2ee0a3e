package transform

import (
	"context"
	"log/slog"
	"strings"

	"acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// Normalizer walks an input table, invokes the parser per candidate
// string, and assembles the tidy record set plus the reject list. It
// holds no state across calls and is safe to use from multiple goroutines
// on different tables.
type Normalizer struct {
	logger *slog.Logger
	opts   Options
	parser *Parser
}

// NewNormalizer creates a normalizer for the given options. Option
// problems are reported here, before any table is touched.
func NewNormalizer(logger *slog.Logger, opts Options) (*Normalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	switch opts.Mode {
	case ModeColumnEncoded, ModeCellEncoded:
	default:
		return nil, errors.NewConfigError("unknown normalization mode", nil).
			WithContext("mode", string(opts.Mode))
	}
	if strings.TrimSpace(opts.IdentityColumn) == "" {
		return nil, errors.NewConfigError("identity column is required", nil)
	}
	if opts.Mode == ModeCellEncoded && len(opts.CourseSlotColumns) == 0 {
		return nil, errors.NewConfigError("cell-encoded mode requires at least one course slot column", nil)
	}

	parser, err := NewParser(opts)
	if err != nil {
		return nil, err
	}

	return &Normalizer{logger: logger, opts: opts, parser: parser}, nil
}

// Parser exposes the underlying token parser
func (n *Normalizer) Parser() *Parser {
	return n.parser
}

// Normalize processes every (row, candidate column) pair of the table
// exactly once, in row-major then column order, so output order is
// reproducible for identical inputs. Per-cell failures become Rejections
// and never abort the run; the returned error covers only fatal problems
// found before parsing begins: a missing header row, a missing identity
// column, or a declared slot column absent from the table.
//
// Rows whose identity cell is empty are skipped whole. Empty candidate
// cells are skipped and counted, not rejected. In column-encoded mode a
// header that fails to parse is rejected once, with RowIndex -1, rather
// than once per row.
func (n *Normalizer) Normalize(ctx context.Context, table *domain.Table) (*domain.NormalizedTable, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, errors.NewInputError("table has no header row", nil)
	}

	idIdx := table.ColumnIndex(n.opts.IdentityColumn)
	if idIdx < 0 {
		return nil, errors.NewConfigError("identity column not found in table", nil).
			WithContext("column", n.opts.IdentityColumn).
			WithContext("source", table.Name)
	}

	n.logger.InfoContext(ctx, "normalizing table",
		slog.String("source", table.Name),
		slog.String("mode", string(n.opts.Mode)),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))

	result := &domain.NormalizedTable{
		Source:         table.Name,
		IdentityColumn: n.opts.IdentityColumn,
		Records:        []domain.CourseRecord{},
		Rejections:     []domain.Rejection{},
		RowsScanned:    len(table.Rows),
	}

	var err error
	switch n.opts.Mode {
	case ModeColumnEncoded:
		n.normalizeColumnEncoded(table, idIdx, result)
	case ModeCellEncoded:
		err = n.normalizeCellEncoded(table, idIdx, result)
	}
	if err != nil {
		return nil, err
	}

	n.logger.InfoContext(ctx, "table normalized",
		slog.String("source", table.Name),
		slog.Int("records", len(result.Records)),
		slog.Int("rejections", len(result.Rejections)),
		slog.Int("cells_skipped", result.CellsSkipped))

	return result, nil
}

// normalizeColumnEncoded treats every non-identity header as a token.
// Headers parse once up front; rows then contribute one record per
// parseable header whose cell is non-empty. When the header carries no
// grade segment, the cell value supplies the grade.
func (n *Normalizer) normalizeColumnEncoded(table *domain.Table, idIdx int, out *domain.NormalizedTable) {
	type headerColumn struct {
		index int
		name  string
		token HeaderToken
	}

	var columns []headerColumn
	for j, name := range table.Columns {
		if j == idIdx {
			continue
		}
		token, failure := n.parser.ParseHeaderToken(name)
		if failure != nil {
			out.Rejections = append(out.Rejections, domain.Rejection{
				RowIndex: -1,
				Column:   name,
				Raw:      name,
				Reason:   failure.Reason,
				Detail:   failure.Detail,
				Source:   table.Name,
			})
			continue
		}
		columns = append(columns, headerColumn{index: j, name: name, token: token})
	}

	for i := range table.Rows {
		studentID := table.Cell(i, idIdx)
		if studentID == "" {
			continue
		}
		for _, col := range columns {
			cell := table.Cell(i, col.index)
			if cell == "" {
				out.CellsSkipped++
				continue
			}
			grade := col.token.Grade
			if !col.token.HasGrade {
				resolved, ok := n.parser.Grade(cell)
				if !ok {
					out.Rejections = append(out.Rejections, domain.Rejection{
						StudentID: studentID,
						RowIndex:  i,
						Column:    col.name,
						Raw:       cell,
						Reason:    domain.RejectInvalidGrade,
						Detail:    "grade \"" + cell + "\" is not in the lexicon",
						Source:    table.Name,
					})
					continue
				}
				grade = resolved
			}
			out.Records = append(out.Records, domain.CourseRecord{
				StudentID: studentID,
				Course:    col.token.Course,
				Semester:  col.token.Semester,
				Year:      col.token.Year,
				Grade:     grade,
			})
		}
	}
}

// normalizeCellEncoded treats the cell values of the declared slot
// columns as tokens. Slot columns are visited in table column order. A
// declared slot column missing from the table is fatal and reported
// before any cell is parsed.
func (n *Normalizer) normalizeCellEncoded(table *domain.Table, idIdx int, out *domain.NormalizedTable) error {
	declared := make(map[string]bool, len(n.opts.CourseSlotColumns))
	for _, name := range n.opts.CourseSlotColumns {
		declared[strings.TrimSpace(name)] = true
	}

	var slotIndexes []int
	var slotNames []string
	found := make(map[string]bool, len(declared))
	for j, name := range table.Columns {
		if j == idIdx {
			continue
		}
		trimmed := strings.TrimSpace(name)
		if declared[trimmed] {
			slotIndexes = append(slotIndexes, j)
			slotNames = append(slotNames, name)
			found[trimmed] = true
		}
	}
	for _, name := range n.opts.CourseSlotColumns {
		if !found[strings.TrimSpace(name)] {
			return errors.NewConfigError("course slot column not found in table", nil).
				WithContext("column", name).
				WithContext("source", table.Name)
		}
	}

	for i := range table.Rows {
		studentID := table.Cell(i, idIdx)
		if studentID == "" {
			continue
		}
		for k, j := range slotIndexes {
			cell := table.Cell(i, j)
			if cell == "" {
				out.CellsSkipped++
				continue
			}
			token, failure := n.parser.Parse(cell)
			if failure != nil {
				out.Rejections = append(out.Rejections, domain.Rejection{
					StudentID: studentID,
					RowIndex:  i,
					Column:    slotNames[k],
					Raw:       cell,
					Reason:    failure.Reason,
					Detail:    failure.Detail,
					Source:    table.Name,
				})
				continue
			}
			out.Records = append(out.Records, domain.CourseRecord{
				StudentID: studentID,
				Course:    token.Course,
				Semester:  token.Semester,
				Year:      token.Year,
				Grade:     token.Grade,
			})
		}
	}
	return nil
}
