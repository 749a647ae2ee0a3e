// Package programs classifies grade table rows into degree program buckets
// (public health, speech therapy, nursing, majorless) from whatever program
// columns the export happens to carry. Speech therapy rows are further split
// into the old and new degree plans by the cohort year embedded in the
// student ID.
package programs

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	apperrors "acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

var yearRe = regexp.MustCompile(`\d{4}`)

// Rules holds the classification vocabulary. The defaults cover the exports
// seen so far; institutions with different column headings or program
// spellings can supply their own.
type Rules struct {
	// Normalized column names recognized as the student identity column.
	IdentityExact []string

	// Normalized column names recognized as program columns, and the fuzzy
	// roots matched as substrings when no exact name is present.
	ProgramExact []string
	ProgramRoots []string

	// Tokens matched against the punctuation-stripped uppercase aggregate
	// of all program columns in a row.
	PBHLTokens      []string
	SPTHTokens      []string
	NURSTokens      []string
	MajorlessTokens []string

	// Cohort years at or below SPTHSplitYear follow the old speech therapy
	// plan; later cohorts follow the new one.
	SPTHSplitYear int
}

// DefaultRules returns the vocabulary used by the standard exports
func DefaultRules() *Rules {
	return &Rules{
		IdentityExact: []string{"id", "studentid", "sid", "studentnumber", "studentno"},
		ProgramExact:  []string{"major", "program", "degree", "maj", "track", "curriculum", "department"},
		ProgramRoots: []string{
			"major", "maj", "program", "prog", "degree",
			"track", "curriculum", "curr", "department", "dept",
		},
		PBHLTokens:      []string{"PBHL", "PUBHEA", "PUBLICHEALTH"},
		SPTHTokens:      []string{"SPTH", "SPETHE", "SPET", "SPEECH", "SLP"},
		NURSTokens:      []string{"NURS"},
		MajorlessTokens: []string{"MAJRLS", "MAJORLESS", "UNDECLARED", "UNDECIDED"},
		SPTHSplitYear:   2021,
	}
}

// Classifier splits table rows into program buckets
type Classifier struct {
	logger *slog.Logger
	rules  *Rules
}

// NewClassifier creates a classifier. A nil rules pointer selects the
// default vocabulary.
func NewClassifier(logger *slog.Logger, rules *Rules) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{logger: logger, rules: rules}
}

// Buckets holds the outcome of classifying one table.
//
// RowPrograms has one entry per table row; rows matching no program carry the
// empty string. A row can satisfy several matchers at once; the bucket counts
// track each matcher independently while RowPrograms and StudentPrograms keep
// the first match in PBHL, SPTH, NURS, MAJRLS order.
type Buckets struct {
	IdentityColumn string
	ProgramColumns []string

	RowPrograms     []domain.Program
	StudentPrograms map[string]domain.Program

	// Counts keyed by ProgramPBHL, ProgramSPTH (old and new combined),
	// ProgramNURS, ProgramMAJRLS.
	Counts map[domain.Program]int
}

// ProgramFor returns the stamped program for a student identity value, or
// ProgramUnknown when the student never matched a bucket.
func (b *Buckets) ProgramFor(studentID string) domain.Program {
	if p, ok := b.StudentPrograms[studentID]; ok {
		return p
	}
	return domain.ProgramUnknown
}

// Split classifies every row of the table. It fails with an input error when
// no program column can be found, since classification would be meaningless.
func (c *Classifier) Split(ctx context.Context, table *domain.Table) (*Buckets, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, apperrors.NewInputError("cannot classify an empty table", nil)
	}

	idCol := c.detectIdentityColumn(table.Columns)
	programCols := c.findProgramColumns(table.Columns)
	if len(programCols) == 0 {
		return nil, apperrors.NewInputError(fmt.Sprintf("no program column detected in %s", table.Name), nil).
			WithContext("columns", table.Columns)
	}

	idIndex := -1
	if idCol != "" {
		idIndex = table.ColumnIndex(idCol)
	}
	programIndexes := make([]int, 0, len(programCols))
	for _, col := range programCols {
		programIndexes = append(programIndexes, table.ColumnIndex(col))
	}

	buckets := &Buckets{
		IdentityColumn:  idCol,
		ProgramColumns:  programCols,
		RowPrograms:     make([]domain.Program, len(table.Rows)),
		StudentPrograms: make(map[string]domain.Program),
		Counts: map[domain.Program]int{
			domain.ProgramPBHL:   0,
			domain.ProgramSPTH:   0,
			domain.ProgramNURS:   0,
			domain.ProgramMAJRLS: 0,
		},
	}

	for i := range table.Rows {
		agg := c.aggregateProgram(table, i, programIndexes)

		isPBHL := c.rules.matchPBHL(agg)
		isSPTH := c.rules.matchTokens(agg, c.rules.SPTHTokens)
		isNURS := c.rules.matchTokens(agg, c.rules.NURSTokens)
		isMajorless := c.rules.matchMajorless(agg)

		if isPBHL {
			buckets.Counts[domain.ProgramPBHL]++
		}
		if isSPTH {
			buckets.Counts[domain.ProgramSPTH]++
		}
		if isNURS {
			buckets.Counts[domain.ProgramNURS]++
		}
		if isMajorless {
			buckets.Counts[domain.ProgramMAJRLS]++
		}

		var program domain.Program
		switch {
		case isPBHL:
			program = domain.ProgramPBHL
		case isSPTH:
			program = c.spthPlan(table, i, idIndex)
		case isNURS:
			program = domain.ProgramNURS
		case isMajorless:
			program = domain.ProgramMAJRLS
		}
		buckets.RowPrograms[i] = program

		if program == "" || idIndex < 0 {
			continue
		}
		id := table.Cell(i, idIndex)
		if id == "" {
			continue
		}
		// First classification wins when a student spans several rows.
		if _, seen := buckets.StudentPrograms[id]; !seen {
			buckets.StudentPrograms[id] = program
		}
	}

	c.logger.InfoContext(ctx, "classified table rows",
		slog.String("table", table.Name),
		slog.String("identity_column", idCol),
		slog.Any("program_columns", programCols),
		slog.Int("pbhl", buckets.Counts[domain.ProgramPBHL]),
		slog.Int("spth", buckets.Counts[domain.ProgramSPTH]),
		slog.Int("nurs", buckets.Counts[domain.ProgramNURS]),
		slog.Int("majrls", buckets.Counts[domain.ProgramMAJRLS]))

	return buckets, nil
}

// spthPlan resolves the speech therapy plan from the cohort year in the
// student ID. Rows without a readable year stay in the generic bucket.
func (c *Classifier) spthPlan(table *domain.Table, row, idIndex int) domain.Program {
	if idIndex < 0 {
		return domain.ProgramSPTH
	}
	year, ok := YearFromID(table.Cell(row, idIndex))
	if !ok {
		return domain.ProgramSPTH
	}
	if year <= c.rules.SPTHSplitYear {
		return domain.ProgramSPTHOld
	}
	return domain.ProgramSPTHNew
}

// YearFromID extracts the first four-digit run from a student ID.
// IDs like "2019-00431" encode the cohort year up front.
func YearFromID(id string) (int, bool) {
	match := yearRe.FindString(strings.TrimSpace(id))
	if match == "" {
		return 0, false
	}
	var year int
	fmt.Sscanf(match, "%d", &year)
	return year, true
}

// detectIdentityColumn finds the student identity column, trying exact
// normalized names before fuzzy containment.
func (c *Classifier) detectIdentityColumn(columns []string) string {
	for _, col := range columns {
		n := normalizeColName(col)
		for _, want := range c.rules.IdentityExact {
			if n == want {
				return col
			}
		}
	}
	for _, col := range columns {
		n := normalizeColName(col)
		if strings.Contains(n, "studentid") || strings.Contains(n, "studentnumber") || n == "id" {
			return col
		}
	}
	return ""
}

// findProgramColumns finds every column that plausibly carries program
// information: the first exact match, then all fuzzy matches in table order.
func (c *Classifier) findProgramColumns(columns []string) []string {
	var cols []string
	seen := make(map[string]bool)

	for _, col := range columns {
		n := normalizeColName(col)
		for _, want := range c.rules.ProgramExact {
			if n == want {
				cols = append(cols, col)
				seen[col] = true
				break
			}
		}
		if len(cols) > 0 {
			break
		}
	}

	for _, col := range columns {
		if seen[col] {
			continue
		}
		n := normalizeColName(col)
		for _, root := range c.rules.ProgramRoots {
			if strings.Contains(n, root) {
				cols = append(cols, col)
				seen[col] = true
				break
			}
		}
	}

	return cols
}

// aggregateProgram joins the row's non-empty program cells so the matchers
// see every wording at once.
func (c *Classifier) aggregateProgram(table *domain.Table, row int, programIndexes []int) string {
	var parts []string
	for _, idx := range programIndexes {
		if val := table.Cell(row, idx); val != "" {
			parts = append(parts, val)
		}
	}
	return strings.Join(parts, " | ")
}

// matchTokens reports whether the stripped uppercase aggregate contains any
// of the tokens.
func (r *Rules) matchTokens(agg string, tokens []string) bool {
	np := stripNonAlnum(strings.ToUpper(agg))
	if np == "" {
		return false
	}
	for _, tok := range tokens {
		if strings.Contains(np, tok) {
			return true
		}
	}
	return false
}

// matchPBHL adds the spelled-out "public ... health" wording to the token
// match, since some exports write the program as free text.
func (r *Rules) matchPBHL(agg string) bool {
	if r.matchTokens(agg, r.PBHLTokens) {
		return true
	}
	up := strings.ToUpper(agg)
	return strings.Contains(up, "PUBLIC") && strings.Contains(up, "HEALTH")
}

// matchMajorless treats blank program cells as majorless along with the
// explicit spellings.
func (r *Rules) matchMajorless(agg string) bool {
	if strings.TrimSpace(agg) == "" {
		return true
	}
	return r.matchTokens(agg, r.MajorlessTokens)
}

// normalizeColName lowers a header and strips everything but letters and
// digits, so "Student_ID", "Student ID" and "StudentID" compare equal.
func normalizeColName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
