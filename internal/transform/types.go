package transform

import (
	"fmt"

	"acadcli/pkg/contracts/domain"
)

// Mode selects how a table encodes course tokens
type Mode string

const (
	// ModeColumnEncoded treats every non-identity column header as the
	// token; the cell value marks presence (and supplies the grade when
	// the header carries none).
	ModeColumnEncoded Mode = "COLUMN_ENCODED"
	// ModeCellEncoded treats the cell values of designated course-slot
	// columns as the tokens.
	ModeCellEncoded Mode = "CELL_ENCODED"
)

// Options configures the parser and normalizer. Every knob institutions
// may need to adapt is an explicit parameter here rather than a hidden
// constant.
type Options struct {
	// Mode selects the table layout. Required by the normalizer, ignored
	// by the parser.
	Mode Mode `yaml:"mode"`
	// IdentityColumn names the column whose cell value is carried through
	// as the student identity.
	IdentityColumn string `yaml:"identity_column"`
	// CourseSlotColumns names the columns whose cell values hold tokens
	// in cell-encoded mode. Visited in table column order regardless of
	// the order given here.
	CourseSlotColumns []string `yaml:"course_slot_columns"`
	// MinYear and MaxYear bound the accepted 4-digit year, inclusive.
	MinYear int `yaml:"min_year"`
	MaxYear int `yaml:"max_year"`
	// Delimiters holds the accepted separator characters. Any rune in the
	// string splits a token.
	Delimiters string `yaml:"delimiters"`
	// GradeAliases adds institution-specific spellings to the grade
	// lexicon, mapping each alias to a canonical grade. Aliases may not
	// redefine canonical spellings.
	GradeAliases map[string]string `yaml:"grade_aliases"`
}

// DefaultOptions returns the documented defaults: delimiters -, _ and /,
// year bounds [1900, 2100], no extra grade aliases. Mode and
// IdentityColumn are left unset since they depend on the input table.
func DefaultOptions() Options {
	return Options{
		MinYear:    1900,
		MaxYear:    2100,
		Delimiters: "-_/",
	}
}

// withDefaults fills unset fields with the documented defaults
func (o Options) withDefaults() Options {
	if o.MinYear == 0 {
		o.MinYear = 1900
	}
	if o.MaxYear == 0 {
		o.MaxYear = 2100
	}
	if o.Delimiters == "" {
		o.Delimiters = "-_/"
	}
	return o
}

// ParsedToken represents the decomposed segments of a well-formed token.
// Course, semester and grade are canonicalized to their uppercase forms,
// so tokens differing only in case decompose to equal ParsedTokens.
type ParsedToken struct {
	Course   string
	Semester domain.Semester
	Year     int
	Grade    domain.GradeValue
}

// CanonicalString reconstructs the canonical spelling of the token.
// Parsing the result yields an equal ParsedToken.
func (t ParsedToken) CanonicalString() string {
	return fmt.Sprintf("%s-%s%d-%s", t.Course, t.Semester, t.Year, t.Grade)
}

// HeaderToken represents a parsed column header. Headers may be complete
// tokens or carry only course, semester and year, in which case HasGrade
// is false and each row's cell value supplies the grade.
type HeaderToken struct {
	Course   string
	Semester domain.Semester
	Year     int
	Grade    domain.GradeValue
	HasGrade bool
}

// Failure describes why a raw string was rejected. Failures are ordinary
// values, never panics or control-flow errors.
type Failure struct {
	Reason domain.RejectReason
	Detail string
}

func newFailure(reason domain.RejectReason, format string, args ...interface{}) *Failure {
	return &Failure{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
