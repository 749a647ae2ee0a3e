package transform

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

var (
	courseRe = regexp.MustCompile(`^[A-Za-z]+[0-9]+[A-Za-z]*$`)
	yearRe   = regexp.MustCompile(`^[0-9]{4}$`)
)

// semesterNames fixes the keyword scan order so that tokens matching more
// than one reading always resolve the same way.
var semesterNames = []struct {
	name  string
	value domain.Semester
}{
	{"FALL", domain.SemesterFall},
	{"SPRING", domain.SemesterSpring},
	{"SUMMER", domain.SemesterSummer},
	{"WINTER", domain.SemesterWinter},
}

// Parser classifies raw course tokens. It is stateless after construction
// and safe for concurrent use.
type Parser struct {
	opts    Options
	delims  map[rune]bool
	lexicon *Lexicon
}

// NewParser builds a parser from the given options. Invalid options are
// reported here, before any parsing, as configuration errors: inverted or
// non-4-digit year bounds, delimiters that would eat token text, and
// grade aliases with non-canonical targets.
func NewParser(opts Options) (*Parser, error) {
	opts = opts.withDefaults()

	if opts.MinYear > opts.MaxYear {
		return nil, errors.NewConfigError("year bounds are inverted", nil).
			WithContext("min_year", opts.MinYear).
			WithContext("max_year", opts.MaxYear)
	}
	if opts.MinYear < 1000 || opts.MaxYear > 9999 {
		return nil, errors.NewConfigError("year bounds must be 4-digit years", nil).
			WithContext("min_year", opts.MinYear).
			WithContext("max_year", opts.MaxYear)
	}

	delims := make(map[rune]bool, len(opts.Delimiters))
	for _, r := range opts.Delimiters {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return nil, errors.NewConfigError("delimiter may not be a letter or digit", nil).
				WithContext("delimiter", string(r))
		}
		delims[r] = true
	}

	lexicon, err := NewLexicon(opts.GradeAliases)
	if err != nil {
		return nil, err
	}

	return &Parser{opts: opts, delims: delims, lexicon: lexicon}, nil
}

// Parse decomposes a raw token into course, semester, year and grade.
// It is total over all string inputs: the result is either a ParsedToken
// or a Failure, never a panic.
//
// The rules apply in fixed order, first match wins:
//
//  1. split on the accepted delimiters, dropping empty segments
//  2. exactly 3 or 4 segments remain (4 when semester and year are
//     delimiter-separated), otherwise MALFORMED_SHAPE
//  3. the first segment is letters, digits, then optional letters,
//     otherwise INVALID_COURSE
//  4. the middle holds a semester keyword adjacent to a 4-digit year in
//     either order, fused or split; a missing keyword is
//     INVALID_SEMESTER, a missing, malformed or out-of-bounds year is
//     INVALID_YEAR
//  5. the last segment resolves through the grade lexicon, otherwise
//     INVALID_GRADE
func (p *Parser) Parse(raw string) (ParsedToken, *Failure) {
	segs := p.split(raw)

	if len(segs) != 3 && len(segs) != 4 {
		return ParsedToken{}, newFailure(domain.RejectMalformedShape,
			"expected 3 logical segments, found %d in %q", len(segs), strings.TrimSpace(raw))
	}

	course, failure := p.matchCourse(segs[0])
	if failure != nil {
		return ParsedToken{}, failure
	}

	var semester domain.Semester
	var year int
	var gradeSeg string
	if len(segs) == 3 {
		semester, year, failure = p.matchFusedTerm(segs[1])
		gradeSeg = segs[2]
	} else {
		semester, year, failure = p.matchSplitTerm(segs[1], segs[2])
		gradeSeg = segs[3]
	}
	if failure != nil {
		return ParsedToken{}, failure
	}

	grade, ok := p.lexicon.Canonical(gradeSeg)
	if !ok {
		return ParsedToken{}, newFailure(domain.RejectInvalidGrade,
			"grade %q is not in the lexicon", gradeSeg)
	}

	return ParsedToken{Course: course, Semester: semester, Year: year, Grade: grade}, nil
}

// ParseHeaderToken classifies a column header. A header is either a
// complete token or carries only course, semester and year, leaving the
// grade to each row's cell value. The complete reading is tried first; if
// it fails, the grade-less reading is tried; if both fail, the failure of
// the complete reading is returned.
func (p *Parser) ParseHeaderToken(raw string) (HeaderToken, *Failure) {
	token, primary := p.Parse(raw)
	if primary == nil {
		return HeaderToken{
			Course:   token.Course,
			Semester: token.Semester,
			Year:     token.Year,
			Grade:    token.Grade,
			HasGrade: true,
		}, nil
	}

	segs := p.split(raw)

	var course string
	var semester domain.Semester
	var year int
	var failure *Failure
	switch len(segs) {
	case 2:
		if course, failure = p.matchCourse(segs[0]); failure != nil {
			return HeaderToken{}, primary
		}
		if semester, year, failure = p.matchFusedTerm(segs[1]); failure != nil {
			return HeaderToken{}, primary
		}
	case 3:
		if course, failure = p.matchCourse(segs[0]); failure != nil {
			return HeaderToken{}, primary
		}
		if semester, year, failure = p.matchSplitTerm(segs[1], segs[2]); failure != nil {
			return HeaderToken{}, primary
		}
	default:
		return HeaderToken{}, primary
	}

	return HeaderToken{Course: course, Semester: semester, Year: year}, nil
}

// Grade resolves a raw grade spelling against the active lexicon
func (p *Parser) Grade(raw string) (domain.GradeValue, bool) {
	return p.lexicon.Canonical(raw)
}

// Lexicon exposes the active grade lexicon
func (p *Parser) Lexicon() *Lexicon {
	return p.lexicon
}

// split tokenizes on the accepted delimiters. Segments are trimmed and
// whitespace-only segments count as empty and are dropped.
//
// A trailing - or + is ambiguous when it is also a delimiter: in
// BIO200_Winter-2025/C- it is the grade modifier, in MATH101-Fall-2024-
// it is a dangling separator. It stays with the final segment when that
// segment ends in a letter, so C- keeps its modifier while 2024- does
// not grow one.
func (p *Parser) split(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return p.delims[r] })
	segs := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			segs = append(segs, trimmed)
		}
	}

	trimmed := strings.TrimSpace(raw)
	if len(segs) > 0 && trimmed != "" {
		tail := trimmed[len(trimmed)-1]
		if (tail == '-' || tail == '+') && p.delims[rune(tail)] {
			last := segs[len(segs)-1]
			if end, _ := utf8.DecodeLastRuneInString(last); unicode.IsLetter(end) {
				segs[len(segs)-1] = last + string(tail)
			}
		}
	}
	return segs
}

// matchCourse validates the course segment and canonicalizes it to upper
// case. Courses are letters, digits, then optional section letters, as in
// MATH101 or SPTH201H.
func (p *Parser) matchCourse(seg string) (string, *Failure) {
	if !courseRe.MatchString(seg) {
		return "", newFailure(domain.RejectInvalidCourse,
			"course %q is not letters followed by digits", seg)
	}
	return strings.ToUpper(seg), nil
}

// matchFusedTerm decomposes a fused semester+year segment such as
// Fall2024 or 2024Fall. The keyword is scanned as a prefix first, then as
// a suffix, in the fixed semesterNames order; once a keyword is found the
// remainder must be the year.
func (p *Parser) matchFusedTerm(seg string) (domain.Semester, int, *Failure) {
	upper := strings.ToUpper(seg)
	for _, s := range semesterNames {
		if strings.HasPrefix(upper, s.name) {
			year, failure := p.matchYear(upper[len(s.name):])
			return s.value, year, failure
		}
	}
	for _, s := range semesterNames {
		if strings.HasSuffix(upper, s.name) {
			year, failure := p.matchYear(upper[:len(upper)-len(s.name)])
			return s.value, year, failure
		}
	}
	return "", 0, newFailure(domain.RejectInvalidSemester,
		"no semester keyword in %q", seg)
}

// matchSplitTerm decomposes a delimiter-separated semester and year pair,
// accepting the keyword in either position.
func (p *Parser) matchSplitTerm(a, b string) (domain.Semester, int, *Failure) {
	if semester, ok := semesterFor(a); ok {
		year, failure := p.matchYear(b)
		return semester, year, failure
	}
	if semester, ok := semesterFor(b); ok {
		year, failure := p.matchYear(a)
		return semester, year, failure
	}
	return "", 0, newFailure(domain.RejectInvalidSemester,
		"no semester keyword in %q or %q", a, b)
}

// matchYear validates a 4-digit year within the configured bounds. An
// empty remainder means the year was missing entirely.
func (p *Parser) matchYear(digits string) (int, *Failure) {
	if !yearRe.MatchString(digits) {
		return 0, newFailure(domain.RejectInvalidYear,
			"year %q is not a 4-digit number", digits)
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, newFailure(domain.RejectInvalidYear,
			"year %q is not numeric", digits)
	}
	if year < p.opts.MinYear || year > p.opts.MaxYear {
		return 0, newFailure(domain.RejectInvalidYear,
			"year %d outside bounds [%d, %d]", year, p.opts.MinYear, p.opts.MaxYear)
	}
	return year, nil
}

func semesterFor(seg string) (domain.Semester, bool) {
	upper := strings.ToUpper(seg)
	for _, s := range semesterNames {
		if upper == s.name {
			return s.value, true
		}
	}
	return "", false
}
