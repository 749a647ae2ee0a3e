package transform

import (
	"sort"
	"strings"

	"acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// Lexicon maps accepted grade spellings to their canonical GradeValue.
// Lookups are case-insensitive. The canonical set is closed:
//
//	A+ A A- B+ B B- C+ C C- D+ D D- F+ F F- P R INCOMPLETE
//
// Accepted spellings beyond the canonical ones themselves:
//
//	P*          -> P
//	INC         -> INCOMPLETE
//
// Anything else is out of the lexicon unless added through the alias
// table. Spellings seen in the wild but not listed here (for example
// PASS) are deliberately not guessed at; institutions add them as
// aliases.
type Lexicon struct {
	aliases map[string]domain.GradeValue
}

var (
	gradeLetters   = []string{"A", "B", "C", "D", "F"}
	gradeModifiers = []string{"", "+", "-"}
)

// canonicalGrades returns the closed canonical set
func canonicalGrades() map[domain.GradeValue]bool {
	set := make(map[domain.GradeValue]bool)
	for _, letter := range gradeLetters {
		for _, mod := range gradeModifiers {
			set[domain.GradeValue(letter+mod)] = true
		}
	}
	set[domain.GradePass] = true
	set[domain.GradeRepeat] = true
	set[domain.GradeIncomplete] = true
	return set
}

// NewLexicon builds the grade lexicon, merging any extra aliases into the
// built-in table. Alias keys are matched case-insensitively; each value
// must be a canonical grade, and an alias may not shadow a canonical
// spelling.
func NewLexicon(extra map[string]string) (*Lexicon, error) {
	aliases := make(map[string]domain.GradeValue)
	canonical := canonicalGrades()

	for grade := range canonical {
		aliases[string(grade)] = grade
	}
	aliases["P*"] = domain.GradePass
	aliases["INC"] = domain.GradeIncomplete

	for spelling, target := range extra {
		key := strings.ToUpper(strings.TrimSpace(spelling))
		if key == "" {
			return nil, errors.NewConfigError("grade alias with empty spelling", nil)
		}
		value := domain.GradeValue(strings.ToUpper(strings.TrimSpace(target)))
		if !canonical[value] {
			return nil, errors.NewConfigError("grade alias target is not canonical", nil).
				WithContext("alias", spelling).
				WithContext("target", target)
		}
		if existing, ok := aliases[key]; ok && existing != value {
			return nil, errors.NewConfigError("grade alias conflicts with existing spelling", nil).
				WithContext("alias", spelling)
		}
		aliases[key] = value
	}

	return &Lexicon{aliases: aliases}, nil
}

// Canonical resolves a raw grade spelling to its canonical GradeValue
func (l *Lexicon) Canonical(raw string) (domain.GradeValue, bool) {
	grade, ok := l.aliases[strings.ToUpper(strings.TrimSpace(raw))]
	return grade, ok
}

// CanonicalValues lists the canonical set in sorted order
func (l *Lexicon) CanonicalValues() []domain.GradeValue {
	canonical := canonicalGrades()
	values := make([]domain.GradeValue, 0, len(canonical))
	for grade := range canonical {
		values = append(values, grade)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// Spellings lists every accepted spelling in sorted order, for reporting
// the active lexicon to users.
func (l *Lexicon) Spellings() []string {
	spellings := make([]string, 0, len(l.aliases))
	for spelling := range l.aliases {
		spellings = append(spellings, spelling)
	}
	sort.Strings(spellings)
	return spellings
}
