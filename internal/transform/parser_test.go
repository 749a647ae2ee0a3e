package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acadcli/pkg/contracts/domain"
)

func mustParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	parser, err := NewParser(opts)
	require.NoError(t, err)
	return parser
}

func TestParser_Parse_ValidTokens(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	tests := []struct {
		name string
		raw  string
		want ParsedToken
	}{
		{
			name: "hyphen delimited with fused term",
			raw:  "MATH101-Fall2024-A",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA},
		},
		{
			name: "mixed slash and hyphen with split term",
			raw:  "SPTH201/FALL-2016/F",
			want: ParsedToken{Course: "SPTH201", Semester: domain.SemesterFall, Year: 2016, Grade: domain.GradeF},
		},
		{
			name: "underscore delimited lower case",
			raw:  "math101_fall2024_a",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA},
		},
		{
			name: "year before semester fused",
			raw:  "CS50-2024Fall-B+",
			want: ParsedToken{Course: "CS50", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeBPlus},
		},
		{
			name: "all three delimiters mixed",
			raw:  "BIO200_Winter-2025/C-",
			want: ParsedToken{Course: "BIO200", Semester: domain.SemesterWinter, Year: 2025, Grade: domain.GradeCMinus},
		},
		{
			name: "split term semester first",
			raw:  "MATH101-FALL-2024-B",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeB},
		},
		{
			name: "split term year first",
			raw:  "MATH101-2016-FALL-P",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2016, Grade: domain.GradePass},
		},
		{
			name: "incomplete alias",
			raw:  "PHYS1-Summer2000-INC",
			want: ParsedToken{Course: "PHYS1", Semester: domain.SemesterSummer, Year: 2000, Grade: domain.GradeIncomplete},
		},
		{
			name: "starred pass alias",
			raw:  "NURS110/SPRING-2019/P*",
			want: ParsedToken{Course: "NURS110", Semester: domain.SemesterSpring, Year: 2019, Grade: domain.GradePass},
		},
		{
			name: "course with trailing section letter",
			raw:  "ENGL10H-Spring2024-D+",
			want: ParsedToken{Course: "ENGL10H", Semester: domain.SemesterSpring, Year: 2024, Grade: domain.GradeDPlus},
		},
		{
			name: "repeat grade",
			raw:  "SPTH305_WINTER2021_R",
			want: ParsedToken{Course: "SPTH305", Semester: domain.SemesterWinter, Year: 2021, Grade: domain.GradeRepeat},
		},
		{
			name: "doubled delimiter collapses",
			raw:  "MATH101--Fall2024-A",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA},
		},
		{
			name: "leading and trailing delimiters ignored",
			raw:  "/MATH101/Fall2024/A/",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA},
		},
		{
			name: "spaces around segments tolerated",
			raw:  " MATH101 - Fall2024 - A ",
			want: ParsedToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, failure := parser.Parse(tt.raw)
			require.Nil(t, failure, "expected %q to parse, got %+v", tt.raw, failure)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestParser_Parse_Rejections(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	tests := []struct {
		name       string
		raw        string
		wantReason domain.RejectReason
	}{
		{
			name:       "empty string",
			raw:        "",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "whitespace only",
			raw:        "   ",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "no delimiters",
			raw:        "weird column",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "two segments",
			raw:        "MATH101-Fall2024",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "five segments",
			raw:        "MATH101-Fall-2024-A-X",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "whitespace-only segment counts as empty",
			raw:        "MATH101- -A",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "course starts with digits",
			raw:        "101-Fall2024-A",
			wantReason: domain.RejectInvalidCourse,
		},
		{
			name:       "course has no digits",
			raw:        "MATH-Fall2024-A",
			wantReason: domain.RejectInvalidCourse,
		},
		{
			name:       "course with punctuation",
			raw:        "M@TH101-Fall2024-A",
			wantReason: domain.RejectInvalidCourse,
		},
		{
			name:       "unknown semester keyword fused",
			raw:        "MATH101-Autumn2024-A",
			wantReason: domain.RejectInvalidSemester,
		},
		{
			name:       "fused segment is year only",
			raw:        "MATH101-2024-A",
			wantReason: domain.RejectInvalidSemester,
		},
		{
			name:       "split pair with no keyword",
			raw:        "MATH101-2024-2025-B",
			wantReason: domain.RejectInvalidSemester,
		},
		{
			name:       "semester without year",
			raw:        "MATH101-Fall-A",
			wantReason: domain.RejectInvalidYear,
		},
		{
			name:       "split keyword with non-numeric year",
			raw:        "MATH101-Fall-Spring-B",
			wantReason: domain.RejectInvalidYear,
		},
		{
			name:       "two-digit year",
			raw:        "MATH101-Fall24-A",
			wantReason: domain.RejectInvalidYear,
		},
		{
			name:       "five-digit year",
			raw:        "MATH101-Fall02024-A",
			wantReason: domain.RejectInvalidYear,
		},
		{
			name:       "grade outside lexicon",
			raw:        "MATH101-Fall2024-Z",
			wantReason: domain.RejectInvalidGrade,
		},
		{
			name:       "undocumented grade spelling",
			raw:        "MATH101-Fall2024-PASS",
			wantReason: domain.RejectInvalidGrade,
		},
		{
			name:       "course failure wins over later failures",
			raw:        "101-XYZ-??",
			wantReason: domain.RejectInvalidCourse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, failure := parser.Parse(tt.raw)
			require.NotNil(t, failure, "expected %q to be rejected", tt.raw)
			assert.Equal(t, tt.wantReason, failure.Reason)
			assert.NotEmpty(t, failure.Detail)
		})
	}
}

func TestParser_Parse_YearBounds(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	tests := []struct {
		name     string
		raw      string
		wantYear int
		rejected bool
	}{
		{name: "lower bound accepted", raw: "MATH101-Fall1900-A", wantYear: 1900},
		{name: "upper bound accepted", raw: "MATH101-Fall2100-A", wantYear: 2100},
		{name: "below lower bound rejected", raw: "MATH101-Fall1899-A", rejected: true},
		{name: "above upper bound rejected", raw: "MATH101-Fall2101-A", rejected: true},
		{name: "implausible historic year rejected", raw: "MATH101-Fall1066-A", rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, failure := parser.Parse(tt.raw)
			if tt.rejected {
				require.NotNil(t, failure)
				assert.Equal(t, domain.RejectInvalidYear, failure.Reason)
				return
			}
			require.Nil(t, failure)
			assert.Equal(t, tt.wantYear, token.Year)
		})
	}
}

func TestParser_Parse_CaseInsensitive(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	lower, failLower := parser.Parse("math101-FALL2024-a")
	upper, failUpper := parser.Parse("MATH101-Fall2024-A")

	require.Nil(t, failLower)
	require.Nil(t, failUpper)
	assert.Equal(t, upper, lower)
}

func TestParser_Parse_RoundTrip(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	raws := []string{
		"MATH101-Fall2024-A",
		"SPTH201/FALL-2016/F",
		"CS50-2024Fall-B+",
		"PHYS1-Summer2000-INC",
		"NURS110/SPRING-2019/P*",
		"SPTH305_WINTER2021_R",
	}

	for _, raw := range raws {
		t.Run(raw, func(t *testing.T) {
			first, failure := parser.Parse(raw)
			require.Nil(t, failure)

			again, failure := parser.Parse(first.CanonicalString())
			require.Nil(t, failure, "canonical form %q must re-parse", first.CanonicalString())
			assert.Equal(t, first, again)
		})
	}
}

func TestParser_Parse_Total(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	inputs := []string{
		"",
		" ",
		"\t\n",
		"---___///",
		"日本語テキスト",
		"MATH101-秋2024-A",
		"🎓-🎓-🎓",
		strings.Repeat("A-", 5000),
		string(rune(0)),
		"MATH101-Fall2024-A\x00",
	}

	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			token, failure := parser.Parse(raw)
			if failure == nil {
				assert.NotEmpty(t, token.Course)
			} else {
				assert.NotEmpty(t, string(failure.Reason))
			}
		}, "input %q", raw)
	}
}

func TestParser_Parse_CustomOptions(t *testing.T) {
	t.Run("custom delimiter set", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Delimiters = "."
		parser := mustParser(t, opts)

		token, failure := parser.Parse("MATH101.Fall2024.A")
		require.Nil(t, failure)
		assert.Equal(t, "MATH101", token.Course)

		_, failure = parser.Parse("MATH101-Fall2024-A")
		require.NotNil(t, failure)
		assert.Equal(t, domain.RejectMalformedShape, failure.Reason)
	})

	t.Run("custom year bounds", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MinYear = 2000
		opts.MaxYear = 2030
		parser := mustParser(t, opts)

		_, failure := parser.Parse("MATH101-Fall1999-A")
		require.NotNil(t, failure)
		assert.Equal(t, domain.RejectInvalidYear, failure.Reason)

		_, failure = parser.Parse("MATH101-Fall2000-A")
		assert.Nil(t, failure)
	})

	t.Run("extra grade alias", func(t *testing.T) {
		opts := DefaultOptions()
		opts.GradeAliases = map[string]string{"PASS": "P"}
		parser := mustParser(t, opts)

		token, failure := parser.Parse("MATH101-Fall2024-pass")
		require.Nil(t, failure)
		assert.Equal(t, domain.GradePass, token.Grade)
	})
}

func TestNewParser_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts func() Options
	}{
		{
			name: "inverted year bounds",
			opts: func() Options {
				o := DefaultOptions()
				o.MinYear = 2100
				o.MaxYear = 1900
				return o
			},
		},
		{
			name: "three-digit lower bound",
			opts: func() Options {
				o := DefaultOptions()
				o.MinYear = 999
				return o
			},
		},
		{
			name: "letter delimiter",
			opts: func() Options {
				o := DefaultOptions()
				o.Delimiters = "-x"
				return o
			},
		},
		{
			name: "digit delimiter",
			opts: func() Options {
				o := DefaultOptions()
				o.Delimiters = "1"
				return o
			},
		},
		{
			name: "alias with non-canonical target",
			opts: func() Options {
				o := DefaultOptions()
				o.GradeAliases = map[string]string{"X": "Q"}
				return o
			},
		},
		{
			name: "alias redefining canonical spelling",
			opts: func() Options {
				o := DefaultOptions()
				o.GradeAliases = map[string]string{"A": "B"}
				return o
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.opts())
			assert.Error(t, err)
		})
	}
}

func TestParser_ParseHeaderToken(t *testing.T) {
	parser := mustParser(t, DefaultOptions())

	tests := []struct {
		name       string
		raw        string
		want       HeaderToken
		wantReason domain.RejectReason
	}{
		{
			name: "complete token header",
			raw:  "MATH101-Fall2024-A",
			want: HeaderToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024, Grade: domain.GradeA, HasGrade: true},
		},
		{
			name: "grade-less fused header",
			raw:  "MATH101-Fall2024",
			want: HeaderToken{Course: "MATH101", Semester: domain.SemesterFall, Year: 2024},
		},
		{
			name: "grade-less split header",
			raw:  "PBHL210_Fall_2023",
			want: HeaderToken{Course: "PBHL210", Semester: domain.SemesterFall, Year: 2023},
		},
		{
			name: "grade-less split header year first",
			raw:  "PBHL210-2023-FALL",
			want: HeaderToken{Course: "PBHL210", Semester: domain.SemesterFall, Year: 2023},
		},
		{
			name:       "plain identity header",
			raw:        "StudentID",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "slot column header",
			raw:        "COURSE_1",
			wantReason: domain.RejectMalformedShape,
		},
		{
			name:       "failed grade-less reading keeps complete-reading failure",
			raw:        "MATH101-FALLX-B",
			wantReason: domain.RejectInvalidYear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, failure := parser.ParseHeaderToken(tt.raw)
			if tt.wantReason != "" {
				require.NotNil(t, failure)
				assert.Equal(t, tt.wantReason, failure.Reason)
				return
			}
			require.Nil(t, failure)
			assert.Equal(t, tt.want, token)
		})
	}
}
