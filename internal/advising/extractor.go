// Package advising extracts current-semester advising decisions from
// per-student workbooks and aggregates them across a cohort.
//
// Each student workbook carries a "Current Semester Advising" sheet whose
// table starts at row 8. The course code and status columns sit at fixed
// positions that differ by degree plan, so extraction is positional rather
// than header-driven. Two aggregations are produced: per-course status
// counts, and conflict-free groups of students who share the exact same set
// of advised courses.
package advising

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"acadcli/internal/config"
	apperrors "acadcli/internal/errors"
	"acadcli/pkg/contracts/domain"
)

// startRow is the first data row of the advising sheet, 0-based (Excel row 8)
const startRow = 7

// PlanLayout gives the 0-based column positions of the course code and
// status cells for one degree plan's advising sheet.
type PlanLayout struct {
	CourseCol int
	StatusCol int
}

// LayoutFor returns the sheet layout for a degree program. Only the programs
// with a known advising template are supported.
func LayoutFor(program domain.Program) (PlanLayout, error) {
	switch program {
	case domain.ProgramPBHL:
		return PlanLayout{CourseCol: 0, StatusCol: 7}, nil
	case domain.ProgramSPTHOld, domain.ProgramSPTHNew:
		return PlanLayout{CourseCol: 1, StatusCol: 7}, nil
	default:
		return PlanLayout{}, apperrors.NewConfigError(
			fmt.Sprintf("no advising sheet layout for program %q", program), nil)
	}
}

// Report is the outcome of extracting a set of student workbooks
type Report struct {
	Students []domain.StudentAdvising
	Summary  []domain.AdvisingSummaryRow
	Groups   []domain.CourseGroup

	// Skipped lists files that could not be read or had no advising sheet
	Skipped []string
}

// Extractor reads advising sheets for one degree plan
type Extractor struct {
	logger *slog.Logger
	layout PlanLayout
}

// NewExtractor creates an extractor for the given program's sheet layout
func NewExtractor(logger *slog.Logger, program domain.Program) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	layout, err := LayoutFor(program)
	if err != nil {
		return nil, err
	}
	return &Extractor{logger: logger, layout: layout}, nil
}

// ExtractFiles reads every workbook, skipping unreadable ones, and builds
// the summary and conflict-free groups over the rest.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) *Report {
	report := &Report{}

	for _, path := range paths {
		student, err := e.ExtractFile(ctx, path)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping advising workbook",
				slog.String("path", path),
				slog.String("error", err.Error()))
			report.Skipped = append(report.Skipped, stem(path))
			continue
		}
		report.Students = append(report.Students, *student)
	}

	report.Summary = Summarize(report.Students)
	report.Groups = ConflictFreeGroups(report.Students)

	e.logger.InfoContext(ctx, "advising extraction complete",
		slog.Int("students", len(report.Students)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("courses", len(report.Summary)),
		slog.Int("groups", len(report.Groups)))

	return report
}

// ExtractFile reads one student workbook. The student label is the file
// stem; the sheets carry no reliable identity cell.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*domain.StudentAdvising, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.AdvisingSheetName)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q in %s", config.AdvisingSheetName, path))
	}

	student := e.ExtractRows(stem(path), rows)

	e.logger.DebugContext(ctx, "extracted advising sheet",
		slog.String("path", path),
		slog.String("student", student.Student),
		slog.Int("entries", len(student.Entries)))

	return student, nil
}

// ExtractRows pulls the course and status columns out of raw sheet rows.
// Sheet rows arrive with trailing empty cells trimmed, so a row that stops
// before the status column reads as not advised.
func (e *Extractor) ExtractRows(student string, rows [][]string) *domain.StudentAdvising {
	out := &domain.StudentAdvising{Student: student}

	for i := startRow; i < len(rows); i++ {
		course := cellAt(rows[i], e.layout.CourseCol)
		if course == "" || strings.EqualFold(course, "course code") {
			continue
		}
		key := CourseKey(course)
		if key == "" {
			continue
		}
		out.Entries = append(out.Entries, domain.AdvisingEntry{
			Course:    course,
			CourseKey: key,
			Status:    NormalizeStatus(cellAt(rows[i], e.layout.StatusCol)),
		})
	}

	return out
}

// Summarize counts Yes / Optional / Not Advised per course across students.
// When one student's sheet lists a course more than once, only the strongest
// status contributes.
func Summarize(students []domain.StudentAdvising) []domain.AdvisingSummaryRow {
	counts := make(map[string]*domain.AdvisingSummaryRow)

	for _, student := range students {
		for key, status := range strongestStatuses(student) {
			row := counts[key]
			if row == nil {
				row = &domain.AdvisingSummaryRow{CourseCode: key}
				counts[key] = row
			}
			switch status {
			case domain.AdvisingYes:
				row.YesCount++
			case domain.AdvisingOptional:
				row.OptionalCount++
			default:
				row.NotAdvisedCount++
			}
		}
	}

	out := make([]domain.AdvisingSummaryRow, 0, len(counts))
	for _, row := range counts {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out
}

// ConflictFreeGroups buckets students by their exact set of advised courses.
// Students whose sheets held entries but no "Yes" rows form the empty-set
// group; students with no entries at all are left out.
func ConflictFreeGroups(students []domain.StudentAdvising) []domain.CourseGroup {
	groups := make(map[string]*domain.CourseGroup)

	for _, student := range students {
		if len(student.Entries) == 0 {
			continue
		}

		yesSet := make(map[string]bool)
		for key, status := range strongestStatuses(student) {
			if status == domain.AdvisingYes {
				yesSet[key] = true
			}
		}

		courses := make([]string, 0, len(yesSet))
		for key := range yesSet {
			courses = append(courses, key)
		}
		sort.Strings(courses)

		groupKey := strings.Join(courses, "\x1f")
		group := groups[groupKey]
		if group == nil {
			group = &domain.CourseGroup{Courses: courses}
			groups[groupKey] = group
		}
		group.Students = append(group.Students, student.Student)
	}

	out := make([]domain.CourseGroup, 0, len(groups))
	for _, group := range groups {
		sort.Strings(group.Students)
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i].Students, ", ") < strings.Join(out[j].Students, ", ")
	})
	return out
}

// strongestStatuses resolves one student's entries to a single status per
// course key, keeping the strongest when a course repeats.
func strongestStatuses(student domain.StudentAdvising) map[string]domain.AdvisingStatus {
	statuses := make(map[string]domain.AdvisingStatus, len(student.Entries))
	for _, entry := range student.Entries {
		current, ok := statuses[entry.CourseKey]
		if !ok || entry.Status.Rank() > current.Rank() {
			statuses[entry.CourseKey] = entry.Status
		}
	}
	return statuses
}

// NormalizeStatus folds the free-text status cell into the closed set.
// Only clear yes/optional readings count; everything else is not advised.
func NormalizeStatus(raw string) domain.AdvisingStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return domain.AdvisingYes
	case "optional":
		return domain.AdvisingOptional
	default:
		return domain.AdvisingNotAdvised
	}
}

// CourseKey uppercases a course code and strips all interior whitespace so
// "ARAB 201" and "ARAB201" group together.
func CourseKey(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), "")
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
