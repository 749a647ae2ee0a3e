package exporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"acadcli/internal/config"
	"acadcli/pkg/contracts/domain"
)

func TestReportExporter_ExportAdvisingReport(t *testing.T) {
	paths := testPaths(t)
	exp := NewReportExporter(nil, paths)

	summary := []domain.AdvisingSummaryRow{
		{CourseCode: "ARAB201", YesCount: 2, OptionalCount: 0, NotAdvisedCount: 1},
		{CourseCode: "PBHL330", YesCount: 1, OptionalCount: 1, NotAdvisedCount: 0},
	}
	groups := []domain.CourseGroup{
		{Students: []string{"amy", "zoe"}, Courses: []string{"ARAB201", "PBHL330"}},
		{Students: []string{"cat"}, Courses: nil},
	}

	err := exp.ExportAdvisingReport(context.Background(), summary, groups)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.AdvisingReportPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{config.AdvisingSummarySheet, config.CourseGroupsSheet}, f.GetSheetList())

	summaryRows, err := f.GetRows(config.AdvisingSummarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Course Code", "Yes", "Optional", "Not Advised"},
		{"ARAB201", "2", "0", "1"},
		{"PBHL330", "1", "1", "0"},
	}, summaryRows)

	groupRows, err := f.GetRows(config.CourseGroupsSheet)
	require.NoError(t, err)
	require.Len(t, groupRows, 3)
	assert.Equal(t, []string{"Students", "Course 1", "Course 2"}, groupRows[0])
	assert.Equal(t, []string{"amy, zoe", "ARAB201", "PBHL330"}, groupRows[1])
	// Trailing empty cells are trimmed by the reader, so the course-free
	// group comes back as just its students cell.
	assert.Equal(t, []string{"cat"}, groupRows[2])
}

func TestReportExporter_ExportAdvisingReport_NoGroups(t *testing.T) {
	paths := testPaths(t)
	exp := NewReportExporter(nil, paths)

	err := exp.ExportAdvisingReport(context.Background(), nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.AdvisingReportPath)
	require.NoError(t, err)
	defer f.Close()

	groupRows, err := f.GetRows(config.CourseGroupsSheet)
	require.NoError(t, err)
	require.Len(t, groupRows, 1)
	assert.Equal(t, []string{"Students"}, groupRows[0])
}

func TestReportExporter_ExportInternshipReport(t *testing.T) {
	paths := testPaths(t)
	exp := NewReportExporter(nil, paths)

	table := &domain.Table{
		Name:    "internship_report",
		Columns: []string{"Student", "MED100", "SURG200"},
		Rows: [][]string{
			{"alice", "120", "0"},
			{"bob", "0", "40"},
		},
	}

	err := exp.ExportInternshipReport(context.Background(), table, []string{"cara"})
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.InternshipReportPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{config.InternshipSheetName, config.InternshipSkippedSheet}, f.GetSheetList())

	rows, err := f.GetRows(config.InternshipSheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Student", "MED100", "SURG200"},
		{"alice", "120", "0"},
		{"bob", "0", "40"},
	}, rows)

	skipped, err := f.GetRows(config.InternshipSkippedSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"File"},
		{"cara"},
	}, skipped)
}

func TestReportExporter_ExportInternshipReport_NoSkipped(t *testing.T) {
	paths := testPaths(t)
	exp := NewReportExporter(nil, paths)

	table := &domain.Table{
		Columns: []string{"Student", "MED100"},
		Rows:    [][]string{{"alice", "120"}},
	}

	err := exp.ExportInternshipReport(context.Background(), table, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.InternshipReportPath)
	require.NoError(t, err)
	defer f.Close()

	skipped, err := f.GetRows(config.InternshipSkippedSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"File"}}, skipped)
}
