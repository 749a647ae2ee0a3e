package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"acadcli/internal/config"
	"acadcli/pkg/contracts/domain"
)

// ReportExporter writes the advising and internship report workbooks
type ReportExporter struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewReportExporter creates a report exporter rooted at the resolved output paths
func NewReportExporter(logger *slog.Logger, paths *config.Paths) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{logger: logger, paths: paths}
}

// ExportAdvisingReport writes advising_report.xlsx: per-course status
// counts on the summary sheet, and the conflict-free groups on a second
// sheet with one row per group and students joined by comma.
func (e *ReportExporter) ExportAdvisingReport(ctx context.Context, summary []domain.AdvisingSummaryRow, groups []domain.CourseGroup) error {
	summaryRows := make([][]string, 0, len(summary))
	for _, row := range summary {
		summaryRows = append(summaryRows, []string{
			row.CourseCode,
			formatInt(row.YesCount),
			formatInt(row.OptionalCount),
			formatInt(row.NotAdvisedCount),
		})
	}

	maxCourses := 0
	for _, g := range groups {
		if len(g.Courses) > maxCourses {
			maxCourses = len(g.Courses)
		}
	}
	groupHeaders := []string{"Students"}
	for i := 1; i <= maxCourses; i++ {
		groupHeaders = append(groupHeaders, fmt.Sprintf("Course %d", i))
	}
	groupRows := make([][]string, 0, len(groups))
	for _, g := range groups {
		groupRows = append(groupRows, append([]string{strings.Join(g.Students, ", ")}, g.Courses...))
	}

	sheets := []sheetData{
		{
			Name:    config.AdvisingSummarySheet,
			Headers: []string{"Course Code", "Yes", "Optional", "Not Advised"},
			Rows:    summaryRows,
		},
		{
			Name:    config.CourseGroupsSheet,
			Headers: groupHeaders,
			Rows:    groupRows,
		},
	}
	if err := writeWorkbook(e.paths.AdvisingReportPath, sheets); err != nil {
		return fmt.Errorf("failed to write advising report: %w", err)
	}
	e.logger.InfoContext(ctx, "advising report exported",
		slog.String("path", e.paths.AdvisingReportPath),
		slog.Int("courses", len(summary)),
		slog.Int("groups", len(groups)))
	return nil
}

// ExportInternshipReport writes internship_report.xlsx: the consolidated
// hours table plus a sheet naming the workbooks that were skipped.
func (e *ReportExporter) ExportInternshipReport(ctx context.Context, table *domain.Table, skipped []string) error {
	skippedRows := make([][]string, 0, len(skipped))
	for _, file := range skipped {
		skippedRows = append(skippedRows, []string{file})
	}
	sheets := []sheetData{
		{Name: config.InternshipSheetName, Headers: table.Columns, Rows: table.Rows},
		{Name: config.InternshipSkippedSheet, Headers: []string{"File"}, Rows: skippedRows},
	}
	if err := writeWorkbook(e.paths.InternshipReportPath, sheets); err != nil {
		return fmt.Errorf("failed to write internship report: %w", err)
	}
	e.logger.InfoContext(ctx, "internship report exported",
		slog.String("path", e.paths.InternshipReportPath),
		slog.Int("students", len(table.Rows)),
		slog.Int("skipped", len(skipped)))
	return nil
}
