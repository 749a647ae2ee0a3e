package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"acadcli/internal/config"
	"acadcli/pkg/contracts/domain"
)

// Exporter writes the outputs of a normalization run: the tidy record
// exports in CSV and workbook form, the rejection audit, the JSON run
// summary, and the optional per-program split workbooks.
type Exporter struct {
	logger *slog.Logger
	paths  *config.Paths
	csv    *CSVWriter
}

// NewExporter creates an exporter rooted at the resolved output paths
func NewExporter(logger *slog.Logger, paths *config.Paths) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		logger: logger,
		paths:  paths,
		csv:    NewCSVWriter(paths),
	}
}

// recordHeaders returns the tidy column order shared by every record
// export: identity first, then the course observation fields.
func recordHeaders() []string {
	return []string{"StudentID", "Course", "Semester", "Year", "Grade"}
}

func rejectionHeaders() []string {
	return []string{"Source", "StudentID", "RowIndex", "Column", "Raw", "Reason", "Detail"}
}

func recordRow(r domain.CourseRecord) []string {
	return []string{r.StudentID, r.Course, string(r.Semester), formatInt(r.Year), string(r.Grade)}
}

func rejectionRow(r domain.Rejection) []string {
	return []string{r.Source, r.StudentID, formatInt(r.RowIndex), r.Column, r.Raw, string(r.Reason), r.Detail}
}

// ExportTidyCSV writes the tidy records table to tidy_records.csv. Rows are
// streamed in the order given; the batch runner hands them over already
// sorted by source file.
func (e *Exporter) ExportTidyCSV(ctx context.Context, records []domain.CourseRecord) error {
	stream, err := e.csv.CreateStreamWriter(config.TidyRecordsCSV, recordHeaders())
	if err != nil {
		return fmt.Errorf("failed to create tidy records writer: %w", err)
	}
	for _, r := range records {
		if err := stream.WriteRecord(recordRow(r)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record for %s: %w", r.StudentID, err)
		}
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close tidy records writer: %w", err)
	}
	e.logger.InfoContext(ctx, "tidy records exported",
		slog.String("path", e.paths.TidyRecordsCSVPath),
		slog.Int("records", len(records)))
	return nil
}

// ExportRejectionsCSV writes the rejection audit to rejections.csv. An
// empty rejection list still produces the file with its header row so a
// caller can always open it.
func (e *Exporter) ExportRejectionsCSV(ctx context.Context, rejections []domain.Rejection) error {
	rows := make([][]string, 0, len(rejections))
	for _, r := range rejections {
		rows = append(rows, rejectionRow(r))
	}
	if err := e.csv.WriteSimpleCSV(config.RejectionsCSV, rejectionHeaders(), rows); err != nil {
		return fmt.Errorf("failed to write rejections csv: %w", err)
	}
	e.logger.InfoContext(ctx, "rejections exported",
		slog.String("path", e.paths.RejectionsCSVPath),
		slog.Int("rejections", len(rejections)))
	return nil
}

// ExportRunSummary writes the aggregate run counters as indented JSON
func (e *Exporter) ExportRunSummary(ctx context.Context, summary *domain.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.paths.RunSummaryJSONPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(e.paths.RunSummaryJSONPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	e.logger.InfoContext(ctx, "run summary exported",
		slog.String("path", e.paths.RunSummaryJSONPath))
	return nil
}

// ExportTidyWorkbook writes tidy_records.xlsx with the record table on the
// first sheet and the run counters on a second summary sheet.
func (e *Exporter) ExportTidyWorkbook(ctx context.Context, records []domain.CourseRecord, summary *domain.RunSummary) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	sheets := []sheetData{
		{Name: config.TidyRecordsSheet, Headers: recordHeaders(), Rows: rows},
		{Name: config.SummarySheet, Headers: []string{"Metric", "Value"}, Rows: summaryRows(summary)},
	}
	if err := writeWorkbook(e.paths.TidyRecordsXLSXPath, sheets); err != nil {
		return fmt.Errorf("failed to write tidy workbook: %w", err)
	}
	e.logger.InfoContext(ctx, "tidy workbook exported",
		slog.String("path", e.paths.TidyRecordsXLSXPath),
		slog.Int("records", len(records)))
	return nil
}

// ExportProgramWorkbooks splits the records by program and writes one
// workbook per bucket, named <PROGRAM>_records.xlsx. Records without a
// program stamp land in the UNKNOWN bucket.
func (e *Exporter) ExportProgramWorkbooks(ctx context.Context, records []domain.CourseRecord) error {
	grouped := make(map[domain.Program][]domain.CourseRecord)
	for _, r := range records {
		program := r.Program
		if program == "" {
			program = domain.ProgramUnknown
		}
		grouped[program] = append(grouped[program], r)
	}

	var programs []string
	for program := range grouped {
		programs = append(programs, string(program))
	}
	sort.Strings(programs)

	for _, program := range programs {
		bucket := grouped[domain.Program(program)]
		rows := make([][]string, 0, len(bucket))
		for _, r := range bucket {
			rows = append(rows, recordRow(r))
		}
		workbookPath := e.paths.ProgramWorkbookPath(program)
		sheets := []sheetData{{Name: config.RecordsSheet, Headers: recordHeaders(), Rows: rows}}
		if err := writeWorkbook(workbookPath, sheets); err != nil {
			return fmt.Errorf("failed to write %s workbook: %w", program, err)
		}
		e.logger.InfoContext(ctx, "program workbook exported",
			slog.String("program", program),
			slog.String("path", workbookPath),
			slog.Int("records", len(bucket)))
	}
	return nil
}

func summaryRows(s *domain.RunSummary) [][]string {
	rows := [][]string{
		{"Run ID", s.RunID},
		{"Generated At", s.GeneratedAt.Format(time.RFC3339)},
		{"Files Processed", formatInt(s.FilesProcessed)},
		{"Rows Scanned", formatInt(s.RowsScanned)},
		{"Records Parsed", formatInt(s.RecordsParsed)},
		{"Cells Skipped", formatInt(s.CellsSkipped)},
		{"Total Rejections", formatInt(s.TotalRejections())},
		{"Rejection Rate (%)", formatFloat(rejectionRate(s))},
		{"Processing Time (ms)", formatInt(int(s.ProcessingTime))},
	}
	for _, reason := range domain.RejectReasons() {
		if n := s.RejectionCounts[reason]; n > 0 {
			rows = append(rows, []string{fmt.Sprintf("Rejected: %s", reason), formatInt(n)})
		}
	}
	return rows
}

// rejectionRate is the share of non-skipped token cells that failed
// normalization, as a percentage.
func rejectionRate(s *domain.RunSummary) float64 {
	total := s.RecordsParsed + s.TotalRejections()
	if total == 0 {
		return 0
	}
	return float64(s.TotalRejections()) * 100 / float64(total)
}
