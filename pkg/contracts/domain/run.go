package domain

import (
	"time"
)

// NormalizedTable represents the outcome of normalizing one source table:
// the tidy records in deterministic order plus every rejection encountered.
// Records and Rejections partition the non-empty token cells of the source.
type NormalizedTable struct {
	Source         string         `json:"source,omitempty"`
	IdentityColumn string         `json:"identity_column"`
	Records        []CourseRecord `json:"records"`
	Rejections     []Rejection    `json:"rejections"`
	RowsScanned    int            `json:"rows_scanned"`
	CellsSkipped   int            `json:"cells_skipped"`
}

// RunMetadata represents one normalization run over one or more source
// files. It tracks provenance for audit output alongside the tidy tables.
type RunMetadata struct {
	ID           string    `json:"id" validate:"required,uuid"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	Files        []string  `json:"files" validate:"required,min=1"`
	Status       string    `json:"status" validate:"required,oneof=pending processing completed failed"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunSummary represents aggregate counts across a run, suitable for the
// closing log line and the summary sheet of the output workbook.
type RunSummary struct {
	RunID           string               `json:"run_id"`
	FilesProcessed  int                  `json:"files_processed" validate:"min=0"`
	RowsScanned     int                  `json:"rows_scanned" validate:"min=0"`
	RecordsParsed   int                  `json:"records_parsed" validate:"min=0"`
	CellsSkipped    int                  `json:"cells_skipped" validate:"min=0"`
	RejectionCounts map[RejectReason]int `json:"rejection_counts"`
	ProcessingTime  int64                `json:"processing_time_ms"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// TotalRejections sums the rejection counts across the taxonomy
func (s *RunSummary) TotalRejections() int {
	total := 0
	for _, n := range s.RejectionCounts {
		total += n
	}
	return total
}
