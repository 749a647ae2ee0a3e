package batch

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"acadcli/internal/config"
	apperrors "acadcli/internal/errors"
	"acadcli/internal/infrastructure"
	"acadcli/internal/ingest"
	"acadcli/internal/programs"
	"acadcli/internal/transform"
	"acadcli/pkg/contracts/domain"
)

// FileFailure records one payload the run could not normalize. Failures are
// per-file: the rest of the run proceeds.
type FileFailure struct {
	File string
	Err  error
}

// Run holds the outcome of one batch run: the normalized tables sorted by
// source name, the files that failed, and the aggregate summary.
type Run struct {
	Metadata domain.RunMetadata
	Tables   []*domain.NormalizedTable
	Failures []FileFailure
	Summary  domain.RunSummary
}

// Records returns every parsed record across the run's tables, in table
// order. Tables are sorted by source name, so the result does not depend on
// the order inputs were given or finished in.
func (r *Run) Records() []domain.CourseRecord {
	var records []domain.CourseRecord
	for _, table := range r.Tables {
		records = append(records, table.Records...)
	}
	return records
}

// Rejections returns every rejection across the run's tables, in table order.
func (r *Run) Rejections() []domain.Rejection {
	var rejections []domain.Rejection
	for _, table := range r.Tables {
		rejections = append(rejections, table.Rejections...)
	}
	return rejections
}

// Runner normalizes a set of spreadsheet inputs in parallel. Each payload is
// loaded and normalized independently; a configured mode applies to every
// table, an unset mode is detected per table.
type Runner struct {
	logger     *slog.Logger
	collector  *Collector
	loader     *ingest.Loader
	opts       transform.Options
	cfg        config.BatchConfig
	metrics    *infrastructure.PipelineMetrics
	classifier *programs.Classifier
}

// NewRunner creates a batch runner. metrics may be nil, in which case no
// instruments are recorded.
func NewRunner(logger *slog.Logger, opts transform.Options, cfg config.BatchConfig, metrics *infrastructure.PipelineMetrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = config.DefaultMaxParallel
	}

	collector := NewCollector(logger)
	collector.SetDedupe(cfg.DedupeFiles)

	return &Runner{
		logger:    logger,
		collector: collector,
		loader:    ingest.NewLoader(logger),
		opts:      opts,
		cfg:       cfg,
		metrics:   metrics,
	}
}

// SetClassifier makes the runner stamp every record with the degree program
// its student's raw row classified into. Classification requires a program
// column, so with a classifier set a table without one fails as a whole.
func (r *Runner) SetClassifier(c *programs.Classifier) {
	r.classifier = c
}

// Run collects payloads from the inputs and normalizes them with at most
// cfg.MaxParallel files in flight. The returned error covers collection
// problems and empty input sets only; per-file problems land in Failures.
func (r *Runner) Run(ctx context.Context, inputs []string) (*Run, error) {
	started := time.Now().UTC()

	payloads, err := r.collector.Collect(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, apperrors.NewInputError("no spreadsheet payloads found in inputs", nil).
			WithContext("inputs", len(inputs))
	}

	files := make([]string, len(payloads))
	for i, p := range payloads {
		files[i] = p.Name
	}

	run := &Run{
		Metadata: domain.RunMetadata{
			ID:        uuid.New().String(),
			StartedAt: started,
			Files:     files,
			Status:    "processing",
		},
	}

	r.logger.InfoContext(ctx, "batch run started",
		slog.String("run_id", run.Metadata.ID),
		slog.Int("files", len(payloads)),
		slog.Int("max_parallel", r.cfg.MaxParallel))

	tables := make([]*domain.NormalizedTable, len(payloads))
	errs := make([]error, len(payloads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxParallel)
	for i, p := range payloads {
		g.Go(func() error {
			tables[i], errs[i] = r.processPayload(gctx, p)
			return nil
		})
	}
	g.Wait()

	for i, p := range payloads {
		if errs[i] != nil {
			r.logger.WarnContext(ctx, "file failed to normalize",
				slog.String("file", p.Name),
				slog.String("error", errs[i].Error()))
			run.Failures = append(run.Failures, FileFailure{File: p.Name, Err: errs[i]})
			continue
		}
		run.Tables = append(run.Tables, tables[i])
	}

	sort.Slice(run.Tables, func(a, b int) bool { return run.Tables[a].Source < run.Tables[b].Source })
	sort.Slice(run.Failures, func(a, b int) bool { return run.Failures[a].File < run.Failures[b].File })

	completed := time.Now().UTC()
	run.Metadata.CompletedAt = completed
	run.Metadata.Status = "completed"
	if len(run.Failures) == len(payloads) {
		run.Metadata.Status = "failed"
		run.Metadata.ErrorMessage = "no file could be normalized"
	}
	run.Summary = summarize(run, started, completed)

	r.logger.InfoContext(ctx, "batch run finished",
		slog.String("run_id", run.Metadata.ID),
		slog.String("status", run.Metadata.Status),
		slog.Int("tables", len(run.Tables)),
		slog.Int("failures", len(run.Failures)),
		slog.Int("records", run.Summary.RecordsParsed),
		slog.Int("rejections", run.Summary.TotalRejections()))

	return run, nil
}

func (r *Runner) processPayload(ctx context.Context, p Payload) (*domain.NormalizedTable, error) {
	start := time.Now()
	infrastructure.RecordActiveFileChange(ctx, r.metrics, 1)
	defer infrastructure.RecordActiveFileChange(ctx, r.metrics, -1)

	table, err := r.loader.LoadBytes(ctx, p.Name, p.Data)
	if err != nil {
		infrastructure.RecordFileProcessed(ctx, r.metrics, p.Name, false)
		return nil, err
	}

	normalized, err := r.normalizeTable(ctx, table)
	if err == nil && r.classifier != nil {
		err = r.stampPrograms(ctx, table, normalized)
	}
	infrastructure.RecordFileProcessed(ctx, r.metrics, p.Name, err == nil)
	if err != nil {
		return nil, err
	}

	reasons := make(map[string]int64)
	for _, rejection := range normalized.Rejections {
		reasons[string(rejection.Reason)]++
	}
	infrastructure.RecordTableMetrics(ctx, r.metrics, normalized.Source,
		int64(normalized.RowsScanned), int64(len(normalized.Records)),
		int64(normalized.CellsSkipped), reasons,
		time.Since(start))

	return normalized, nil
}

// stampPrograms classifies the raw table's rows and stamps each parsed
// record with its student's bucket. Students the classifier never saw, or
// saw without a program match, come back as ProgramUnknown.
func (r *Runner) stampPrograms(ctx context.Context, table *domain.Table, normalized *domain.NormalizedTable) error {
	buckets, err := r.classifier.Split(ctx, table)
	if err != nil {
		return err
	}
	for i := range normalized.Records {
		normalized.Records[i].Program = buckets.ProgramFor(normalized.Records[i].StudentID)
	}
	return nil
}

// normalizeTable applies the configured mode, or detects one for this table
// when the options leave the mode unset.
func (r *Runner) normalizeTable(ctx context.Context, table *domain.Table) (*domain.NormalizedTable, error) {
	opts := r.opts
	if opts.Mode == "" {
		detection, err := transform.Detect(table, opts)
		if err != nil {
			return nil, err
		}
		opts.Mode = detection.Mode
		if detection.Mode == transform.ModeCellEncoded && len(opts.CourseSlotColumns) == 0 {
			opts.CourseSlotColumns = detection.SlotColumns
		}
		r.logger.InfoContext(ctx, "table layout detected",
			slog.String("source", table.Name),
			slog.String("mode", string(detection.Mode)),
			slog.String("reason", detection.Reason))
	}

	normalizer, err := transform.NewNormalizer(r.logger, opts)
	if err != nil {
		return nil, err
	}
	return normalizer.Normalize(ctx, table)
}

func summarize(run *Run, started, completed time.Time) domain.RunSummary {
	summary := domain.RunSummary{
		RunID:           run.Metadata.ID,
		FilesProcessed:  len(run.Tables),
		RejectionCounts: make(map[domain.RejectReason]int),
		ProcessingTime:  completed.Sub(started).Milliseconds(),
		GeneratedAt:     completed,
	}
	for _, table := range run.Tables {
		summary.RowsScanned += table.RowsScanned
		summary.RecordsParsed += len(table.Records)
		summary.CellsSkipped += table.CellsSkipped
		for _, rejection := range table.Rejections {
			summary.RejectionCounts[rejection.Reason]++
		}
	}
	return summary
}
