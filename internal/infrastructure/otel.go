package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"acadcli/internal/config"
)

// MeterName identifies the instrumentation scope for all acadcli telemetry
const MeterName = "acadcli"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
	SampleRatio    float64
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    config.AppName,
		ServiceVersion: config.AppVersion,
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
		SampleRatio:    1.0,
	}
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Logger         *slog.Logger

	reader *sdkmetric.ManualReader
}

// InitializeOTel initializes tracing and metrics for a run. Traces go to
// stdout via the stdouttrace exporter; metrics accumulate in a manual reader
// and are summarized at shutdown.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		initializeMetrics(cfg, res, providers)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
		attribute.String("service.instance.id", GenerateTraceID()),
	), nil
}

// initializeTracing sets up the stdout trace exporter
func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)
	return nil
}

// initializeMetrics sets up a manual reader so counters can be collected and
// logged when the run finishes. A CLI run is too short for periodic export.
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	providers.reader = reader
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetMeterProvider(mp)
}

// Shutdown flushes traces, logs the final metric totals, and releases the
// providers. Safe to call on a partially initialized set of providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error

	if p.reader != nil {
		var rm metricdata.ResourceMetrics
		if err := p.reader.Collect(ctx, &rm); err == nil {
			p.logMetricTotals(ctx, &rm)
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := p.TracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// logMetricTotals writes the accumulated counter sums to the logger so each
// run leaves a telemetry trail even without a metrics backend.
func (p *OTelProviders) logMetricTotals(ctx context.Context, rm *metricdata.ResourceMetrics) {
	if p.Logger == nil {
		return
	}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			p.Logger.InfoContext(ctx, "metric total",
				slog.String("metric", m.Name),
				slog.Int64("value", total))
		}
	}
}

// PipelineMetrics holds the counters recorded while tables move through the
// normalize pipeline.
type PipelineMetrics struct {
	FilesProcessed    metric.Int64Counter
	RowsScanned       metric.Int64Counter
	RecordsParsed     metric.Int64Counter
	CellsSkipped      metric.Int64Counter
	RejectionsTotal   metric.Int64Counter
	ActiveFiles       metric.Int64UpDownCounter
	NormalizeDuration metric.Float64Histogram
}

// CreatePipelineMetrics creates the pipeline instruments on the given meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	filesProcessed, err := meter.Int64Counter(
		"pipeline_files_processed_total",
		metric.WithDescription("Total number of input files processed"),
	)
	if err != nil {
		return nil, err
	}

	rowsScanned, err := meter.Int64Counter(
		"pipeline_rows_scanned_total",
		metric.WithDescription("Total number of table rows scanned"),
	)
	if err != nil {
		return nil, err
	}

	recordsParsed, err := meter.Int64Counter(
		"pipeline_records_parsed_total",
		metric.WithDescription("Total number of course records produced"),
	)
	if err != nil {
		return nil, err
	}

	cellsSkipped, err := meter.Int64Counter(
		"pipeline_cells_skipped_total",
		metric.WithDescription("Total number of empty candidate cells skipped"),
	)
	if err != nil {
		return nil, err
	}

	rejectionsTotal, err := meter.Int64Counter(
		"pipeline_rejections_total",
		metric.WithDescription("Total number of rejected tokens"),
	)
	if err != nil {
		return nil, err
	}

	activeFiles, err := meter.Int64UpDownCounter(
		"pipeline_active_files",
		metric.WithDescription("Number of files currently being normalized"),
	)
	if err != nil {
		return nil, err
	}

	normalizeDuration, err := meter.Float64Histogram(
		"pipeline_normalize_duration_seconds",
		metric.WithDescription("Time spent normalizing a single table"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		FilesProcessed:    filesProcessed,
		RowsScanned:       rowsScanned,
		RecordsParsed:     recordsParsed,
		CellsSkipped:      cellsSkipped,
		RejectionsTotal:   rejectionsTotal,
		ActiveFiles:       activeFiles,
		NormalizeDuration: normalizeDuration,
	}, nil
}

// RecordTableMetrics records the outcome of normalizing one table.
// rejections maps each reject reason to its count, so the rejection counter
// stays queryable per reason.
func RecordTableMetrics(ctx context.Context, metrics *PipelineMetrics, source string, rows, records, skipped int64, rejections map[string]int64, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("source", source))

	metrics.RowsScanned.Add(ctx, rows, attrs)
	metrics.RecordsParsed.Add(ctx, records, attrs)
	metrics.CellsSkipped.Add(ctx, skipped, attrs)
	metrics.NormalizeDuration.Record(ctx, duration.Seconds(), attrs)

	var rejected int64
	for reason, n := range rejections {
		rejected += n
		metrics.RejectionsTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("reason", reason),
		))
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("table.normalized",
			trace.WithAttributes(
				attribute.String("source", source),
				attribute.Int64("rows", rows),
				attribute.Int64("records", records),
				attribute.Int64("rejections", rejected),
			),
		)
	}
}

// RecordFileProcessed records the completion of one input file
func RecordFileProcessed(ctx context.Context, metrics *PipelineMetrics, path string, success bool) {
	if metrics == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}

	metrics.FilesProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status),
	))
}

// RecordActiveFileChange adjusts the in-flight file gauge
func RecordActiveFileChange(ctx context.Context, metrics *PipelineMetrics, delta int64) {
	if metrics == nil {
		return
	}
	metrics.ActiveFiles.Add(ctx, delta)
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from a span context
// for logging correlation.
func TraceIDFromContext(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
