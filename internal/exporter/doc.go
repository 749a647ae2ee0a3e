// Package exporter provides the file outputs of the acadcli commands.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// Exporter: Handles the outputs of a normalization run - the tidy records
// table as CSV and workbook, the rejection audit, the JSON run summary,
// and the per-program split workbooks.
//
// ReportExporter: Writes the advising and internship report workbooks.
//
// Example usage:
//
//	// Create an exporter over the resolved output paths
//	exp := exporter.NewExporter(logger, cfg.ResolvePaths())
//
//	// Export the tidy outputs of a run
//	err := exp.ExportTidyCSV(ctx, run.Records())
//	err = exp.ExportRejectionsCSV(ctx, run.Rejections())
//	err = exp.ExportRunSummary(ctx, &run.Summary)
//
//	// Write the advising report
//	reports := exporter.NewReportExporter(logger, cfg.ResolvePaths())
//	err = reports.ExportAdvisingReport(ctx, summary, groups)
package exporter
