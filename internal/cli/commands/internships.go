package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acadcli/internal/batch"
	"acadcli/internal/exporter"
	"acadcli/internal/files"
	"acadcli/internal/infrastructure"
	"acadcli/internal/internship"
)

// InternshipsOptions holds command-line options for the internships command.
type InternshipsOptions struct {
	OutputDir  string
	ConfigFile string
}

// NewInternshipsCommand creates the internships command.
func NewInternshipsCommand() *cobra.Command {
	opts := &InternshipsOptions{}

	cmd := &cobra.Command{
		Use:   "internships [flags] <workbook|dir|archive...>",
		Short: "Consolidate internship hour workbooks into one report",
		Long: `Read each per-student internship workbook, find the sheet carrying an
internship code column and a completed hours column, and consolidate
everything into one wide report: a row per student, a column per
internship code, 0 filling the gaps.

The student key is the workbook file name without its extension.

Exit codes:
  0 - Every workbook contributed hours
  1 - Some or all workbooks yielded nothing
  2 - Usage or configuration error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInternships(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory (default from configuration)")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")

	return cmd
}

func runInternships(cmd *cobra.Command, args []string, opts *InternshipsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return fail(err)
	}
	if opts.OutputDir != "" {
		cfg.Paths.OutputDir = opts.OutputDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fail(err)
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fail(err)
	}

	expanded, err := files.NewDiscovery("").ExpandInputs(args)
	if err != nil {
		return fail(err)
	}

	collector := batch.NewCollector(logger)
	collector.SetDedupe(cfg.Batch.DedupeFiles)
	payloads, err := collector.Collect(ctx, expanded)
	if err != nil {
		return fail(err)
	}

	report, err := internship.NewConsolidator(logger).Consolidate(ctx, payloads)
	if err != nil {
		return fail(err)
	}

	reports := exporter.NewReportExporter(logger, paths)
	if err := reports.ExportInternshipReport(ctx, report.Table, report.Skipped); err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d student(s), %d internship code(s)\n",
		len(report.Processed), len(report.Table.Columns)-1)
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d workbook(s): %s\n",
			len(report.Skipped), strings.Join(report.Skipped, ", "))
		ExitCode = 1
	}
	fmt.Fprintf(out, "Report written to %s\n", paths.InternshipReportPath)
	return nil
}
