package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"acadcli/internal/batch"
	"acadcli/internal/config"
	"acadcli/internal/exporter"
	"acadcli/internal/files"
	"acadcli/internal/infrastructure"
	"acadcli/internal/programs"
	"acadcli/internal/validation"
)

// TidyOptions holds command-line options for the tidy command.
type TidyOptions struct {
	Inputs        []string
	OutputDir     string
	Mode          string
	ConfigFile    string
	SplitPrograms bool
	MaxParallel   int
}

// NewTidyCommand creates the tidy command.
func NewTidyCommand() *cobra.Command {
	opts := &TidyOptions{}

	cmd := &cobra.Command{
		Use:   "tidy [flags] [file|dir|archive...]",
		Short: "Normalize grade exports into tidy course records",
		Long: `Normalize grade spreadsheets into one record per (student, course,
semester, year, grade).

Inputs may be .xlsx, .xls or .csv files, directories of them, or .zip
archives. Files are normalized in parallel and the combined outputs are
written in file name order, so the results do not depend on the order
inputs are given or finish in.

Cells that fail to parse become rows in the rejections report; they
never abort the run.

Exit codes:
  0 - Run completed (rejections are data, not errors)
  1 - Some or all inputs could not be processed
  2 - Usage or configuration error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTidy(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringSliceVarP(&opts.Inputs, "input", "i", nil, "Input file, directory or archive (can be repeated)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory (default from configuration)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "Table layout (auto|columns|cells); overrides configuration")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")
	cmd.Flags().BoolVar(&opts.SplitPrograms, "split-programs", false, "Also write one workbook per degree program")
	cmd.Flags().IntVar(&opts.MaxParallel, "max-parallel", 0, "Files normalized concurrently (default from configuration)")

	return cmd
}

func runTidy(cmd *cobra.Command, args []string, opts *TidyOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	inputs := append(append([]string{}, opts.Inputs...), args...)
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs given: pass files or directories, or use --input")
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return fail(err)
	}
	if err := applyTidyOverrides(cfg, opts); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fail(err)
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	var metrics *infrastructure.PipelineMetrics
	if cfg.Telemetry.Enabled {
		otelCfg := infrastructure.DefaultOTelConfig()
		otelCfg.ServiceName = cfg.Telemetry.ServiceName
		providers, err := infrastructure.InitializeOTel(otelCfg, logger)
		if err != nil {
			return fail(fmt.Errorf("initializing telemetry: %w", err))
		}
		defer providers.Shutdown(ctx)
		metrics, err = infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			logger.WarnContext(ctx, "pipeline metrics unavailable", slog.String("error", err.Error()))
		}
	}

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fail(err)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return fail(err)
	}

	discovery := files.NewDiscovery("")
	expanded, err := discovery.ExpandInputs(inputs)
	if err != nil {
		return fail(err)
	}
	for _, path := range expanded {
		if err := validator.ValidateInputFile(path); err != nil {
			return fail(err)
		}
	}

	runner := batch.NewRunner(logger, cfg.TransformOptions(), cfg.Batch, metrics)
	if opts.SplitPrograms {
		runner.SetClassifier(programs.NewClassifier(logger, nil))
	}

	run, err := runner.Run(ctx, expanded)
	if err != nil {
		return fail(err)
	}

	exp := exporter.NewExporter(logger, paths)
	records := run.Records()
	if err := exp.ExportTidyCSV(ctx, records); err != nil {
		return fail(err)
	}
	if err := exp.ExportRejectionsCSV(ctx, run.Rejections()); err != nil {
		return fail(err)
	}
	if err := exp.ExportRunSummary(ctx, &run.Summary); err != nil {
		return fail(err)
	}
	if err := exp.ExportTidyWorkbook(ctx, records, &run.Summary); err != nil {
		return fail(err)
	}
	if opts.SplitPrograms {
		if err := exp.ExportProgramWorkbooks(ctx, records); err != nil {
			return fail(err)
		}
	}

	printTidySummary(cmd, run, paths)

	if len(run.Failures) > 0 {
		ExitCode = 1
	}
	return nil
}

// applyTidyOverrides folds the command-line flags into the loaded
// configuration. Flag problems are usage errors, not processing failures.
func applyTidyOverrides(cfg *config.Config, opts *TidyOptions) error {
	switch opts.Mode {
	case "", config.ModeAuto, config.ModeColumns, config.ModeCells:
	default:
		return fmt.Errorf("invalid --mode %q: want %s, %s or %s",
			opts.Mode, config.ModeAuto, config.ModeColumns, config.ModeCells)
	}
	if opts.Mode != "" {
		cfg.Parser.Mode = opts.Mode
	}
	if cfg.Parser.Mode == config.ModeCells && len(cfg.Parser.CourseSlotColumns) == 0 {
		return fmt.Errorf("mode %q requires parser.course_slot_columns in the configuration", config.ModeCells)
	}

	if opts.OutputDir != "" {
		cfg.Paths.OutputDir = opts.OutputDir
	}
	if opts.MaxParallel > 0 {
		cfg.Batch.MaxParallel = opts.MaxParallel
	}
	return nil
}

func printTidySummary(cmd *cobra.Command, run *batch.Run, paths *config.Paths) {
	out := cmd.OutOrStdout()
	s := run.Summary

	fmt.Fprintf(out, "Run %s: %d file(s), %d records, %d rejections\n",
		s.RunID, s.FilesProcessed, s.RecordsParsed, s.TotalRejections())
	for _, failure := range run.Failures {
		fmt.Fprintf(out, "  failed: %s: %v\n", failure.File, failure.Err)
	}
	fmt.Fprintf(out, "Outputs written to %s\n", paths.OutputDir)
}
