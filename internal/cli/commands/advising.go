package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acadcli/internal/advising"
	"acadcli/internal/exporter"
	"acadcli/internal/files"
	"acadcli/internal/infrastructure"
	"acadcli/pkg/contracts/domain"
)

// AdvisingOptions holds command-line options for the advising command.
type AdvisingOptions struct {
	Program    string
	OutputDir  string
	ConfigFile string
}

// NewAdvisingCommand creates the advising command.
func NewAdvisingCommand() *cobra.Command {
	opts := &AdvisingOptions{}

	cmd := &cobra.Command{
		Use:   "advising -p program [flags] <workbook|dir...>",
		Short: "Summarize current semester advising workbooks",
		Long: `Read the "Current Semester Advising" sheet of each per-student workbook
for one degree plan, count the advising status of every course, and
write a report with the counts and the largest conflict-free student
groups.

Degree plans place the course and status cells differently, so the
plan must be named explicitly: PBHL, SPTH_OLD or SPTH_NEW.

Exit codes:
  0 - Every workbook was read
  1 - Some or all workbooks could not be read
  2 - Usage or configuration error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvising(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Program, "program", "p", "", "Degree plan of the workbooks (PBHL|SPTH_OLD|SPTH_NEW)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory (default from configuration)")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")
	_ = cmd.MarkFlagRequired("program")

	return cmd
}

func runAdvising(cmd *cobra.Command, args []string, opts *AdvisingOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	program, err := parseProgram(opts.Program)
	if err != nil {
		return err
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

	extractor, err := advising.NewExtractor(logger, program)
	if err != nil {
		return fail(err)
	}

	paths := cfg.ResolvePaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fail(err)
	}

	expanded, err := files.NewDiscovery("").ExpandInputs(args)
	if err != nil {
		return fail(err)
	}

	report := extractor.ExtractFiles(ctx, expanded)
	if len(report.Students) == 0 {
		return fail(fmt.Errorf("no advising sheets could be read from %d workbook(s)", len(expanded)))
	}

	reports := exporter.NewReportExporter(logger, paths)
	if err := reports.ExportAdvisingReport(ctx, report.Summary, report.Groups); err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d student(s), %d course(s), %d conflict-free group(s)\n",
		len(report.Students), len(report.Summary), len(report.Groups))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d workbook(s): %s\n",
			len(report.Skipped), strings.Join(report.Skipped, ", "))
		ExitCode = 1
	}
	fmt.Fprintf(out, "Report written to %s\n", paths.AdvisingReportPath)
	return nil
}

// parseProgram maps the -p flag onto a degree plan with a known advising
// sheet layout.
func parseProgram(raw string) (domain.Program, error) {
	switch domain.Program(strings.ToUpper(strings.TrimSpace(raw))) {
	case domain.ProgramPBHL:
		return domain.ProgramPBHL, nil
	case domain.ProgramSPTHOld:
		return domain.ProgramSPTHOld, nil
	case domain.ProgramSPTHNew:
		return domain.ProgramSPTHNew, nil
	default:
		return "", fmt.Errorf("unknown program %q: want %s, %s or %s",
			raw, domain.ProgramPBHL, domain.ProgramSPTHOld, domain.ProgramSPTHNew)
	}
}
