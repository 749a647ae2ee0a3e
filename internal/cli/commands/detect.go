package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acadcli/internal/infrastructure"
	"acadcli/internal/ingest"
	"acadcli/internal/transform"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Input      string
	ConfigFile string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [flags] [file]",
		Short: "Report which layout a grade table uses",
		Long: `Load one spreadsheet and report whether its courses are encoded in the
column headers or in course-slot cells, along with the evidence behind
the call. No outputs are written.

Exit codes:
  0 - Layout detected
  1 - File unreadable or layout ambiguous
  2 - Usage or configuration error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Spreadsheet to inspect")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.Input
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no input given: pass a file or use --input")
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return fail(err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fail(err)
	}
	defer infrastructure.CloseLogFile()
	ctx = infrastructure.EnsureTraceID(ctx)

	table, err := ingest.NewLoader(logger).LoadTable(ctx, path)
	if err != nil {
		return fail(err)
	}

	detection, err := transform.Detect(table, cfg.TransformOptions())
	if err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", table.Name, detection.Mode)
	fmt.Fprintf(out, "  reason: %s\n", detection.Reason)
	if len(detection.SlotColumns) > 0 {
		fmt.Fprintf(out, "  slot columns: %s\n", strings.Join(detection.SlotColumns, ", "))
	}
	return nil
}
