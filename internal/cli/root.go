// Package cli provides the command-line interface for acadcli.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"acadcli/internal/cli/commands"
)

// Execute runs the root command and returns the exit code: 0 for success,
// 1 when processing failed or only partly succeeded, 2 for usage errors.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if commands.IsRunFailure(err) {
			return 1
		}
		return 2
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "acadcli",
		Short: "Normalize academic spreadsheet exports into tidy data",
		Long: `acadcli turns the spreadsheets an academic department lives with into
tidy, analyzable files.

It normalizes grade exports (whether courses are encoded in column
headers or in course-slot cells), splits records into degree program
workbooks, summarizes current semester advising workbooks, and
consolidates internship hour logs.

Malformed course tokens never abort a run: they are collected into a
rejections report alongside the parsed records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewTidyCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewAdvisingCommand())
	rootCmd.AddCommand(commands.NewInternshipsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
