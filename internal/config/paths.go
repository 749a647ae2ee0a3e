package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system paths for a run.
// This is the single source of truth for every file the commands write.
type Paths struct {
	OutputDir string
	LogsDir   string

	// Well-known output files inside OutputDir
	TidyRecordsCSVPath   string
	TidyRecordsXLSXPath  string
	RejectionsCSVPath    string
	RunSummaryJSONPath   string
	AdvisingReportPath   string
	InternshipReportPath string
}

// ResolvePaths builds the full set of output paths from the configured
// directories. Relative directories stay relative to the working directory.
func (c *Config) ResolvePaths() *Paths {
	out := c.Paths.OutputDir
	return &Paths{
		OutputDir:            out,
		LogsDir:              c.Paths.LogsDir,
		TidyRecordsCSVPath:   filepath.Join(out, TidyRecordsCSV),
		TidyRecordsXLSXPath:  filepath.Join(out, TidyRecordsXLSX),
		RejectionsCSVPath:    filepath.Join(out, RejectionsCSV),
		RunSummaryJSONPath:   filepath.Join(out, RunSummaryJSON),
		AdvisingReportPath:   filepath.Join(out, AdvisingReportXLSX),
		InternshipReportPath: filepath.Join(out, InternshipReportXLSX),
	}
}

// EnsureDirectories creates the output and log directories if they do not
// exist. It is safe to call repeatedly.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ProgramWorkbookPath returns the per-program workbook path inside OutputDir,
// e.g. out/PBHL_records.xlsx.
func (p *Paths) ProgramWorkbookPath(program string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf("%s_records.xlsx", program))
}
