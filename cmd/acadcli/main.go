// acadcli - Academic Spreadsheet Normalization Tool
//
// acadcli turns the spreadsheet exports an academic department lives with
// into tidy, analyzable files: normalized grade records, degree program
// workbooks, advising summaries and consolidated internship hours.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"acadcli/internal/cli"
)

func main() {
	// Load .env if present; deployed environments set ACAD_* directly.
	_ = godotenv.Load()

	os.Exit(cli.Execute())
}
