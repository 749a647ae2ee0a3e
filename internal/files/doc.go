// Package files provides file system discovery for the acadcli commands.
//
// Discovery expands the mixed file and directory arguments of a command
// into concrete input files: directories contribute their spreadsheets and
// archives in name order, explicit paths pass through untouched, and Excel
// lock files are skipped.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//
//	// Expand command arguments
//	inputs, err := discovery.ExpandInputs([]string{"exports/", "extra.xlsx"})
//
//	// Or list one kind directly
//	workbooks, err := discovery.FindSpreadsheetFiles("exports/")
package files
