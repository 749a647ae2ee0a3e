package exporter

import (
	"fmt"
)

// formatFloat formats a float64 value for sheet output with exactly 2 decimal places
func formatFloat(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures rates like 13.4 appear as 13.40 in the summary
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for sheet output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
