// Package shared holds utilities used across the acadcli codebase that
// belong to no specific domain layer.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on log output without touching the process-wide logger.
//
// This package must not import other internal packages; it sits below all
// of them.
package shared
