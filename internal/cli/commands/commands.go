// Package commands implements the acadcli subcommands.
package commands

import (
	"errors"

	"acadcli/internal/config"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// runFailure marks an error hit while processing valid arguments, so the
// root maps it to exit code 1 instead of the usage exit code.
type runFailure struct {
	err error
}

func (f runFailure) Error() string { return f.err.Error() }
func (f runFailure) Unwrap() error { return f.err }

// fail wraps a processing error for the exit code 1 path. Errors returned
// unwrapped stay on the usage path and exit 2.
func fail(err error) error {
	return runFailure{err: err}
}

// IsRunFailure reports whether err came from processing rather than usage.
func IsRunFailure(err error) bool {
	var f runFailure
	return errors.As(err, &f)
}

// loadConfig loads the configuration, from the named file when one was
// given on the command line.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
