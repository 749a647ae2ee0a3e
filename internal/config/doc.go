// Package config provides centralized configuration management for acadcli.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ACAD_* for namespacing:
//
//	ACAD_LOGGING_LEVEL=debug
//	ACAD_PATHS_OUTPUT_DIR=out
//	ACAD_PARSER_IDENTITY_COLUMN=StudentID
//	ACAD_PARSER_DELIMITERS=-_/
//	ACAD_BATCH_MAX_PARALLEL=8
//
// # Configuration File
//
// A config.yaml is looked up in the working directory and under configs/.
// File values fill in anything the environment leaves unset:
//
//	logging:
//	  level: info
//	  format: json
//	parser:
//	  identity_column: StudentID
//	  grade_aliases:
//	    PASS: P
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := cfg.TransformOptions()
//
// The parser section maps directly onto transform.Options, so a loaded
// Config is all a command needs to construct a Normalizer.
package config
