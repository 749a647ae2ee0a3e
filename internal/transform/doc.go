// Package transform provides the pattern-recognition engine that turns
// inconsistently delimited academic record tokens into tidy, well-typed
// course records. It consolidates token parsing and table normalization
// into a cohesive package that handles the complete transformation from a
// raw spreadsheet table to a long-format record set plus a reject report.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: classifies a single raw string (column header or cell value)
// into course, semester, year and grade segments
// 2. Normalizer: walks an input table in one of two supported layouts and
// assembles validated records while collecting rejections
// 3. Detect: inspects a table and reports which layout the normalizer
// should use, as an explicit decision surfaced to the caller
//
// # Token Grammar
//
// A well-formed token decomposes into exactly three logical segments:
//
//	<course> <separator> <semester+year> <separator> <grade>
//
// Accepted separators are '-', '_' and '/' by default and may be mixed
// freely within one token. The semester and year may be fused (Fall2024,
// 2024Fall) or split across two segments in either order (FALL-2016,
// 2016-FALL). Matching is case-insensitive throughout.
//
// # Usage
//
// Parsing a single token:
//
//	parser, err := transform.NewParser(transform.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	token, failure := parser.Parse("SPTH201/FALL-2016/F")
//	if failure != nil {
//	    // failure.Reason is one of the rejection taxonomy
//	}
//
// Normalizing a whole table:
//
//	opts := transform.DefaultOptions()
//	opts.Mode = transform.ModeColumnEncoded
//	opts.IdentityColumn = "StudentID"
//	normalizer, err := transform.NewNormalizer(logger, opts)
//	result, err := normalizer.Normalize(ctx, table)
//
// # Error Handling
//
// Per-token failures are data, not errors: the parser is total over all
// string inputs and reports failures as typed rejection values that the
// normalizer accumulates with row and column context. The only error
// returns are fatal configuration or input problems, such as a declared
// slot column that is absent from the table, which are reported once
// before any per-cell parsing begins.
//
// # Determinism
//
// The normalizer visits every (row, candidate column) pair exactly once in
// row-major then column order, so record and rejection order is
// reproducible for identical inputs. Rule order inside the parser is fixed
// and first-match-wins.
package transform
