// Package batch expands mixed spreadsheet and archive inputs into in-memory
// payloads and fans table normalization out across them with bounded
// parallelism. Files are independent of each other, so a failure in one
// never aborts the rest of the run.
package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"acadcli/internal/config"
	apperrors "acadcli/internal/errors"
)

// Payload is one spreadsheet pulled out of the inputs, either a file read
// directly or a member extracted from a zip archive. Stem is the file name
// without its extension; per-student inputs use it as the student key.
type Payload struct {
	Name string
	Stem string
	Data []byte
}

// Collector expands .zip, .xlsx, .xls and .csv inputs into payloads.
// Archive members that are directories, macOS metadata or not spreadsheets
// are skipped, and payloads repeating an earlier (stem, size) pair are
// dropped as duplicates.
type Collector struct {
	logger *slog.Logger
	dedupe bool
}

// NewCollector creates a payload collector with duplicate dropping enabled
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger, dedupe: true}
}

// SetDedupe controls whether payloads repeating an earlier (stem, size)
// pair are dropped
func (c *Collector) SetDedupe(enabled bool) {
	c.dedupe = enabled
}

// Collect reads every input and returns the surviving payloads in input
// order, archive members in archive order. An unsupported input extension
// or an unreadable file is an input error.
func (c *Collector) Collect(ctx context.Context, inputs []string) ([]Payload, error) {
	var payloads []Payload
	seen := make(map[string]bool)

	for _, input := range inputs {
		switch strings.ToLower(filepath.Ext(input)) {
		case config.SupportedArchive:
			members, err := c.collectFromZip(ctx, input)
			if err != nil {
				return nil, err
			}
			payloads = c.appendUnique(ctx, payloads, seen, members...)
		case ".xlsx", ".xls", ".csv":
			data, err := os.ReadFile(input)
			if err != nil {
				return nil, apperrors.NewInputError(fmt.Sprintf("failed to read %s", input), err)
			}
			payloads = c.appendUnique(ctx, payloads, seen, Payload{
				Name: filepath.Base(input),
				Stem: stem(input),
				Data: data,
			})
		default:
			return nil, apperrors.NewInputError(fmt.Sprintf("unsupported input format %q", filepath.Ext(input)), nil).
				WithContext("path", input)
		}
	}

	c.logger.InfoContext(ctx, "inputs collected",
		slog.Int("inputs", len(inputs)),
		slog.Int("payloads", len(payloads)))

	return payloads, nil
}

// collectFromZip walks an archive fully in memory. Member count and size
// limits guard against archive bombs.
func (c *Collector) collectFromZip(ctx context.Context, archive string) ([]Payload, error) {
	data, err := os.ReadFile(archive)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to read %s", archive), err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to open archive %s", archive), err)
	}
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)

	if len(zr.File) > config.MaxArchiveMembers {
		return nil, apperrors.NewInputError(fmt.Sprintf("archive %s has %d members, limit is %d",
			archive, len(zr.File), config.MaxArchiveMembers), nil)
	}

	var payloads []Payload
	for _, member := range zr.File {
		if member.FileInfo().IsDir() || isJunkMember(member.Name) || !isExcelName(member.Name) {
			continue
		}
		if member.UncompressedSize64 > config.MaxMemberSizeBytes {
			c.logger.WarnContext(ctx, "skipping oversized archive member",
				slog.String("archive", archive),
				slog.String("member", member.Name),
				slog.Uint64("size", member.UncompressedSize64))
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to open archive member %s", member.Name), err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to read archive member %s", member.Name), err)
		}

		payloads = append(payloads, Payload{
			Name: path.Base(member.Name),
			Stem: stem(member.Name),
			Data: content,
		})
	}

	c.logger.DebugContext(ctx, "archive expanded",
		slog.String("archive", archive),
		slog.Int("members", len(zr.File)),
		slog.Int("payloads", len(payloads)))

	return payloads, nil
}

func (c *Collector) appendUnique(ctx context.Context, payloads []Payload, seen map[string]bool, candidates ...Payload) []Payload {
	for _, p := range candidates {
		if c.dedupe {
			key := fmt.Sprintf("%s|%d", p.Stem, len(p.Data))
			if seen[key] {
				c.logger.DebugContext(ctx, "skipping duplicate payload",
					slog.String("name", p.Name),
					slog.Int("size", len(p.Data)))
				continue
			}
			seen[key] = true
		}
		payloads = append(payloads, p)
	}
	return payloads
}

// isJunkMember reports whether an archive member is packaging noise rather
// than data: directory entries, the __MACOSX resource tree, and ._ AppleDouble
// files.
func isJunkMember(name string) bool {
	if strings.HasSuffix(name, "/") {
		return true
	}
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), "._")
}

func isExcelName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// stem returns the file name without directory or extension. Archive member
// names always use forward slashes, OS paths may not.
func stem(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base))
}
