package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery resolves the spreadsheet inputs of a command. Directories are
// expanded to the supported files inside them; explicit files pass through
// untouched.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative paths
// resolve against basePath; pass "" to resolve against the working
// directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// inputExtensions are the file types a command accepts directly
var inputExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".zip":  true,
}

// ExpandInputs resolves a mixed list of files and directories into concrete
// file paths. Each directory contributes its supported files in name order.
// Explicit file paths are kept even when their extension is unknown so the
// collector can report them properly.
func (d *Discovery) ExpandInputs(inputs []string) ([]string, error) {
	var expanded []string
	for _, input := range inputs {
		full := d.resolve(input)
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", input, err)
		}
		if !info.IsDir() {
			expanded = append(expanded, full)
			continue
		}
		found, err := d.FindInputFiles(input)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			expanded = append(expanded, f.Path)
		}
	}
	return expanded, nil
}

// FindInputFiles finds the supported input files in a directory, sorted by
// name. Excel lock files ("~$...") are skipped.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	return d.findByExt(dir, inputExtensions)
}

// FindSpreadsheetFiles finds the Excel workbooks in a directory, sorted by name
func (d *Discovery) FindSpreadsheetFiles(dir string) ([]FileInfo, error) {
	return d.findByExt(dir, map[string]bool{".xlsx": true, ".xls": true})
}

// FindArchiveFiles finds the zip archives in a directory, sorted by name
func (d *Discovery) FindArchiveFiles(dir string) ([]FileInfo, error) {
	return d.findByExt(dir, map[string]bool{".zip": true})
}

func (d *Discovery) findByExt(dir string, extensions map[string]bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !extensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}
