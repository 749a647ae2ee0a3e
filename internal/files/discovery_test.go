package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func setupInputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.xlsx", "grades.zip", "roster.csv", "notes.txt", "~$a.xlsx", "old.XLS"} {
		writeFile(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeFile(t, filepath.Join(dir, "nested", "c.xlsx"))
	return dir
}

func names(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestDiscovery_FindInputFiles(t *testing.T) {
	dir := setupInputDir(t)
	d := NewDiscovery("")

	found, err := d.FindInputFiles(dir)
	require.NoError(t, err)

	// Name order, lock file and unknown extension skipped, no recursion
	assert.Equal(t, []string{"a.xlsx", "b.xlsx", "grades.zip", "old.XLS", "roster.csv"}, names(found))
	for _, f := range found {
		assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
		assert.Greater(t, f.Size, int64(0))
	}
}

func TestDiscovery_FindSpreadsheetFiles(t *testing.T) {
	dir := setupInputDir(t)
	d := NewDiscovery("")

	found, err := d.FindSpreadsheetFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx", "b.xlsx", "old.XLS"}, names(found))
}

func TestDiscovery_FindArchiveFiles(t *testing.T) {
	dir := setupInputDir(t)
	d := NewDiscovery("")

	found, err := d.FindArchiveFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"grades.zip"}, names(found))
}

func TestDiscovery_FindInputFiles_EmptyDirectory(t *testing.T) {
	d := NewDiscovery("")

	found, err := d.FindInputFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDiscovery_ExpandInputs(t *testing.T) {
	dir := setupInputDir(t)
	d := NewDiscovery("")

	extra := filepath.Join(dir, "notes.txt")
	expanded, err := d.ExpandInputs([]string{dir, extra})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "grades.zip"),
		filepath.Join(dir, "old.XLS"),
		filepath.Join(dir, "roster.csv"),
		// Explicit files pass through even with an unsupported extension
		extra,
	}
	assert.Equal(t, want, expanded)
}

func TestDiscovery_ExpandInputs_MissingInput(t *testing.T) {
	d := NewDiscovery("")

	_, err := d.ExpandInputs([]string{filepath.Join(t.TempDir(), "absent.xlsx")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat input")
}

func TestDiscovery_RelativeBasePath(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "exports"), 0755))
	writeFile(t, filepath.Join(base, "exports", "term.xlsx"))

	d := NewDiscovery(base)
	found, err := d.FindInputFiles("exports")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "exports", "term.xlsx"), found[0].Path)
}
