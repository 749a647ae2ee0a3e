package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acadcli/internal/config"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, string, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "exporter_test_*")
	require.NoError(t, err)

	writer := NewCSVWriter(&config.Paths{
		OutputDir: tempDir,
		LogsDir:   filepath.Join(tempDir, "logs"),
	})

	cleanup := func() {
		os.RemoveAll(tempDir)
	}

	return writer, tempDir, cleanup
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	tests := []struct {
		name        string
		filePath    string
		options     WriteOptions
		expectError bool
		validate    func(t *testing.T, filePath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"StudentID", "Course", "Grade"},
				Records: [][]string{
					{"S001", "CS50", "A"},
					{"S002", "MATH101", "B+"},
				},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "StudentID,Course,Grade", lines[0])
				assert.Equal(t, "S001,CS50,A", lines[1])
				assert.Equal(t, "S002,MATH101,B+", lines[2])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers: []string{"Course", "Yes"},
				Records: [][]string{
					{"ARAB201", "4"},
				},
				Append:    false,
				BOMPrefix: true,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				// Check for UTF-8 BOM
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

				// Remove BOM and check content
				contentWithoutBOM := content[3:]
				lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")
				assert.Equal(t, "Course,Yes", lines[0])
				assert.Equal(t, "ARAB201,4", lines[1])
			},
		},
		{
			name:     "write without headers",
			filePath: "test_no_headers.csv",
			options: WriteOptions{
				Headers: nil,
				Records: [][]string{
					{"Data1", "Data2"},
					{"Data3", "Data4"},
				},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 2) // only records, no headers
				assert.Equal(t, "Data1,Data2", lines[0])
				assert.Equal(t, "Data3,Data4", lines[1])
			},
		},
		{
			name:     "append to existing file",
			filePath: "test_append.csv",
			options: WriteOptions{
				Records: [][]string{
					{"AppendedData1", "AppendedData2"},
				},
				Append:    true,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				// Should contain both original and appended data
				assert.Contains(t, string(content), "InitData1,InitData2")
				assert.Contains(t, string(content), "AppendedData1,AppendedData2")
			},
		},
		{
			name:     "empty records",
			filePath: "test_empty.csv",
			options: WriteOptions{
				Headers:   []string{"Col1", "Col2"},
				Records:   [][]string{},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 1) // only headers
				assert.Equal(t, "Col1,Col2", lines[0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath := filepath.Join(tempDir, tt.filePath)

			// For append test, create initial file first
			if tt.name == "append to existing file" {
				initialOptions := WriteOptions{
					Headers:   []string{"Initial1", "Initial2"},
					Records:   [][]string{{"InitData1", "InitData2"}},
					Append:    false,
					BOMPrefix: false,
				}
				err := writer.WriteCSV(tt.filePath, initialOptions)
				require.NoError(t, err)
			}

			err := writer.WriteCSV(tt.filePath, tt.options)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				tt.validate(t, fullPath)
			}
		})
	}
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	headers := []string{"StudentID", "Course", "Semester"}
	records := [][]string{
		{"S001", "CS50", "SPRING"},
		{"S002", "PBHL201", "FALL"},
	}

	err := writer.WriteSimpleCSV("simple_test.csv", headers, records)
	assert.NoError(t, err)

	// Validate file content
	filePath := filepath.Join(tempDir, "simple_test.csv")
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)

	// Check for BOM (WriteSimpleCSV uses BOMPrefix: true)
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

	// Remove BOM and check content
	contentWithoutBOM := content[3:]
	lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")
	assert.Len(t, lines, 3) // header + 2 records
	assert.Equal(t, "StudentID,Course,Semester", lines[0])
	assert.Equal(t, "S001,CS50,SPRING", lines[1])
	assert.Equal(t, "S002,PBHL201,FALL", lines[2])
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	filePath := "append_test.csv"
	fullPath := filepath.Join(tempDir, filePath)

	// Create initial file
	initialRecords := [][]string{
		{"Initial1", "Initial2"},
		{"Data1", "Data2"},
	}
	err := writer.WriteSimpleCSV(filePath, []string{"Col1", "Col2"}, initialRecords)
	require.NoError(t, err)

	// Append new records
	appendRecords := [][]string{
		{"Appended1", "Appended2"},
		{"NewData1", "NewData2"},
	}
	err = writer.AppendToCSV(filePath, appendRecords)
	assert.NoError(t, err)

	// Validate content
	content, err := os.ReadFile(fullPath)
	require.NoError(t, err)

	// Remove BOM for easier parsing
	contentWithoutBOM := content[3:]
	lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")

	assert.Len(t, lines, 5) // header + 2 initial + 2 appended
	assert.Equal(t, "Col1,Col2", lines[0])
	assert.Equal(t, "Initial1,Initial2", lines[1])
	assert.Equal(t, "Data1,Data2", lines[2])
	assert.Equal(t, "Appended1,Appended2", lines[3])
	assert.Equal(t, "NewData1,NewData2", lines[4])
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	absolute := filepath.Join(tempDir, "elsewhere", "direct.csv")
	assert.Equal(t, absolute, writer.resolvePath(absolute))

	assert.Equal(t, filepath.Join(tempDir, "tidy_records.csv"), writer.resolvePath("tidy_records.csv"))
	assert.Equal(t, filepath.Join(tempDir, "sub", "file.csv"), writer.resolvePath(filepath.Join("sub", "file.csv")))
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	// Test with special characters that need CSV escaping
	headers := []string{"Name", "Description", "Notes"}
	records := [][]string{
		{"Nursing, BSc", "Description with \"quotes\"", "Notes with\nnewlines"},
		{"Öffentliche Gesundheit", "Accents: ñáéíóú", "Arabic: صحة"},
		{"Course;With;Semicolons", "Text,with,commas", "Text\twith\ttabs"},
	}

	err := writer.WriteSimpleCSV("special_chars.csv", headers, records)
	assert.NoError(t, err)

	// Read back and parse to verify CSV escaping worked correctly
	filePath := filepath.Join(tempDir, "special_chars.csv")
	file, err := os.Open(filePath)
	require.NoError(t, err)
	defer file.Close()

	// Skip BOM
	bom := make([]byte, 3)
	_, err = file.Read(bom)
	require.NoError(t, err)

	reader := csv.NewReader(file)
	allRecords, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Len(t, allRecords, 4) // header + 3 records

	// Verify headers
	assert.Equal(t, headers, allRecords[0])

	// Verify first record with special characters
	assert.Equal(t, "Nursing, BSc", allRecords[1][0])
	assert.Equal(t, "Description with \"quotes\"", allRecords[1][1])
	assert.Equal(t, "Notes with\nnewlines", allRecords[1][2])

	// Verify Unicode characters
	assert.Equal(t, "Öffentliche Gesundheit", allRecords[2][0])
	assert.Equal(t, "Accents: ñáéíóú", allRecords[2][1])
	assert.Equal(t, "Arabic: صحة", allRecords[2][2])
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	stream, err := writer.CreateStreamWriter("streamed.csv", []string{"StudentID", "Course"})
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"S001", "CS50"}))
	require.NoError(t, stream.WriteRecord([]string{"S002", "MATH101"}))
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(filepath.Join(tempDir, "streamed.csv"))
	require.NoError(t, err)

	// Stream writer always prefixes the BOM
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "StudentID,Course", lines[0])
	assert.Equal(t, "S001,CS50", lines[1])
	assert.Equal(t, "S002,MATH101", lines[2])
}

func TestCSVWriter_ConcurrentWrites(t *testing.T) {
	writer, tempDir, cleanup := setupTestEnv(t)
	defer cleanup()

	const numGoroutines = 8
	const recordsPerGoroutine = 50

	var wg sync.WaitGroup
	errChan := make(chan error, numGoroutines)

	// Test concurrent writes to different files
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			filePath := filepath.Join("concurrent", fmt.Sprintf("file_%d.csv", id))

			var records [][]string
			for j := 0; j < recordsPerGoroutine; j++ {
				records = append(records, []string{
					fmt.Sprintf("S%03d", id),
					fmt.Sprintf("CRS%d", j),
				})
			}

			if err := writer.WriteSimpleCSV(filePath, []string{"StudentID", "Course"}, records); err != nil {
				errChan <- err
			}
		}(i)
	}

	wg.Wait()
	close(errChan)

	// Check for any errors
	for err := range errChan {
		assert.NoError(t, err)
	}

	// Verify all files were created correctly
	for i := 0; i < numGoroutines; i++ {
		filePath := filepath.Join(tempDir, "concurrent", fmt.Sprintf("file_%d.csv", i))
		content, err := os.ReadFile(filePath)
		require.NoError(t, err)

		// Remove BOM and count lines
		contentWithoutBOM := content[3:]
		lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")
		assert.Len(t, lines, recordsPerGoroutine+1) // header + records
	}
}
