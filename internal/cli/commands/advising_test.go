package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"acadcli/internal/config"
)

// writeAdvisingWorkbook builds a workbook shaped like a PBHL advising
// template: seven preamble rows on the advising sheet, then the course code
// in column A and the status in column H.
func writeAdvisingWorkbook(t *testing.T, path string, data [][2]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(config.AdvisingSheetName)
	require.NoError(t, err)

	rows := make([][]string, 0, 7+len(data))
	for i := 0; i < 7; i++ {
		rows = append(rows, []string{"preamble", "", "", "", "", "", "", ""})
	}
	for _, d := range data {
		rows = append(rows, []string{d[0], "", "", "", "", "", "", d[1]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		require.NoError(t, f.SetSheetRow(config.AdvisingSheetName, cell, &vals))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestAdvisingCommand_EndToEnd(t *testing.T) {
	dir := setupCommandEnv(t)

	amy := filepath.Join(dir, "amy.xlsx")
	writeAdvisingWorkbook(t, amy, [][2]string{{"PBHL 330", "Yes"}, {"ARAB 201", "Optional"}})
	zoe := filepath.Join(dir, "zoe.xlsx")
	writeAdvisingWorkbook(t, zoe, [][2]string{{"PBHL 330", ""}})

	cmd := NewAdvisingCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"-p", "PBHL", amy, zoe})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 0, ExitCode)
	assert.Contains(t, buf.String(), "2 student(s), 2 course(s)")
	assert.FileExists(t, filepath.Join("out", config.AdvisingReportXLSX))

	f, err := excelize.OpenFile(filepath.Join("out", config.AdvisingReportXLSX))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(config.AdvisingSummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Course Code", "Yes", "Optional", "Not Advised"}, rows[0])
	assert.Equal(t, []string{"ARAB201", "0", "1", "0"}, rows[1])
	assert.Equal(t, []string{"PBHL330", "1", "0", "1"}, rows[2])
}

func TestAdvisingCommand_SkippedWorkbook(t *testing.T) {
	dir := setupCommandEnv(t)

	amy := filepath.Join(dir, "amy.xlsx")
	writeAdvisingWorkbook(t, amy, [][2]string{{"PBHL 330", "Yes"}})

	// No advising sheet, so this workbook is skipped.
	bob := filepath.Join(dir, "bob.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "not advising"))
	require.NoError(t, f.SaveAs(bob))
	require.NoError(t, f.Close())

	cmd := NewAdvisingCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"-p", "PBHL", amy, bob})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, ExitCode, "skipped workbooks surface in the exit code")
	assert.Contains(t, buf.String(), "Skipped 1 workbook(s): bob")
}

func TestAdvisingCommand_UnknownProgram(t *testing.T) {
	setupCommandEnv(t)

	cmd := NewAdvisingCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"-p", "NURS", "whatever.xlsx"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.False(t, IsRunFailure(err))
	assert.Contains(t, err.Error(), `unknown program "NURS"`)
}

func TestAdvisingCommand_NoReadableWorkbooks(t *testing.T) {
	dir := setupCommandEnv(t)

	bob := filepath.Join(dir, "bob.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "not advising"))
	require.NoError(t, f.SaveAs(bob))
	require.NoError(t, f.Close())

	cmd := NewAdvisingCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"-p", "PBHL", bob})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, IsRunFailure(err))
	assert.Contains(t, err.Error(), "no advising sheets")
}
