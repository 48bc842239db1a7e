package utils

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReportFileName(t *testing.T) {
	name := GenerateReportFileName(ReportFileNameFormat, map[string]string{"action": "create"})
	assert.Regexp(t, regexp.MustCompile(`^create_\d{8}_\d{6}_[0-9a-f-]{36}\.log$`), name)

	other := GenerateReportFileName(ReportFileNameFormat, map[string]string{"action": "create"})
	assert.NotEqual(t, name, other, "uuid makes names unique")

	assert.Equal(t, "fixed.log", GenerateReportFileName("fixed", nil))
	assert.Equal(t, "delete_run-1.log", GenerateReportFileName("{action}_{uuid}.log", map[string]string{"action": "delete", "uuid": "run-1"}))
}

func TestReportPath(t *testing.T) {
	path := ReportPath("/tmp/reports", "delete", "abc")
	assert.Equal(t, "/tmp/reports", filepath.Dir(path))
	assert.Regexp(t, `^delete_\d{8}_\d{6}_abc\.log$`, filepath.Base(path))
}

func TestWriteSummaryLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	path, err := WriteSummaryLog(RunSummary{
		RunID:     "run-42",
		Action:    "create",
		Target:    "proposals.csv",
		Wiki:      "http://localhost/mediawiki/api.php",
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Counts: []Count{
			{Label: "Rows", Value: 3},
			{Label: "Fallback sections", Value: 7},
		},
		Titles: []string{"Proposal_1: A", "List of Proposals"},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "_run-42.log")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "csv2wiki - create run summary")
	assert.Contains(t, text, "  Run ID:     run-42\n")
	assert.Contains(t, text, "  Duration:   1m30s\n")
	assert.Contains(t, text, "  Status:     success\n")
	assert.Contains(t, text, "  Rows:              3\n")
	assert.Contains(t, text, "  Fallback sections: 7\n")
	assert.Contains(t, text, "Pages (2):\n")
	assert.Contains(t, text, "  List of Proposals\n")
	assert.NotContains(t, text, "Error:")
}

func TestWriteSummaryLog_Failure(t *testing.T) {
	path, err := WriteSummaryLog(RunSummary{
		Action: "delete",
		Error:  errors.New("permission denied"),
	}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  Status:     failed\n")
	assert.Contains(t, string(data), "  Error:      permission denied\n")
	assert.Contains(t, string(data), "Pages (0):\n")
}

func TestWriteSummaryLog_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := WriteSummaryLog(RunSummary{Action: "create"}, filepath.Join(file, "sub"))
	require.Error(t, err)
}
