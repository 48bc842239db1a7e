// =============================================================================
// csv2wiki - Run Report Utility
// =============================================================================
//
// This module writes the plain-text summary of a create or delete run:
//   - Run information (ID, action, start/end, duration)
//   - Counts (rows, pages, sections, deletions, ...)
//   - Every page title touched, in order
//
// FILE NAMING:
//   Reports are named <action>_<timestamp>_<uuid>.log. The uuid is the
//   run ID when one is given, so log lines and report files can be matched.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportFileNameFormat is the default report file name format.
const ReportFileNameFormat = "{action}_{timestamp}_{uuid}.log"

const rule = "================================================================================\n"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateReportFileName generates a unique report file name.
//
// PARAMETERS:
//   - format: The file name format with placeholders.
//   - params: Additional placeholder values (e.g., {"action": "create"}).
//
// SUPPORTED PLACEHOLDERS:
//   - {uuid}: A random UUID unless params supplies one
//   - {timestamp}: Current timestamp (YYYYMMDD_HHMMSS)
//   - {date}: Current date (YYYYMMDD)
//   - {time}: Current time (HHMMSS)
//   - Any key in params
//
// RETURNS:
//   - The file name, always ending in .log.
//
// EXAMPLE:
//   GenerateReportFileName(ReportFileNameFormat, map[string]string{"action": "delete"})
//   -> "delete_20240115_143022_550e8400-e29b-41d4-a716-446655440000.log"
func GenerateReportFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".log") {
		result += ".log"
	}
	return result
}

// ReportPath returns the path of a new report for action in dir.
func ReportPath(dir, action, runID string) string {
	params := map[string]string{"action": action}
	if runID != "" {
		params["uuid"] = runID
	}
	return filepath.Join(dir, GenerateReportFileName(ReportFileNameFormat, params))
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// Count is one labelled statistic in a summary.
type Count struct {
	Label string
	Value int
}

// RunSummary contains summary information about a run.
type RunSummary struct {
	RunID  string
	Action string

	// Target is the input file for create or the search string for delete.
	Target string
	Wiki   string
	DryRun bool

	StartTime time.Time
	EndTime   time.Time

	// Counts are written in order.
	Counts []Count

	// Titles lists every page touched, in order.
	Titles []string

	// Error is the error that ended the run, if any.
	Error error
}

// WriteSummaryLog writes a run summary into outputDir.
//
// PARAMETERS:
//   - summary: The summary to write.
//   - outputDir: The report directory. It is created if missing.
//
// RETURNS:
//   - The path of the written file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}
	summaryPath := ReportPath(outputDir, summary.Action, summary.RunID)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writeSummary(writer, summary)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

func writeSummary(w *bufio.Writer, s RunSummary) {
	status := "success"
	if s.Error != nil {
		status = "failed"
	}

	fmt.Fprintf(w, "csv2wiki - %s run summary\n", s.Action)
	w.WriteString(rule + "\n")

	w.WriteString("Run Information:\n")
	fmt.Fprintf(w, "  Run ID:     %s\n", s.RunID)
	fmt.Fprintf(w, "  Action:     %s\n", s.Action)
	fmt.Fprintf(w, "  Target:     %s\n", s.Target)
	fmt.Fprintf(w, "  Wiki:       %s\n", s.Wiki)
	fmt.Fprintf(w, "  Dry Run:    %t\n", s.DryRun)
	fmt.Fprintf(w, "  Start Time: %s\n", s.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  End Time:   %s\n", s.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:   %s\n", s.EndTime.Sub(s.StartTime))
	fmt.Fprintf(w, "  Status:     %s\n", status)
	if s.Error != nil {
		fmt.Fprintf(w, "  Error:      %s\n", s.Error)
	}
	w.WriteString("\n")

	if len(s.Counts) > 0 {
		w.WriteString("Statistics:\n")
		width := 0
		for _, c := range s.Counts {
			if len(c.Label) > width {
				width = len(c.Label)
			}
		}
		for _, c := range s.Counts {
			fmt.Fprintf(w, "  %-*s %d\n", width+1, c.Label+":", c.Value)
		}
		w.WriteString("\n")
	}

	fmt.Fprintf(w, "Pages (%d):\n", len(s.Titles))
	w.WriteString("--------------------------------------------------------------------------------\n")
	for _, title := range s.Titles {
		fmt.Fprintf(w, "  %s\n", title)
	}
	w.WriteString("\n")

	w.WriteString(rule)
	w.WriteString("End of Summary\n")
}
