// package formatter renders sign-in attempt history to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mcontrol/internal/models"
	"github.com/desertthunder/mcontrol/internal/shared"
)

// Format names accepted by [Render].
const (
	Text     = "text"
	CSV      = "csv"
	Markdown = "markdown"
	JSON     = "json"
)

// Formats lists every supported output format.
var Formats = []string{Text, CSV, Markdown, JSON}

// AttemptRecord is the flat, serializable view of an attempt.
type AttemptRecord struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"sequence"`
	Status      string     `json:"status"`
	Port        int        `json:"port,omitempty"`
	RedirectURI string     `json:"redirect_uri,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	DurationMS  int64      `json:"duration_ms,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewAttemptRecord flattens a.
func NewAttemptRecord(a *models.Attempt) AttemptRecord {
	return AttemptRecord{
		ID:          a.ID(),
		Sequence:    a.Sequence(),
		Status:      string(a.Status()),
		Port:        a.Port(),
		RedirectURI: a.RedirectURI(),
		StartedAt:   a.StartedAt(),
		FinishedAt:  a.FinishedAt(),
		DurationMS:  a.Duration().Milliseconds(),
		Error:       a.Error(),
	}
}

// AttemptsToCSV converts attempts to CSV with columns: ID, Sequence, Status, Port, Started, Finished, Duration, Error
func AttemptsToCSV(attempts []*models.Attempt) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Status", "Port", "Started", "Finished", "Duration", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range attempts {
		finished := ""
		if f := a.FinishedAt(); f != nil {
			finished = f.UTC().Format(time.RFC3339)
		}
		record := []string{
			a.ID(),
			strconv.Itoa(a.Sequence()),
			string(a.Status()),
			portString(a.Port()),
			a.StartedAt().UTC().Format(time.RFC3339),
			finished,
			formatDuration(a.Duration()),
			a.Error(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// AttemptsToMarkdown converts attempts to a Markdown table with a status summary
func AttemptsToMarkdown(attempts []*models.Attempt) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Sign-in attempts\n\n")
	buf.WriteString(fmt.Sprintf("**Attempts**: %d\n", len(attempts)))
	for _, line := range summarize(attempts) {
		buf.WriteString(fmt.Sprintf("**%s**: %d\n", line.status, line.count))
	}
	buf.WriteString("\n")

	if len(attempts) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Status | Port | Started | Duration | Error |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, a := range attempts {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			a.Sequence(),
			a.Status(),
			portString(a.Port()),
			a.StartedAt().UTC().Format(time.RFC3339),
			formatDuration(a.Duration()),
			strings.ReplaceAll(a.Error(), "|", `\|`),
		))
	}

	return buf.Bytes(), nil
}

// AttemptsToText converts attempts to plain text, one line per attempt
func AttemptsToText(attempts []*models.Attempt) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Attempts: %d\n\n", len(attempts)))
	for _, a := range attempts {
		line := fmt.Sprintf("#%d %-10s %s", a.Sequence(), a.Status(), a.StartedAt().Local().Format(time.DateTime))
		if a.Port() > 0 {
			line += fmt.Sprintf(" port=%d", a.Port())
		}
		if d := a.Duration(); d > 0 {
			line += " took=" + formatDuration(d)
		}
		if a.Error() != "" {
			line += fmt.Sprintf(" error=%q", a.Error())
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// AttemptsToJSON converts attempts to an indented JSON array of [AttemptRecord]
func AttemptsToJSON(attempts []*models.Attempt) ([]byte, error) {
	records := make([]AttemptRecord, len(attempts))
	for i, a := range attempts {
		records[i] = NewAttemptRecord(a)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attempts: %w", err)
	}
	return append(data, '\n'), nil
}

// Render converts attempts using the named format.
func Render(format string, attempts []*models.Attempt) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", Text:
		return AttemptsToText(attempts)
	case CSV:
		return AttemptsToCSV(attempts)
	case Markdown, "md":
		return AttemptsToMarkdown(attempts)
	case JSON:
		return AttemptsToJSON(attempts)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteExport renders attempts in format and writes them to path.
func WriteExport(attempts []*models.Attempt, format, path string) error {
	data, err := Render(format, attempts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

type statusCount struct {
	status models.AttemptStatus
	count  int
}

// summarize counts attempts per status in a fixed status order, skipping zero counts.
func summarize(attempts []*models.Attempt) []statusCount {
	counts := make(map[models.AttemptStatus]int)
	for _, a := range attempts {
		counts[a.Status()]++
	}

	var out []statusCount
	for _, s := range models.AttemptStatuses {
		if counts[s] > 0 {
			out = append(out, statusCount{status: s, count: counts[s]})
		}
	}
	return out
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}
