// metricstable.go parses the metrics analysis output into structured
// rows. The model is instructed to emit CSV, but models drift, so the
// parse is best-effort: callers that get a ParseError fall back to
// presenting the raw text.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"finreport_backend/core"
)

// errNoHeader indicates the CSV header line was not found in the output.
var errNoHeader = errors.New("metrics header not found")

// MetricsRow is one parsed row of the metrics table.
type MetricsRow struct {
	Metric         string `json:"metric"`
	CurrentPeriod  string `json:"current_period"`
	PreviousPeriod string `json:"previous_period"`
	Change         string `json:"change"`
}

// ParseMetricsTable parses the model's metrics output into rows.
//
// The parser strips Markdown code fences, locates the expected header
// line, and reads CSV from there. Rows with the wrong field count are
// skipped rather than failing the parse. A missing header or an
// unreadable body returns *core.ParseError.
//
// Example:
//
//	rows, err := ParseMetricsTable(output)
//	if err != nil {
//	    // present output as raw text instead
//	}
func ParseMetricsTable(output string) ([]MetricsRow, error) {
	body, err := locateCSV(output)
	if err != nil {
		return nil, core.NewParseError("csv", err)
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewParseError("csv", err)
	}

	var rows []MetricsRow
	for _, record := range records {
		if len(record) != 4 {
			continue
		}
		rows = append(rows, MetricsRow{
			Metric:         strings.TrimSpace(record[0]),
			CurrentPeriod:  strings.TrimSpace(record[1]),
			PreviousPeriod: strings.TrimSpace(record[2]),
			Change:         strings.TrimSpace(record[3]),
		})
	}

	if len(rows) == 0 {
		return nil, core.NewParseError("csv", fmt.Errorf("no metric rows in output"))
	}
	return rows, nil
}

// locateCSV strips code fences and returns the output from the first
// line after the header onward.
func locateCSV(output string) (string, error) {
	var lines []string
	headerAt := -1
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		if headerAt < 0 && strings.EqualFold(normalizeHeader(trimmed), normalizeHeader(MetricsCSVHeader)) {
			headerAt = len(lines)
		}
		lines = append(lines, trimmed)
	}
	if headerAt < 0 {
		return "", errNoHeader
	}
	return strings.Join(lines[headerAt+1:], "\n"), nil
}

// normalizeHeader removes spaces around commas so minor formatting
// drift in the header line still matches.
func normalizeHeader(line string) string {
	parts := strings.Split(line, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return strings.Join(parts, ",")
}
