package report

import (
	"errors"
	"testing"

	"finreport_backend/core"
)

func TestParseMetricsTable(t *testing.T) {
	output := `Metric,Current Period,Previous Period,Change
Revenue,$10.2B,$9.1B,+12.1%
Net Income,$1.4B,$1.1B,+27.3%
EBITDA,N/A,N/A,N/A
EPS,$2.31,$1.87,+23.5%
Total Assets,$88.0B,$85.2B,+3.3%
Total Debt,$12.5B,$13.0B,-3.8%`

	rows, err := ParseMetricsTable(output)
	if err != nil {
		t.Fatalf("ParseMetricsTable() error = %v", err)
	}

	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	if rows[0].Metric != "Revenue" || rows[0].CurrentPeriod != "$10.2B" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[2].CurrentPeriod != "N/A" {
		t.Errorf("missing values should stay N/A, got %q", rows[2].CurrentPeriod)
	}
	if rows[5].Change != "-3.8%" {
		t.Errorf("row 5 change = %q", rows[5].Change)
	}
}

func TestParseMetricsTable_StripsCodeFences(t *testing.T) {
	output := "Here are the metrics:\n```csv\n" +
		"Metric,Current Period,Previous Period,Change\n" +
		"Revenue,$5M,$4M,+25%\n" +
		"```"

	rows, err := ParseMetricsTable(output)
	if err != nil {
		t.Fatalf("ParseMetricsTable() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Metric != "Revenue" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestParseMetricsTable_HeaderSpacingDrift(t *testing.T) {
	output := "Metric, Current Period, Previous Period, Change\nRevenue,$5M,$4M,+25%"

	rows, err := ParseMetricsTable(output)
	if err != nil {
		t.Fatalf("ParseMetricsTable() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}
}

func TestParseMetricsTable_SkipsMalformedRows(t *testing.T) {
	output := "Metric,Current Period,Previous Period,Change\n" +
		"Revenue,$5M,$4M,+25%\n" +
		"this line is commentary the model added\n" +
		"EPS,$1.10,$0.95,+15.8%"

	rows, err := ParseMetricsTable(output)
	if err != nil {
		t.Fatalf("ParseMetricsTable() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 (malformed row skipped)", len(rows))
	}
}

func TestParseMetricsTable_Failures(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty output", ""},
		{"no header", "Revenue was strong this quarter."},
		{"header but no rows", "Metric,Current Period,Previous Period,Change"},
		{"header with only malformed rows", "Metric,Current Period,Previous Period,Change\nnope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetricsTable(tt.output)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *core.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error type = %T, want *core.ParseError", err)
			}
		})
	}
}
