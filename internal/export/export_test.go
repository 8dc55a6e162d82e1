package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"survival-sim/internal/rng"
	"survival-sim/internal/scenario"
	"survival-sim/internal/simulation"
	"survival-sim/internal/sweep"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		hasError bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"", FormatText, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error for %q: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	buckets := []simulation.Bucket{{Value: 2, Count: 1}, {Value: 1, Count: 0}}

	if err := WriteJSON(buf, buckets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []simulation.Bucket
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != buckets[0] {
		t.Errorf("unexpected decoded value: %+v", decoded)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestWriteSeriesCSV(t *testing.T) {
	pop, err := simulation.RunPopulation(rng.NewSequence(0.9, 0.1), 2, 3, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := WriteSeriesCSV(buf, pop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(records) != 1+2*3 {
		t.Fatalf("expected 7 records, got %d", len(records))
	}
	if records[0][0] != "system" || len(records[0]) != 7 {
		t.Errorf("unexpected header: %v", records[0])
	}
	// system 0, index 1: 0.9 > 0.5 で生存
	want := []string{"0", "1", "1", "1", "1", "0.5", "0.7071067811865475"}
	for i := range want {
		if records[2][i] != want[i] {
			t.Errorf("column %d: expected %s, got %s", i, want[i], records[2][i])
		}
	}
}

func TestWriteHistogramCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	buckets := simulation.BuildHistogram([]int{1, -1, 1})

	if err := WriteHistogramCSV(buf, buckets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "value,count\n1,2\n0,0\n-1,1\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestWriteSweepCSV(t *testing.T) {
	res := &sweep.Result{
		Points: []sweep.Point{
			{Probability: 0.25, Seed: 1, Summary: scenario.Summary{MeanTerminal: 1.5, Survivors: 3, SurvivalRate: 0.75}},
			{Probability: 0.75, Seed: 7920},
		},
	}

	buf := &bytes.Buffer{}
	if err := WriteSweepCSV(buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1][0] != "0.25" || records[1][2] != "1.5" || records[1][6] != "3" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][1] != "7920" {
		t.Errorf("expected seed 7920, got %s", records[2][1])
	}
}
