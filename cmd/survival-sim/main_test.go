package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"survival-sim/internal/scenario"
	"survival-sim/internal/sweep"
)

// execute はルートコマンドを実行して標準出力を返す
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "survival-sim version") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if v["version"] != version {
		t.Errorf("expected version %s, got %s", version, v["version"])
	}
}

func TestPresetsCmd(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range scenario.ListPresets() {
		if !strings.Contains(out, name) {
			t.Errorf("expected preset %s in output", name)
		}
	}
}

func TestRunCmdText(t *testing.T) {
	out, err := execute(t, "run", "--preset", "quick", "--seed", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "SIMULATION REPORT: quick") {
		t.Errorf("expected report, got: %s", out)
	}
}

func TestRunCmdJSONOverrides(t *testing.T) {
	out, err := execute(t, "run", "--systems", "3", "--attacks", "5", "--probability", "0", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result scenario.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.Population.Size() != 3 {
		t.Errorf("expected 3 systems, got %d", result.Population.Size())
	}
	if result.Scenario.ReportIndex != 2 {
		t.Errorf("expected report index moved to 2, got %d", result.Scenario.ReportIndex)
	}
	total := 0
	for _, b := range result.TerminalHistogram {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("expected histogram total 3, got %d", total)
	}
}

func TestRunCmdCSVFiles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "result")
	if _, err := execute(t, "run", "--preset", "quick", "--format", "csv", "--out", prefix); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, suffix := range []string{"_series.csv", "_terminal.csv", "_report.csv"} {
		data, err := os.ReadFile(prefix + suffix)
		if err != nil {
			t.Errorf("expected %s to be written: %v", suffix, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("expected %s to be non-empty", suffix)
		}
	}
}

func TestRunCmdConfigFile(t *testing.T) {
	content := `
scenario:
  preset: hardened
  systems: 4
  attacks: 12
  report_index: 6
  seed: 8
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create config: %v", err)
	}

	out, err := execute(t, "run", "--config", path, "--systems", "2", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result scenario.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.Scenario.Probability != 0.2 {
		t.Errorf("expected preset probability 0.2, got %v", result.Scenario.Probability)
	}
	if result.Scenario.Systems != 2 {
		t.Errorf("expected flag to override systems, got %d", result.Scenario.Systems)
	}
	if result.Scenario.Seed != 8 {
		t.Errorf("expected seed 8, got %d", result.Scenario.Seed)
	}
}

func TestRunCmdEnvOverride(t *testing.T) {
	t.Setenv("SURVIVAL_SIM_SYSTEMS", "6")

	out, err := execute(t, "run", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result scenario.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.Scenario.Systems != 6 {
		t.Errorf("expected env to set systems 6, got %d", result.Scenario.Systems)
	}
}

func TestRunCmdErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"run", "--preset", "nope"}},
		{"invalid report index", []string{"run", "--attacks", "5", "--report-index", "7"}},
		{"zero systems", []string{"run", "--systems", "0"}},
		{"unknown format", []string{"run", "--format", "xml"}},
		{"missing config", []string{"run", "--config", "/nonexistent.yaml"}},
		{"unknown log level", []string{"run", "--log-level", "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSweepCmdJSON(t *testing.T) {
	out, err := execute(t, "sweep", "--preset", "quick", "--probabilities", "0.2,0.8", "--workers", "2", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result sweep.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(result.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(result.Points))
	}
	if result.Points[0].Probability != 0.2 || result.Points[1].Probability != 0.8 {
		t.Errorf("unexpected probabilities: %v, %v", result.Points[0].Probability, result.Points[1].Probability)
	}
}

func TestSweepCmdTable(t *testing.T) {
	out, err := execute(t, "sweep", "--preset", "quick", "--from", "0", "--to", "1", "--steps", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "probability") || !strings.Contains(out, "draws/s") {
		t.Errorf("unexpected table output: %s", out)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create config: %v", err)
	}
	return path
}

func TestRunCmdPresetUnderConfigFile(t *testing.T) {
	path := writeConfig(t, `
scenario:
  systems: 4
  attacks: 12
`)

	out, err := execute(t, "run", "--config", path, "--preset", "fragile", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result scenario.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	fragile := scenario.FragileScenario()
	if result.Scenario.Name != fragile.Name {
		t.Errorf("expected name %s, got %s", fragile.Name, result.Scenario.Name)
	}
	if result.Scenario.Probability != fragile.Probability {
		t.Errorf("expected preset probability %v, got %v", fragile.Probability, result.Scenario.Probability)
	}
	if result.Scenario.Systems != 4 || result.Scenario.Attacks != 12 {
		t.Errorf("expected file to override size, got %dx%d", result.Scenario.Systems, result.Scenario.Attacks)
	}
}

func TestRunCmdPresetConflict(t *testing.T) {
	path := writeConfig(t, `
scenario:
  preset: hardened
`)

	if _, err := execute(t, "run", "--config", path, "--preset", "fragile"); err == nil {
		t.Error("expected error for conflicting presets")
	}
	if _, err := execute(t, "run", "--config", path, "--preset", "hardened", "--systems", "2"); err != nil {
		t.Errorf("expected matching presets to be accepted, got %v", err)
	}
}

func TestRunCmdEnvAttacksMovesReportIndex(t *testing.T) {
	t.Setenv("SURVIVAL_SIM_ATTACKS", "10")

	out, err := execute(t, "run", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result scenario.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.Scenario.ReportIndex != 5 {
		t.Errorf("expected report index 5, got %d", result.Scenario.ReportIndex)
	}
}
