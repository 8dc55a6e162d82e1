package scenario

import (
	"fmt"
	"strings"
	"time"

	"survival-sim/internal/simulation"
)

const histogramBarWidth = 40

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, `
================================================================================
                         SIMULATION REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Run ID:         %s
  Start Time:     %s
  Duration:       %v
  Seed:           %d

PARAMETERS
----------
  Systems:        %d
  Attacks:        %d
  Probability:    %v
  Report Index:   %d

POPULATION STATISTICS
---------------------
  Mean Terminal:      %.2f
  Min / Max:          %d / %d
  Mean Rel. Freq.:    %.4f
  Survivors:          %d (%.2f%%)
`,
		r.Scenario.Name,
		r.ID,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Microsecond),
		r.Scenario.Seed,
		r.Scenario.Systems,
		r.Scenario.Attacks,
		r.Scenario.Probability,
		r.Scenario.ReportIndex,
		r.Summary.MeanTerminal,
		r.Summary.MinTerminal,
		r.Summary.MaxTerminal,
		r.Summary.MeanRelativeFrequency,
		r.Summary.Survivors,
		r.Summary.SurvivalRate*100,
	)

	writeHistogram(&b, "TERMINAL SCORE HISTOGRAM", r.TerminalHistogram)
	writeHistogram(&b, fmt.Sprintf("SCORE AT INDEX %d", r.Scenario.ReportIndex), r.ReportHistogram)

	b.WriteString("\n================================================================================")
	return b.String()
}

// writeHistogram はヒストグラムを横棒グラフとして書き出す
func writeHistogram(b *strings.Builder, title string, buckets []simulation.Bucket) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	if len(buckets) == 0 {
		b.WriteString("  (no data)\n")
		return
	}

	mode, _ := simulation.Mode(buckets)
	peak := mode.Count
	fmt.Fprintf(b, "  mode: %d (%d of %d systems)\n", mode.Value, mode.Count, simulation.Total(buckets))
	for _, bk := range buckets {
		width := 0
		if peak > 0 {
			width = bk.Count * histogramBarWidth / peak
		}
		fmt.Fprintf(b, "  %6d | %-*s %d\n", bk.Value, histogramBarWidth, strings.Repeat("#", width), bk.Count)
	}
}
