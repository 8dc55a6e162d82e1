package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"survival-sim/internal/export"
	"survival-sim/internal/metrics"
	"survival-sim/internal/sweep"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one scenario across a range of probabilities",
		Example: `  # 0.1 から 0.9 まで 9 点
  survival-sim sweep --preset fair --from 0.1 --to 0.9 --steps 9

  # 確率を列挙してCSV出力
  survival-sim sweep --probabilities 0.2,0.5,0.8 --format csv --out sweep.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(cmd)
			if err != nil {
				return err
			}
			base, err := buildScenarioConfig(cmd, fc)
			if err != nil {
				return err
			}

			sc := sweep.Config{Base: base}
			if fc != nil {
				sc = fc.ToSweepConfig(base)
			}
			flags := cmd.Flags()
			if flags.Changed("probabilities") {
				sc.Probabilities, _ = flags.GetFloat64Slice("probabilities")
			} else if flags.Changed("steps") || len(sc.Probabilities) == 0 {
				from, _ := flags.GetFloat64("from")
				to, _ := flags.GetFloat64("to")
				steps, _ := flags.GetInt("steps")
				sc.Probabilities = sweep.Linspace(from, to, steps)
			}
			if flags.Changed("workers") || sc.Workers == 0 {
				sc.Workers, _ = flags.GetInt("workers")
			}

			formatName, _ := flags.GetString("format")
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			out, _ := flags.GetString("out")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			m := metrics.New()
			runner := sweep.New()
			runner.SetMetrics(m)
			result, err := runner.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("スイープ実行エラー: %w", err)
			}

			w, closeFn, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			switch format {
			case export.FormatJSON:
				err = export.WriteJSON(w, result)
			case export.FormatCSV:
				err = export.WriteSweepCSV(w, result)
			default:
				err = writeSweepTable(w, result, m.Snapshot())
			}
			if cerr := closeFn(); err == nil {
				err = cerr
			}
			return err
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().Float64Slice("probabilities", nil, "確率の一覧 (例: 0.2,0.5,0.8)")
	cmd.Flags().Float64("from", 0.1, "確率の開始値")
	cmd.Flags().Float64("to", 0.9, "確率の終了値")
	cmd.Flags().Int("steps", 9, "確率の点数")
	cmd.Flags().Int("workers", 0, "ワーカー数 (0でCPU数)")
	cmd.Flags().String("format", "text", "出力形式 (text, json, csv)")
	cmd.Flags().String("out", "", "出力先")
	return cmd
}

// writeSweepTable はスイープ結果を表形式で書き出す
func writeSweepTable(w io.Writer, res *sweep.Result, snap metrics.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "probability\tmean terminal\tmin\tmax\tmean rel. freq.\tsurvivors\t\n")
	for _, p := range res.Points {
		fmt.Fprintf(tw, "%g\t%.2f\t%d\t%d\t%.4f\t%d (%.1f%%)\t\n",
			p.Probability, p.Summary.MeanTerminal, p.Summary.MinTerminal, p.Summary.MaxTerminal,
			p.Summary.MeanRelativeFrequency, p.Summary.Survivors, p.Summary.SurvivalRate*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n%d systems, %d draws, %.0f draws/s\n",
		strings.Repeat("-", 40), snap.Systems, snap.Draws, snap.DrawsPerSecond)
	return err
}
