package main

import (
	"context"
	"fmt"
	"io"

	"survival-sim/internal/export"
	"survival-sim/internal/metrics"
	"survival-sim/internal/scenario"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scenario and report its statistics",
		Example: `  # プリセットシナリオを実行
  survival-sim run --preset fair

  # 設定ファイルから実行
  survival-sim run --config scenario.yaml

  # フラグでカスタマイズしてJSON出力
  survival-sim run --systems 100 --attacks 500 --probability 0.3 --format json --out result.json

  # 系列とヒストグラムをCSVで出力 (result_series.csv など)
  survival-sim run --preset quick --format csv --out result`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(cmd)
			if err != nil {
				return err
			}
			cfg, err := buildScenarioConfig(cmd, fc)
			if err != nil {
				return err
			}
			formatName, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			m := metrics.New()
			result, err := runScenario(ctx, cfg, m)
			if err != nil {
				return fmt.Errorf("シナリオ実行エラー: %w", err)
			}

			return writeRunResult(cmd, result, format, out)
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().String("format", "text", "出力形式 (text, json, csv)")
	cmd.Flags().String("out", "", "出力先 (csv の場合はファイル名の接頭辞)")
	return cmd
}

// runScenario はシナリオを実行する
func runScenario(ctx context.Context, cfg scenario.Config, m *metrics.Metrics) (*scenario.Result, error) {
	engine := scenario.New(cfg)
	engine.SetMetrics(m)
	return engine.Run(ctx)
}

// writeRunResult は結果を指定形式で書き出す
func writeRunResult(cmd *cobra.Command, result *scenario.Result, format export.Format, out string) error {
	if format == export.FormatCSV {
		return writeRunCSV(cmd, result, out)
	}

	w, closeFn, err := openOutput(cmd, out)
	if err != nil {
		return err
	}

	switch format {
	case export.FormatJSON:
		err = export.WriteJSON(w, result)
	default:
		_, err = fmt.Fprintln(w, result.Report())
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

// writeRunCSV は系列と2つのヒストグラムを別ファイルに書き出す
func writeRunCSV(cmd *cobra.Command, result *scenario.Result, prefix string) error {
	if prefix == "" || prefix == "-" {
		return export.WriteSeriesCSV(cmd.OutOrStdout(), result.Population)
	}

	files := []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{"_series.csv", func(w io.Writer) error { return export.WriteSeriesCSV(w, result.Population) }},
		{"_terminal.csv", func(w io.Writer) error { return export.WriteHistogramCSV(w, result.TerminalHistogram) }},
		{"_report.csv", func(w io.Writer) error { return export.WriteHistogramCSV(w, result.ReportHistogram) }},
	}

	for _, f := range files {
		w, closeFn, err := openOutput(cmd, prefix+f.suffix)
		if err != nil {
			return err
		}
		err = f.write(w)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s_{series,terminal,report}.csv\n", prefix)
	return nil
}
