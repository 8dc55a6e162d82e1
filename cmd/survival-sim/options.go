package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"survival-sim/internal/config"
	"survival-sim/internal/logger"
	"survival-sim/internal/scenario"

	"github.com/spf13/cobra"
)

// addScenarioFlags はシナリオ設定用の共通フラグを登録する
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "設定ファイルパス (YAML/JSON)")
	cmd.Flags().String("preset", "", "プリセットシナリオ名")
	cmd.Flags().Int("systems", 0, "システム数")
	cmd.Flags().Int("attacks", 0, "攻撃系列の長さ")
	cmd.Flags().Float64("probability", 0.5, "攻撃成功の閾値")
	cmd.Flags().Int("report-index", 0, "ヒストグラムを取るインデックス")
	cmd.Flags().Int64("seed", 0, "乱数シード")
}

// loadFileConfig は --config が指定されていれば読み込んで検証する
func loadFileConfig(cmd *cobra.Command) (*config.FileConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, nil
	}

	fc, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
	}
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("設定検証エラー: %w", err)
	}
	if fc.LogLevel != "" && !cmd.Flags().Changed("log-level") && os.Getenv("SURVIVAL_SIM_LOG_LEVEL") == "" {
		level, _ := logger.ParseLevel(fc.LogLevel)
		logger.Default.SetLevel(level)
	}
	return fc, nil
}

// buildScenarioConfig はシナリオ設定を構築する
// 優先順位: プリセット/デフォルト < 設定ファイル < 環境変数 < フラグ
func buildScenarioConfig(cmd *cobra.Command, fc *config.FileConfig) (scenario.Config, error) {
	cfg := scenario.QuickScenario()

	presetName, _ := cmd.Flags().GetString("preset")
	if presetName != "" {
		preset, ok := scenario.GetPreset(presetName)
		if !ok {
			return cfg, fmt.Errorf("不明なプリセット: %s (利用可能: %v)", presetName, scenario.ListPresets())
		}
		cfg = preset
	}

	// --preset は設定ファイルの土台になる。ファイル側のプリセットと食い違う場合はエラー
	if fc != nil {
		file := *fc
		if presetName != "" {
			if file.Scenario.Preset != "" && file.Scenario.Preset != presetName {
				return cfg, fmt.Errorf("プリセットが競合しています: --preset %s と設定ファイルの %s", presetName, file.Scenario.Preset)
			}
			file.Scenario.Preset = presetName
		}
		fileCfg, err := file.ToScenarioConfig()
		if err != nil {
			return cfg, fmt.Errorf("設定変換エラー: %w", err)
		}
		cfg = fileCfg
	}

	env, err := config.ParseEnv()
	if err != nil {
		return cfg, err
	}
	if cfg, err = env.Apply(cfg); err != nil {
		return cfg, err
	}

	// フラグが明示的に指定された場合のみオーバーライド
	flags := cmd.Flags()
	if flags.Changed("systems") {
		cfg.Systems, _ = flags.GetInt("systems")
	}
	if flags.Changed("attacks") {
		cfg.Attacks, _ = flags.GetInt("attacks")
		if !flags.Changed("report-index") && cfg.ReportIndex >= cfg.Attacks {
			cfg.ReportIndex = cfg.Attacks / 2
		}
	}
	if flags.Changed("probability") {
		cfg.Probability, _ = flags.GetFloat64("probability")
	}
	if flags.Changed("report-index") {
		cfg.ReportIndex, _ = flags.GetInt("report-index")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("設定検証エラー: %w", err)
	}
	return cfg, nil
}

// signalContext はSIGINT/SIGTERMで取り消されるコンテキストを返す
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			logger.Warn("", "中断シグナルを受信、終了中...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openOutput は出力先を開く。空または "-" ならコマンドの標準出力
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("出力ファイル作成エラー: %w", err)
	}
	return f, f.Close, nil
}
