package config

import (
	"fmt"

	"survival-sim/internal/logger"
	"survival-sim/internal/scenario"

	"github.com/caarlos0/env/v11"
)

// EnvConfig は環境変数による上書き設定
// 未設定の変数は nil のまま残る
type EnvConfig struct {
	Preset      string   `env:"SURVIVAL_SIM_PRESET"`
	Systems     *int     `env:"SURVIVAL_SIM_SYSTEMS"`
	Attacks     *int     `env:"SURVIVAL_SIM_ATTACKS"`
	Probability *float64 `env:"SURVIVAL_SIM_PROBABILITY"`
	ReportIndex *int     `env:"SURVIVAL_SIM_REPORT_INDEX"`
	Seed        *int64   `env:"SURVIVAL_SIM_SEED"`
	LogLevel    string   `env:"SURVIVAL_SIM_LOG_LEVEL"`
	Addr        string   `env:"SURVIVAL_SIM_ADDR" envDefault:":8080"`
}

// ParseEnv は環境変数から設定を読み込む
func ParseEnv() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Apply は環境変数の値をシナリオ設定に上書きする
func (e *EnvConfig) Apply(config scenario.Config) (scenario.Config, error) {
	if e.Preset != "" {
		preset, ok := scenario.GetPreset(e.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset in SURVIVAL_SIM_PRESET: %s", e.Preset)
		}
		config = preset
	}
	if e.Systems != nil {
		config.Systems = *e.Systems
	}
	if e.Attacks != nil {
		config.Attacks = *e.Attacks
		if e.ReportIndex == nil && config.ReportIndex >= config.Attacks {
			config.ReportIndex = config.Attacks / 2
		}
	}
	if e.Probability != nil {
		config.Probability = *e.Probability
	}
	if e.ReportIndex != nil {
		config.ReportIndex = *e.ReportIndex
	}
	if e.Seed != nil {
		config.Seed = *e.Seed
	}
	return config, nil
}
