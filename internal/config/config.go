package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"survival-sim/internal/logger"
	"survival-sim/internal/scenario"
	"survival-sim/internal/sweep"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
	Sweep    SweepConfig    `yaml:"sweep" json:"sweep"`
	LogLevel string         `yaml:"log_level" json:"log_level"`
}

// ScenarioConfig はシナリオ設定
// ポインタのフィールドは未指定と0を区別するため
type ScenarioConfig struct {
	Preset      string   `yaml:"preset" json:"preset"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Systems     int      `yaml:"systems" json:"systems"`
	Attacks     int      `yaml:"attacks" json:"attacks"`
	Probability *float64 `yaml:"probability" json:"probability"`
	ReportIndex *int     `yaml:"report_index" json:"report_index"`
	Seed        int64    `yaml:"seed" json:"seed"`
}

// SweepConfig はスイープ設定
type SweepConfig struct {
	Probabilities []float64 `yaml:"probabilities" json:"probabilities"`
	From          float64   `yaml:"from" json:"from"`
	To            float64   `yaml:"to" json:"to"`
	Steps         int       `yaml:"steps" json:"steps"`
	Workers       int       `yaml:"workers" json:"workers"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// Validate は設定を検証する
// probability の範囲は検証しない
func (f *FileConfig) Validate() error {
	sc := f.Scenario

	if sc.Preset != "" {
		if _, ok := scenario.GetPreset(sc.Preset); !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", sc.Preset, scenario.ListPresets())
		}
	}
	if sc.Systems < 0 {
		return fmt.Errorf("scenario.systems must be non-negative")
	}
	if sc.Attacks < 0 {
		return fmt.Errorf("scenario.attacks must be non-negative")
	}
	if sc.ReportIndex != nil && *sc.ReportIndex < 0 {
		return fmt.Errorf("scenario.report_index must be non-negative")
	}
	if f.Sweep.Steps < 0 {
		return fmt.Errorf("sweep.steps must be non-negative")
	}
	if f.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must be non-negative")
	}
	if _, err := logger.ParseLevel(f.LogLevel); err != nil {
		return err
	}

	return nil
}

// ToScenarioConfig はFileConfigをscenario.Configに変換する
// preset があればそれを、なければデフォルト設定を土台にする
func (f *FileConfig) ToScenarioConfig() (scenario.Config, error) {
	sc := f.Scenario

	config := scenario.DefaultConfig()
	if sc.Preset != "" {
		preset, ok := scenario.GetPreset(sc.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
		config = preset
	}

	if sc.Name != "" {
		config.Name = sc.Name
	}
	if sc.Description != "" {
		config.Description = sc.Description
	}
	if sc.Systems > 0 {
		config.Systems = sc.Systems
	}
	if sc.Attacks > 0 {
		config.Attacks = sc.Attacks
		if sc.ReportIndex == nil && config.ReportIndex >= config.Attacks {
			config.ReportIndex = config.Attacks / 2
		}
	}
	if sc.Probability != nil {
		config.Probability = *sc.Probability
	}
	if sc.ReportIndex != nil {
		config.ReportIndex = *sc.ReportIndex
	}
	if sc.Seed != 0 {
		config.Seed = sc.Seed
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid scenario: %w", err)
	}
	return config, nil
}

// ToSweepConfig はスイープ設定を sweep.Config に変換する
// probabilities が明示されていればそれを優先する
func (f *FileConfig) ToSweepConfig(base scenario.Config) sweep.Config {
	s := f.Sweep
	probabilities := s.Probabilities
	if len(probabilities) == 0 && s.Steps > 0 {
		probabilities = sweep.Linspace(s.From, s.To, s.Steps)
	}
	return sweep.Config{
		Base:          base,
		Probabilities: probabilities,
		Workers:       s.Workers,
	}
}
