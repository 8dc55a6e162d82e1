package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"survival-sim/internal/events"
	"survival-sim/internal/logger"
	"survival-sim/internal/metrics"
	"survival-sim/internal/rng"
	"survival-sim/internal/simulation"

	"github.com/google/uuid"
)

// ErrAlreadyRunning は同じエンジンで二重に Run した場合に返される
var ErrAlreadyRunning = errors.New("scenario is already running")

// Config はシナリオの設定
type Config struct {
	Name        string  `json:"name"`         // シナリオ名
	Description string  `json:"description"`  // 説明
	Systems     int     `json:"systems"`      // システム数
	Attacks     int     `json:"attacks"`      // 攻撃系列の長さ
	Probability float64 `json:"probability"`  // 攻撃成功の閾値
	ReportIndex int     `json:"report_index"` // ヒストグラムを取るインデックス
	Seed        int64   `json:"seed"`         // 乱数シード
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		Description: "Default scenario",
		Systems:     20,
		Attacks:     100,
		Probability: 0.5,
		ReportIndex: 50,
		Seed:        1,
	}
}

// Validate は設定を検証する
// probability は範囲外でも受け付ける
func (c Config) Validate() error {
	if c.Systems < 1 {
		return fmt.Errorf("%w: got %d", simulation.ErrInvalidPopulation, c.Systems)
	}
	if c.Attacks < 1 {
		return fmt.Errorf("%w: got %d", simulation.ErrInvalidLength, c.Attacks)
	}
	if c.ReportIndex < 0 || c.ReportIndex >= c.Attacks {
		return fmt.Errorf("%w: report index %d not in [0,%d)", simulation.ErrIndexOutOfRange, c.ReportIndex, c.Attacks)
	}
	return nil
}

// Summary は集団の要約統計
type Summary struct {
	MeanTerminal          float64 `json:"mean_terminal"`
	MinTerminal           int     `json:"min_terminal"`
	MaxTerminal           int     `json:"max_terminal"`
	MeanRelativeFrequency float64 `json:"mean_relative_frequency"`
	Survivors             int     `json:"survivors"`
	SurvivalRate          float64 `json:"survival_rate"`
}

// Result はシナリオ実行結果
type Result struct {
	ID        string        `json:"id"`
	Scenario  Config        `json:"scenario"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_ns"`

	Population        *simulation.Population `json:"population"`
	TerminalHistogram []simulation.Bucket    `json:"terminal_histogram"`
	ReportHistogram   []simulation.Bucket    `json:"report_histogram"`
	Summary           Summary                `json:"summary"`
}

// Engine はシナリオ実行エンジン
type Engine struct {
	config   Config
	src      rng.Source
	eventBus *events.Bus
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	running bool
}

// New は設定のシードから乱数源を作る Engine を作成する
func New(config Config) *Engine {
	return NewWithSource(config, rng.New(config.Seed))
}

// NewWithSource は乱数源を指定して Engine を作成する
func NewWithSource(config Config, src rng.Source) *Engine {
	return &Engine{
		config: config,
		src:    src,
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// SetMetrics は共有メトリクスを設定する
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Config は設定を返す
func (e *Engine) Config() Config {
	return e.config
}

// publishEvent はイベントを発行する
func (e *Engine) publishEvent(event events.Event) {
	if e.eventBus != nil {
		e.eventBus.Publish(event)
	}
}

// Run はシナリオを実行する
// ctx はシステムの生成ごとに確認する
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	result, err := e.run(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordFailure()
		}
		id := ""
		if result != nil {
			id = result.ID
		}
		e.publishEvent(events.NewRunFailedEvent(id, err))
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordRun()
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context) (*Result, error) {
	cfg := e.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", cfg.Name, err)
	}

	result := &Result{
		ID:        uuid.NewString(),
		Scenario:  cfg,
		StartTime: time.Now(),
	}

	if cfg.Probability < 0 || cfg.Probability > 1 {
		logger.Warn(result.ID, "probability %v is outside [0,1]", cfg.Probability)
	}
	logger.Info(result.ID, "=== Scenario '%s' started (systems: %d, attacks: %d, p: %v) ===",
		cfg.Name, cfg.Systems, cfg.Attacks, cfg.Probability)
	e.publishEvent(events.NewRunStartedEvent(result.ID, cfg.Name, cfg.Systems, cfg.Attacks, cfg.Probability))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("scenario %q interrupted before start: %w", cfg.Name, err)
	}

	last := time.Now()
	pop, err := simulation.RunPopulationFunc(e.src, cfg.Systems, cfg.Attacks, cfg.Probability,
		func(i int, r *simulation.Run) error {
			if e.metrics != nil {
				e.metrics.RecordSystem(r.Draws(), r.Successes(), time.Since(last))
			}
			if logger.Default.Enabled(logger.LevelDebug) {
				logger.Debug(systemScope(i), "terminal score %d", r.Terminal())
			}
			e.publishEvent(events.NewSystemCompletedEvent(result.ID, i, r.Terminal()))

			if err := ctx.Err(); err != nil && i+1 < cfg.Systems {
				return fmt.Errorf("scenario %q interrupted after %d systems: %w", cfg.Name, i+1, err)
			}
			last = time.Now()
			return nil
		})
	if err != nil {
		return result, err
	}

	reportScores, err := pop.ScoresAt(cfg.ReportIndex)
	if err != nil {
		return result, err
	}

	result.Population = pop
	result.TerminalHistogram = simulation.BuildHistogram(pop.TerminalScores())
	result.ReportHistogram = simulation.BuildHistogram(reportScores)
	result.Summary = summarize(pop)
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	logger.Info(result.ID, "=== Scenario '%s' completed (survivors: %d/%d) ===",
		cfg.Name, result.Summary.Survivors, pop.Size())
	e.publishEvent(events.NewRunCompletedEvent(result.ID, cfg.Name, pop.Size(), result.Summary.Survivors))

	return result, nil
}

// summarize は集団の要約統計を計算する
func summarize(pop *simulation.Population) Summary {
	var s Summary
	if pop.Size() == 0 {
		return s
	}

	total, rf := 0, 0.0
	s.MinTerminal = pop.Systems[0].Terminal()
	s.MaxTerminal = s.MinTerminal
	for _, r := range pop.Systems {
		t := r.Terminal()
		total += t
		s.MinTerminal = min(s.MinTerminal, t)
		s.MaxTerminal = max(s.MaxTerminal, t)
		rf += r.RelativeFrequency[r.Length-1]
		if t >= 0 {
			s.Survivors++
		}
	}

	n := float64(pop.Size())
	s.MeanTerminal = float64(total) / n
	s.MeanRelativeFrequency = rf / n
	s.SurvivalRate = float64(s.Survivors) / n
	return s
}

func systemScope(i int) string {
	return fmt.Sprintf("system-%d", i)
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}
