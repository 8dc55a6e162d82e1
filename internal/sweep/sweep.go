// Package sweep runs one scenario across a range of attack probabilities.
//
// Every probability gets its own population and its own random source seeded
// from the base seed and the point's position, so the points can be generated
// concurrently on a worker pool and still come out identical to a sequential
// run.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"survival-sim/internal/events"
	"survival-sim/internal/logger"
	"survival-sim/internal/metrics"
	"survival-sim/internal/scenario"
	"survival-sim/internal/simulation"
	"survival-sim/internal/worker"

	"github.com/google/uuid"
)

// seedStride は点ごとのシードの間隔
const seedStride = 7919

// ErrNoProbabilities は確率が1つも指定されていない場合に返される
var ErrNoProbabilities = errors.New("sweep needs at least one probability")

// Config はスイープの設定
type Config struct {
	Base          scenario.Config `json:"base"`
	Probabilities []float64       `json:"probabilities"`
	Workers       int             `json:"workers"`
}

// Point はスイープの1点分の結果
type Point struct {
	Probability       float64             `json:"probability"`
	Seed              int64               `json:"seed"`
	RunID             string              `json:"run_id"`
	Summary           scenario.Summary    `json:"summary"`
	TerminalHistogram []simulation.Bucket `json:"terminal_histogram"`
}

// Result はスイープ全体の結果
type Result struct {
	ID     string  `json:"id"`
	Config Config  `json:"config"`
	Points []Point `json:"points"`
}

// Runner はスイープを実行する
type Runner struct {
	eventBus *events.Bus
	metrics  *metrics.Metrics
}

// New は新しい Runner を作成する
func New() *Runner {
	return &Runner{}
}

// SetEventBus はイベントバスを設定する
func (r *Runner) SetEventBus(bus *events.Bus) {
	r.eventBus = bus
}

// SetMetrics は共有メトリクスを設定する
func (r *Runner) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// PointSeed は i 番目の点に使うシードを返す
func PointSeed(base int64, i int) int64 {
	return base + int64(i)*seedStride
}

// Run はスイープを実行する
// 結果の順序は cfg.Probabilities と同じ
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if len(cfg.Probabilities) == 0 {
		return nil, ErrNoProbabilities
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, fmt.Errorf("invalid base scenario: %w", err)
	}

	result := &Result{
		ID:     uuid.NewString(),
		Config: cfg,
		Points: make([]Point, len(cfg.Probabilities)),
	}
	logger.Info(result.ID, "Sweep started: %d probabilities, %d systems each",
		len(cfg.Probabilities), cfg.Base.Systems)

	pool := worker.NewPool(min(cfg.Workers, len(cfg.Probabilities)))
	pool.Start(ctx)

	var (
		mu       sync.Mutex
		firstErr error
	)
	for i, p := range cfg.Probabilities {
		pc := cfg.Base
		pc.Name = fmt.Sprintf("%s@%g", cfg.Base.Name, p)
		pc.Probability = p
		pc.Seed = PointSeed(cfg.Base.Seed, i)

		ok := pool.Submit(func(ctx context.Context) {
			engine := scenario.New(pc)
			engine.SetMetrics(r.metrics)
			res, err := engine.Run(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("probability %g: %w", p, err)
				}
				return
			}
			result.Points[i] = Point{
				Probability:       p,
				Seed:              pc.Seed,
				RunID:             res.ID,
				Summary:           res.Summary,
				TerminalHistogram: res.TerminalHistogram,
			}
			if r.eventBus != nil {
				r.eventBus.Publish(events.NewSweepPointEvent(result.ID, p, res.Summary.Survivors))
			}
		})
		if !ok {
			logger.Warn(result.ID, "Sweep stopped submitting at point %d (queued: %d)", i, pool.QueueSize())
			break
		}
	}
	pool.Close()
	logger.Debug(result.ID, "Sweep pool finished %d/%d points", pool.Completed(), len(cfg.Probabilities))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep interrupted: %w", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	logger.Info(result.ID, "Sweep completed")
	return result, nil
}

// Linspace は from から to までを steps 個に等分した値を返す
func Linspace(from, to float64, steps int) []float64 {
	switch {
	case steps <= 0:
		return nil
	case steps == 1:
		return []float64{from}
	}

	values := make([]float64, steps)
	step := (to - from) / float64(steps-1)
	for i := range values {
		values[i] = from + step*float64(i)
	}
	values[steps-1] = to
	return values
}
