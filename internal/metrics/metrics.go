package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const defaultMaxSamples = 1000

// Metrics はシミュレーションの実行統計を収集する
type Metrics struct {
	runs      atomic.Uint64
	failures  atomic.Uint64
	systems   atomic.Uint64
	draws     atomic.Uint64
	successes atomic.Uint64
	totalNs   atomic.Uint64

	mu         sync.RWMutex
	startTime  time.Time
	latencies  []time.Duration
	maxSamples int
}

// Config はメトリクスの設定
type Config struct {
	MaxLatencySamples int // P99算出用に保持するサンプル数
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(Config{MaxLatencySamples: defaultMaxSamples})
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	maxSamples := config.MaxLatencySamples
	if maxSamples <= 0 {
		maxSamples = defaultMaxSamples
	}
	return &Metrics{
		startTime:  time.Now(),
		latencies:  make([]time.Duration, 0, maxSamples),
		maxSamples: maxSamples,
	}
}

// RecordSystem は1システム分の生成結果を記録する
func (m *Metrics) RecordSystem(draws, successes int, elapsed time.Duration) {
	m.systems.Add(1)
	m.draws.Add(uint64(draws))
	m.successes.Add(uint64(successes))
	m.totalNs.Add(uint64(elapsed.Nanoseconds()))

	m.mu.Lock()
	if len(m.latencies) < m.maxSamples {
		m.latencies = append(m.latencies, elapsed)
	}
	m.mu.Unlock()
}

// RecordRun は完了したランを記録する
func (m *Metrics) RecordRun() {
	m.runs.Add(1)
}

// RecordFailure は失敗またはキャンセルされたランを記録する
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// Runs は完了したラン数を返す
func (m *Metrics) Runs() uint64 {
	return m.runs.Load()
}

// Failures は失敗したラン数を返す
func (m *Metrics) Failures() uint64 {
	return m.failures.Load()
}

// Systems は生成したシステム数を返す
func (m *Metrics) Systems() uint64 {
	return m.systems.Load()
}

// Draws は消費した乱数の数を返す
func (m *Metrics) Draws() uint64 {
	return m.draws.Load()
}

// Successes は生存した攻撃の数を返す
func (m *Metrics) Successes() uint64 {
	return m.successes.Load()
}

// SuccessRate は生存率を返す（0.0〜1.0）
func (m *Metrics) SuccessRate() float64 {
	draws := m.draws.Load()
	if draws == 0 {
		return 0
	}
	return float64(m.successes.Load()) / float64(draws)
}

// DrawsPerSecond は開始からの平均ドロー数/秒を返す
func (m *Metrics) DrawsPerSecond() float64 {
	m.mu.RLock()
	elapsed := time.Since(m.startTime).Seconds()
	m.mu.RUnlock()
	if elapsed == 0 {
		return 0
	}
	return float64(m.draws.Load()) / elapsed
}

// AverageLatency はシステムあたりの平均生成時間を返す
func (m *Metrics) AverageLatency() time.Duration {
	systems := m.systems.Load()
	if systems == 0 {
		return 0
	}
	return time.Duration(m.totalNs.Load() / systems)
}

// P99Latency はP99生成時間を返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Reset はすべての統計をリセットする
func (m *Metrics) Reset() {
	m.runs.Store(0)
	m.failures.Store(0)
	m.systems.Store(0)
	m.draws.Store(0)
	m.successes.Store(0)
	m.totalNs.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTime = time.Now()
	m.latencies = m.latencies[:0]
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	Runs           uint64        `json:"runs"`
	Failures       uint64        `json:"failures"`
	Systems        uint64        `json:"systems"`
	Draws          uint64        `json:"draws"`
	Successes      uint64        `json:"successes"`
	SuccessRate    float64       `json:"success_rate"`
	DrawsPerSecond float64       `json:"draws_per_second"`
	AverageLatency time.Duration `json:"average_latency_ns"`
	P99Latency     time.Duration `json:"p99_latency_ns"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	elapsed := time.Since(m.startTime)
	m.mu.RUnlock()

	return Snapshot{
		Runs:           m.Runs(),
		Failures:       m.Failures(),
		Systems:        m.Systems(),
		Draws:          m.Draws(),
		Successes:      m.Successes(),
		SuccessRate:    m.SuccessRate(),
		DrawsPerSecond: m.DrawsPerSecond(),
		AverageLatency: m.AverageLatency(),
		P99Latency:     m.P99Latency(),
		Elapsed:        elapsed,
	}
}
