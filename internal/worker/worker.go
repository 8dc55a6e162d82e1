package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"survival-sim/internal/logger"
)

// Job はワーカーが実行するジョブを表す
// ctx はプールのコンテキストで、Stop で取り消される
type Job func(ctx context.Context)

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers  int // ワーカー数（0でCPU数）
	QueueFactor int // キューサイズ = NumWorkers * QueueFactor
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:  0,
		QueueFactor: 4,
	}
}

// Pool はゴルーチンのプールを管理する
type Pool struct {
	numWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	closed     atomic.Bool
	completed  atomic.Uint64

	mu      sync.Mutex
	started bool

	// sendMu はジョブ送信とチャネルのクローズを排他する
	sendMu sync.RWMutex
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 以下の場合は CPU 数を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	queueFactor := config.QueueFactor
	if queueFactor <= 0 {
		queueFactor = 4
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*queueFactor),
	}
}

// Start はワーカープールを起動する
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker()
	}

	logger.Debug("", "WorkerPool started with %d workers", p.numWorkers)
}

// worker は個々のワーカーゴルーチン
// ジョブチャネルが閉じられるまで処理を続ける
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job(p.ctx)
			p.completed.Add(1)
		}
	}
}

// Submit はジョブを送信する。キューが満杯ならブロックする
// 未起動・Close 後・取り消し後は false を返す
func (p *Pool) Submit(job Job) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	if !p.accepting() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

func (p *Pool) accepting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.closed.Load() {
		return false
	}
	return p.ctx.Err() == nil
}

// Close は新規受付を止め、キュー内のジョブがすべて終わるまで待つ
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.started || p.closed.Swap(true) {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sendMu.Lock()
	close(p.jobs)
	p.sendMu.Unlock()

	p.wg.Wait()
	p.cancel()

	logger.Debug("", "WorkerPool drained (%d jobs)", p.completed.Load())
}

// Stop は実行中のジョブを取り消してワーカープールを停止する
// キューに残ったジョブは実行されない
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	logger.Debug("", "WorkerPool stopped")
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// QueueSize は現在のキューサイズを返す
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// Completed は完了したジョブ数を返す
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}
