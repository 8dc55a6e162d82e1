package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"survival-sim/internal/events"
	"survival-sim/internal/logger"
	"survival-sim/internal/metrics"
	"survival-sim/internal/scenario"
	"survival-sim/internal/simulation"
	"survival-sim/internal/sweep"

	"golang.org/x/net/websocket"
)

// maxRequestSize はリクエストボディの上限
const maxRequestSize = 1 << 20

// Config はAPIサーバーの設定
type Config struct {
	Addr          string
	StoreCapacity int // 保持する結果の数
	MaxSystems    int // 1リクエストで生成できるシステム数の上限
	MaxAttacks    int // 1リクエストで生成できる攻撃系列長の上限
	MaxCells      int // 1集団あたりの systems*attacks の上限
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		StoreCapacity: defaultStoreCapacity,
		MaxSystems:    10000,
		MaxAttacks:    100000,
		MaxCells:      10_000_000,
	}
}

// Server はAPIサーバー
type Server struct {
	config   Config
	store    *resultStore
	eventBus *events.Bus
	metrics  *metrics.Metrics
	active   atomic.Int32

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(config Config) *Server {
	return &Server{
		config:    config,
		store:     newResultStore(config.StoreCapacity),
		eventBus:  events.NewBus(),
		metrics:   metrics.New(),
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("DELETE /api/metrics", s.handleResetMetrics)
	mux.HandleFunc("GET /api/simulations", s.handleListSimulations)
	mux.HandleFunc("POST /api/simulations", s.handleCreateSimulation)
	mux.HandleFunc("GET /api/simulations/{id}", s.handleGetSimulation)
	mux.HandleFunc("GET /api/simulations/{id}/histograms", s.handleGetHistograms)
	mux.HandleFunc("POST /api/sweeps", s.handleCreateSweep)

	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始し、ctx が終わるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// イベントをWebSocketクライアントへ中継
	go s.broadcastLoop(ctx)

	logger.Info("", "API Server starting on %s", s.config.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// EventBus はサーバーのイベントバスを返す
func (s *Server) EventBus() *events.Bus {
	return s.eventBus
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	ActiveRuns     int    `json:"active_runs"`
	StoredResults  int    `json:"stored_results"`
	WebSocketConns int    `json:"websocket_clients"`
	Subscribers    int    `json:"event_subscribers"`
	DroppedEvents  uint64 `json:"dropped_events"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	conns := len(s.wsClients)
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, StatusResponse{
		ActiveRuns:     int(s.active.Load()),
		StoredResults:  s.store.size(),
		WebSocketConns: conns,
		Subscribers:    s.eventBus.SubscriberCount(),
		DroppedEvents:  s.eventBus.Dropped(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, scenario.PresetDescriptions())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleResetMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// SimulationRequest はシミュレーション開始リクエスト
// 省略した項目はプリセット（既定は quick）の値を使う
type SimulationRequest struct {
	Preset      string   `json:"preset"`
	Name        string   `json:"name,omitempty"`
	Systems     int      `json:"systems,omitempty"`
	Attacks     int      `json:"attacks,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	ReportIndex *int     `json:"report_index,omitempty"`
	Seed        int64    `json:"seed,omitempty"`
}

// toConfig はリクエストをシナリオ設定に変換する
func (req SimulationRequest) toConfig() (scenario.Config, error) {
	config := scenario.QuickScenario()
	if req.Preset != "" {
		preset, ok := scenario.GetPreset(req.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset: %s", req.Preset)
		}
		config = preset
	}

	if req.Name != "" {
		config.Name = req.Name
	}
	if req.Systems != 0 {
		config.Systems = req.Systems
	}
	if req.Attacks != 0 {
		config.Attacks = req.Attacks
		if req.ReportIndex == nil && config.ReportIndex >= config.Attacks {
			config.ReportIndex = config.Attacks / 2
		}
	}
	if req.Probability != nil {
		config.Probability = *req.Probability
	}
	if req.ReportIndex != nil {
		config.ReportIndex = *req.ReportIndex
	}
	if req.Seed != 0 {
		config.Seed = req.Seed
	}
	return config, config.Validate()
}

func (s *Server) checkLimits(config scenario.Config) error {
	if s.config.MaxSystems > 0 && config.Systems > s.config.MaxSystems {
		return fmt.Errorf("systems %d exceeds limit %d", config.Systems, s.config.MaxSystems)
	}
	if s.config.MaxAttacks > 0 && config.Attacks > s.config.MaxAttacks {
		return fmt.Errorf("attacks %d exceeds limit %d", config.Attacks, s.config.MaxAttacks)
	}
	if cells := int64(config.Systems) * int64(config.Attacks); s.config.MaxCells > 0 && cells > int64(s.config.MaxCells) {
		return fmt.Errorf("systems*attacks %d exceeds limit %d", cells, s.config.MaxCells)
	}
	return nil
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	config, err := req.toConfig()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.checkLimits(config); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	engine := scenario.New(config)
	engine.SetEventBus(s.eventBus)
	engine.SetMetrics(s.metrics)

	result, err := engine.Run(r.Context())
	if err != nil {
		logger.Error("", "Simulation failed: %v", err)
		s.writeError(w, runErrorStatus(err), err)
		return
	}
	s.store.put(result)

	s.writeJSON(w, http.StatusCreated, result)
}

// SimulationSummary は一覧表示用の要約
type SimulationSummary struct {
	ID        string           `json:"id"`
	Scenario  scenario.Config  `json:"scenario"`
	StartTime time.Time        `json:"start_time"`
	Summary   scenario.Summary `json:"summary"`
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	results := s.store.list()
	out := make([]SimulationSummary, 0, len(results))
	for _, res := range results {
		out = append(out, SimulationSummary{
			ID:        res.ID,
			Scenario:  res.Scenario,
			StartTime: res.StartTime,
			Summary:   res.Summary,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	result, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("simulation not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// HistogramsResponse はヒストグラムのみのレスポンス
type HistogramsResponse struct {
	ID          string              `json:"id"`
	ReportIndex int                 `json:"report_index"`
	Terminal    []simulation.Bucket `json:"terminal"`
	Report      []simulation.Bucket `json:"report"`
}

func (s *Server) handleGetHistograms(w http.ResponseWriter, r *http.Request) {
	result, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("simulation not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, HistogramsResponse{
		ID:          result.ID,
		ReportIndex: result.Scenario.ReportIndex,
		Terminal:    result.TerminalHistogram,
		Report:      result.ReportHistogram,
	})
}

// SweepRequest はスイープ開始リクエスト
type SweepRequest struct {
	SimulationRequest
	Probabilities []float64 `json:"probabilities,omitempty"`
	From          float64   `json:"from,omitempty"`
	To            float64   `json:"to,omitempty"`
	Steps         int       `json:"steps,omitempty"`
	Workers       int       `json:"workers,omitempty"`
}

// maxSweepPoints はスイープ1回あたりの確率数の上限
const maxSweepPoints = 101

func (s *Server) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	base, err := req.toConfig()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.checkLimits(base); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	probabilities := req.Probabilities
	if len(probabilities) == 0 {
		if req.Steps > maxSweepPoints {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("sweep needs 1 to %d probabilities", maxSweepPoints))
			return
		}
		probabilities = sweep.Linspace(req.From, req.To, req.Steps)
	}
	if len(probabilities) == 0 || len(probabilities) > maxSweepPoints {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("sweep needs 1 to %d probabilities", maxSweepPoints))
		return
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	runner := sweep.New()
	runner.SetEventBus(s.eventBus)
	runner.SetMetrics(s.metrics)

	result, err := runner.Run(r.Context(), sweep.Config{
		Base:          base,
		Probabilities: probabilities,
		Workers:       req.Workers,
	})
	if err != nil {
		logger.Error("", "Sweep failed: %v", err)
		s.writeError(w, runErrorStatus(err), err)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はイベントバスの内容をWebSocketへ流す
// system_completed は件数が多いので送らない
func (s *Server) broadcastLoop(ctx context.Context) {
	ch := s.eventBus.Subscribe()
	defer s.eventBus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type == events.EventSystemCompleted {
				continue
			}
			s.broadcast(ev)
		}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ErrorResponse はエラーレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

// runErrorStatus は実行エラーをHTTPステータスに対応付ける
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, scenario.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, simulation.ErrInvalidLength),
		errors.Is(err, simulation.ErrInvalidPopulation),
		errors.Is(err, simulation.ErrIndexOutOfRange),
		errors.Is(err, sweep.ErrNoProbabilities):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("", "Failed to encode JSON: %v", err)
	}
}
