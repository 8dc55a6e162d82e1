package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"survival-sim/internal/events"
	"survival-sim/internal/metrics"
	"survival-sim/internal/scenario"
	"survival-sim/internal/simulation"
)

func testConfig(workers int) Config {
	base := scenario.QuickScenario()
	base.Seed = 11
	return Config{
		Base:          base,
		Probabilities: []float64{0, 0.25, 0.5, 0.75, 1},
		Workers:       workers,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(2)
	result, err := New().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Points) != len(cfg.Probabilities) {
		t.Fatalf("expected %d points, got %d", len(cfg.Probabilities), len(result.Points))
	}
	for i, pt := range result.Points {
		if pt.Probability != cfg.Probabilities[i] {
			t.Errorf("point %d: expected probability %v, got %v", i, cfg.Probabilities[i], pt.Probability)
		}
		if pt.Seed != PointSeed(cfg.Base.Seed, i) {
			t.Errorf("point %d: unexpected seed %d", i, pt.Seed)
		}
		if simulation.Total(pt.TerminalHistogram) != cfg.Base.Systems {
			t.Errorf("point %d: expected histogram total %d", i, cfg.Base.Systems)
		}
	}

	// p=1 では全攻撃が成功する
	last := result.Points[len(result.Points)-1]
	if last.Summary.MeanRelativeFrequency != 0 {
		t.Errorf("expected zero relative frequency at p=1, got %v", last.Summary.MeanRelativeFrequency)
	}
	if want := float64(-(cfg.Base.Attacks - 1)); last.Summary.MeanTerminal != want {
		t.Errorf("expected mean terminal %v at p=1, got %v", want, last.Summary.MeanTerminal)
	}
}

func TestRunIndependentOfWorkerCount(t *testing.T) {
	a, err := New().Run(context.Background(), testConfig(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := New().Run(context.Background(), testConfig(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a.Points {
		if a.Points[i].Summary != b.Points[i].Summary {
			t.Errorf("point %d: summaries differ: %+v vs %+v", i, a.Points[i].Summary, b.Points[i].Summary)
		}
	}
}

func TestRunNoProbabilities(t *testing.T) {
	cfg := testConfig(1)
	cfg.Probabilities = nil

	_, err := New().Run(context.Background(), cfg)
	if !errors.Is(err, ErrNoProbabilities) {
		t.Errorf("expected ErrNoProbabilities, got %v", err)
	}
}

func TestRunInvalidBase(t *testing.T) {
	cfg := testConfig(1)
	cfg.Base.Attacks = 0

	_, err := New().Run(context.Background(), cfg)
	if !errors.Is(err, simulation.ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, testConfig(2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunEventsAndMetrics(t *testing.T) {
	cfg := testConfig(3)
	bus := events.NewBus()
	ch := bus.Subscribe()
	m := metrics.New()

	r := New()
	r.SetEventBus(bus)
	r.SetMetrics(m)

	result, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Runs() != uint64(len(cfg.Probabilities)) {
		t.Errorf("expected %d runs, got %d", len(cfg.Probabilities), m.Runs())
	}

	seen := 0
	timeout := time.After(time.Second)
	for seen < len(cfg.Probabilities) {
		select {
		case ev := <-ch:
			if ev.Type != events.EventSweepPoint {
				t.Errorf("unexpected event type %s", ev.Type)
			}
			if ev.RunID != result.ID {
				t.Errorf("expected sweep ID %s, got %s", result.ID, ev.RunID)
			}
			seen++
		case <-timeout:
			t.Fatalf("timeout, received %d events", seen)
		}
	}
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		from, to float64
		steps    int
		expected []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{0.2, 0.2, 3, []float64{0.2, 0.2, 0.2}},
		{0.3, 0.9, 1, []float64{0.3}},
		{0, 1, 0, nil},
	}

	for _, tt := range tests {
		got := Linspace(tt.from, tt.to, tt.steps)
		if len(got) != len(tt.expected) {
			t.Errorf("Linspace(%v, %v, %d): expected %v, got %v", tt.from, tt.to, tt.steps, tt.expected, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("Linspace(%v, %v, %d)[%d] = %v, want %v", tt.from, tt.to, tt.steps, i, got[i], tt.expected[i])
			}
		}
	}
}
