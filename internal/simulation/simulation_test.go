package simulation

import (
	"errors"
	"math"
	"testing"

	"survival-sim/internal/rng"
)

func TestGenerateOutcome(t *testing.T) {
	tests := []struct {
		name        string
		draw        float64
		probability float64
		expected    int
	}{
		{"above threshold survives", 0.7, 0.5, Survived},
		{"below threshold breached", 0.3, 0.5, Breached},
		{"equal to threshold breached", 0.5, 0.5, Breached},
		{"zero draw with zero probability breached", 0, 0, Breached},
		{"probability one always breached", 0.999, 1, Breached},
		{"negative probability survives", 0, -0.5, Survived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateOutcome(rng.NewSequence(tt.draw), tt.probability)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRunSimulationLength(t *testing.T) {
	src := rng.New(42)
	for _, length := range []int{1, 2, 10, 257} {
		r, err := RunSimulation(src, length, 0.5)
		if err != nil {
			t.Fatalf("length %d: unexpected error: %v", length, err)
		}
		if len(r.Outcomes) != length {
			t.Errorf("expected %d outcomes, got %d", length, len(r.Outcomes))
		}
		if r.Outcomes[0] != Baseline || r.CumulativeScore[0] != 0 || r.CumulativeSuccessCount[0] != 0 {
			t.Errorf("length %d: expected neutral baseline at index 0", length)
		}
		if r.Draws() != length-1 {
			t.Errorf("expected %d draws, got %d", length-1, r.Draws())
		}
	}
}

func TestRunSimulationConsumesLengthMinusOneDraws(t *testing.T) {
	src := rng.NewSequence(0.9, 0.1)
	if _, err := RunSimulation(src, 6, 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Draws() != 5 {
		t.Errorf("expected 5 draws, got %d", src.Draws())
	}
}

func TestRunSimulationInvalidLength(t *testing.T) {
	for _, length := range []int{0, -3} {
		_, err := RunSimulation(rng.New(1), length, 0.5)
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("length %d: expected ErrInvalidLength, got %v", length, err)
		}
	}
}

func TestRunSimulationSeries(t *testing.T) {
	r, err := RunSimulation(rng.New(2024), 500, 0.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	score, count := 0, 0
	for i := range r.Length {
		if i > 0 && r.Outcomes[i] != Survived && r.Outcomes[i] != Breached {
			t.Fatalf("index %d: unexpected outcome %d", i, r.Outcomes[i])
		}
		score += r.Outcomes[i]
		if r.Outcomes[i] == Survived {
			count++
		}
		if r.CumulativeScore[i] != score {
			t.Fatalf("index %d: expected score %d, got %d", i, score, r.CumulativeScore[i])
		}
		if r.CumulativeSuccessCount[i] != count {
			t.Fatalf("index %d: expected count %d, got %d", i, count, r.CumulativeSuccessCount[i])
		}
		if i > 0 && r.CumulativeSuccessCount[i] < r.CumulativeSuccessCount[i-1] {
			t.Fatalf("index %d: success count decreased", i)
		}
		if want := float64(count) / float64(i+1); r.RelativeFrequency[i] != want {
			t.Fatalf("index %d: expected relative frequency %v, got %v", i, want, r.RelativeFrequency[i])
		}
		if want := float64(count) / math.Sqrt(float64(i+1)); r.NormalizedRatio[i] != want {
			t.Fatalf("index %d: expected normalized ratio %v, got %v", i, want, r.NormalizedRatio[i])
		}
	}
}

func TestRunSimulationProbabilityOne(t *testing.T) {
	r, err := RunSimulation(rng.New(5), 50, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range r.Length {
		if r.CumulativeSuccessCount[i] != 0 {
			t.Fatalf("index %d: expected zero successes, got %d", i, r.CumulativeSuccessCount[i])
		}
		if r.RelativeFrequency[i] != 0 {
			t.Fatalf("index %d: expected zero relative frequency, got %v", i, r.RelativeFrequency[i])
		}
		if r.CumulativeScore[i] != -i {
			t.Fatalf("index %d: expected score %d, got %d", i, -i, r.CumulativeScore[i])
		}
	}
}

func TestRunSimulationProbabilityZero(t *testing.T) {
	// 0.0 は含めない。乱数がちょうど0の場合は別テスト
	src := rng.NewSequence(0.01, 0.5, 0.99, 0.3)
	r, err := RunSimulation(src, 40, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < r.Length; i++ {
		if r.Outcomes[i] != Survived {
			t.Fatalf("index %d: expected survival", i)
		}
		if r.CumulativeSuccessCount[i] != i {
			t.Fatalf("index %d: expected %d successes, got %d", i, i, r.CumulativeSuccessCount[i])
		}
		if want := float64(i) / float64(i+1); r.RelativeFrequency[i] != want {
			t.Fatalf("index %d: expected %v, got %v", i, want, r.RelativeFrequency[i])
		}
	}
}

func TestRunSimulationZeroDrawIsBreach(t *testing.T) {
	src := rng.NewSequence(0.5, 0, 0.5)
	r, err := RunSimulation(src, 4, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{Baseline, Survived, Breached, Survived}
	for i := range want {
		if r.Outcomes[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], r.Outcomes[i])
		}
	}
	if r.Terminal() != 1 {
		t.Errorf("expected terminal score 1, got %d", r.Terminal())
	}
	if r.Successes() != 2 {
		t.Errorf("expected 2 successes, got %d", r.Successes())
	}
}

func TestRunSimulationSingleLength(t *testing.T) {
	src := rng.NewSequence(0.9)
	r, err := RunSimulation(src, 1, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Draws() != 0 {
		t.Errorf("expected no draws, got %d", src.Draws())
	}
	if r.Terminal() != 0 {
		t.Errorf("expected terminal 0, got %d", r.Terminal())
	}
}

func TestRunAxis(t *testing.T) {
	r, err := RunSimulation(rng.New(1), 5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	axis := r.Axis()
	if len(axis) != 5 {
		t.Fatalf("expected 5 axis points, got %d", len(axis))
	}
	for i, v := range axis {
		if v != i {
			t.Errorf("axis[%d] = %d", i, v)
		}
	}
}
