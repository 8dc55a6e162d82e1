package simulation

import (
	"errors"
	"fmt"
	"math"

	"survival-sim/internal/rng"
)

const (
	// Survived はシステムが攻撃に耐えた結果
	Survived = 1
	// Breached は攻撃者が勝った結果
	Breached = -1
	// Baseline は先頭インデックスの中立値
	Baseline = 0
)

var (
	// ErrInvalidLength は攻撃回数が1未満の場合に返される
	ErrInvalidLength = errors.New("length must be at least 1")
	// ErrInvalidPopulation はシステム数が1未満の場合に返される
	ErrInvalidPopulation = errors.New("number of systems must be at least 1")
	// ErrIndexOutOfRange はレポートインデックスが範囲外の場合に返される
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Run は1システム分の試行結果
type Run struct {
	Length                 int       `json:"length"`
	Outcomes               []int     `json:"outcomes"`
	CumulativeScore        []int     `json:"cumulative_score"`
	CumulativeSuccessCount []int     `json:"cumulative_success_count"`
	RelativeFrequency      []float64 `json:"relative_frequency"`
	NormalizedRatio        []float64 `json:"normalized_ratio"`
}

// GenerateOutcome は1回の攻撃結果を生成する
// 乱数が probability を超えれば Survived、それ以外は Breached
func GenerateOutcome(src rng.Source, probability float64) (int, error) {
	v, err := rng.Uniform(src, 0, 1)
	if err != nil {
		return 0, err
	}
	if v > probability {
		return Survived, nil
	}
	return Breached, nil
}

// RunSimulation は length 個の結果と派生系列を生成する
// インデックス0は中立値で、乱数の消費は length-1 回
func RunSimulation(src rng.Source, length int, probability float64) (*Run, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, length)
	}

	r := &Run{
		Length:                 length,
		Outcomes:               make([]int, length),
		CumulativeScore:        make([]int, length),
		CumulativeSuccessCount: make([]int, length),
		RelativeFrequency:      make([]float64, length),
		NormalizedRatio:        make([]float64, length),
	}

	score, successes := 0, 0
	for i := range length {
		outcome := Baseline
		if i > 0 {
			var err error
			if outcome, err = GenerateOutcome(src, probability); err != nil {
				return nil, err
			}
		}
		score += outcome
		if outcome == Survived {
			successes++
		}

		n := float64(i + 1)
		r.Outcomes[i] = outcome
		r.CumulativeScore[i] = score
		r.CumulativeSuccessCount[i] = successes
		r.RelativeFrequency[i] = float64(successes) / n
		r.NormalizedRatio[i] = float64(successes) / math.Sqrt(n)
	}

	return r, nil
}

// Terminal は最終インデックスの累積スコアを返す
func (r *Run) Terminal() int {
	return r.CumulativeScore[r.Length-1]
}

// Successes は成功した攻撃の数を返す
func (r *Run) Successes() int {
	return r.CumulativeSuccessCount[r.Length-1]
}

// Draws は実際に乱数を消費した回数を返す
func (r *Run) Draws() int {
	return r.Length - 1
}

// Axis は描画用のインデックス軸 (0..Length-1) を返す
func (r *Run) Axis() []int {
	axis := make([]int, r.Length)
	for i := range axis {
		axis[i] = i
	}
	return axis
}
