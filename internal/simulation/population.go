package simulation

import (
	"fmt"

	"survival-sim/internal/rng"
)

// Population は同じ条件で生成した独立な試行の集合
type Population struct {
	Length      int     `json:"length"`
	Probability float64 `json:"probability"`
	Systems     []*Run  `json:"systems"`
}

// SystemFunc は各システムの生成直後に呼ばれる
// エラーを返すとそこで生成を打ち切り、そのエラーをそのまま返す
type SystemFunc func(index int, r *Run) error

// RunPopulation は numberOfSystems 個の試行を順番に生成する
// システム0を生成し終えてからシステム1に進む
func RunPopulation(src rng.Source, numberOfSystems, length int, probability float64) (*Population, error) {
	return RunPopulationFunc(src, numberOfSystems, length, probability, nil)
}

// RunPopulationFunc は RunPopulation と同じ順序で生成し、システムごとに fn を呼ぶ
func RunPopulationFunc(src rng.Source, numberOfSystems, length int, probability float64, fn SystemFunc) (*Population, error) {
	if numberOfSystems < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPopulation, numberOfSystems)
	}

	p := &Population{
		Length:      length,
		Probability: probability,
		Systems:     make([]*Run, 0, numberOfSystems),
	}
	for i := range numberOfSystems {
		r, err := RunSimulation(src, length, probability)
		if err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}
		p.Systems = append(p.Systems, r)
		if fn != nil {
			if err := fn(i, r); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Size はシステム数を返す
func (p *Population) Size() int {
	return len(p.Systems)
}

// TerminalScores は各システムの最終累積スコアを返す
func (p *Population) TerminalScores() []int {
	scores := make([]int, len(p.Systems))
	for i, r := range p.Systems {
		scores[i] = r.Terminal()
	}
	return scores
}

// ScoresAt は各システムの index 時点の累積スコアを返す
func (p *Population) ScoresAt(index int) ([]int, error) {
	if index < 0 || index >= p.Length {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, p.Length)
	}
	scores := make([]int, len(p.Systems))
	for i, r := range p.Systems {
		scores[i] = r.CumulativeScore[index]
	}
	return scores, nil
}
