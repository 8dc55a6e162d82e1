package rng

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidRange は下限が上限より大きい場合に返される
var ErrInvalidRange = errors.New("invalid range")

// Source は [0,1) の一様乱数を返す乱数源
type Source interface {
	Float64() float64
}

// New はシード付きの乱数源を作成する
// seed が 0 の場合は 1 を使用する
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Uniform は [min, max) の一様乱数を返す
func Uniform(src Source, min, max float64) (float64, error) {
	if min > max {
		return 0, fmt.Errorf("%w: min %v > max %v", ErrInvalidRange, min, max)
	}
	return min + (max-min)*src.Float64(), nil
}

// Sequence はあらかじめ決めた値を順番に返す乱数源
// 値を使い切ると先頭に戻る
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence は固定値列の乱数源を作成する
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 は次の値を返す
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Draws はこれまでに返した値の数を返す
func (s *Sequence) Draws() int {
	return s.pos
}
