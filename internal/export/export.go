// Package export writes simulation results in formats a plotting tool can
// consume directly: indented JSON for whole results and CSV tables for
// per-system series, histograms and sweeps.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"survival-sim/internal/simulation"
	"survival-sim/internal/sweep"
)

// Format は出力形式
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat は文字列から出力形式を取得する
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (text, json, csv)", s)
	}
}

// WriteJSON は v をインデント付きJSONで書き出す
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

var seriesHeader = []string{
	"system", "index", "outcome", "cumulative_score",
	"cumulative_success_count", "relative_frequency", "normalized_ratio",
}

// WriteSeriesCSV は全システムの派生系列を1行1インデックスで書き出す
func WriteSeriesCSV(w io.Writer, pop *simulation.Population) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}

	for s, r := range pop.Systems {
		for i, index := range r.Axis() {
			record := []string{
				strconv.Itoa(s),
				strconv.Itoa(index),
				strconv.Itoa(r.Outcomes[i]),
				strconv.Itoa(r.CumulativeScore[i]),
				strconv.Itoa(r.CumulativeSuccessCount[i]),
				formatFloat(r.RelativeFrequency[i]),
				formatFloat(r.NormalizedRatio[i]),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHistogramCSV はヒストグラムを value,count の表で書き出す
func WriteHistogramCSV(w io.Writer, buckets []simulation.Bucket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"value", "count"}); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := cw.Write([]string{strconv.Itoa(b.Value), strconv.Itoa(b.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweepCSV はスイープ結果を1行1確率で書き出す
func WriteSweepCSV(w io.Writer, res *sweep.Result) error {
	cw := csv.NewWriter(w)
	header := []string{
		"probability", "seed", "mean_terminal", "min_terminal", "max_terminal",
		"mean_relative_frequency", "survivors", "survival_rate",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range res.Points {
		record := []string{
			formatFloat(p.Probability),
			strconv.FormatInt(p.Seed, 10),
			formatFloat(p.Summary.MeanTerminal),
			strconv.Itoa(p.Summary.MinTerminal),
			strconv.Itoa(p.Summary.MaxTerminal),
			formatFloat(p.Summary.MeanRelativeFrequency),
			strconv.Itoa(p.Summary.Survivors),
			formatFloat(p.Summary.SurvivalRate),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
