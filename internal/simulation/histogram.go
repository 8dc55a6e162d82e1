package simulation

// Bucket は値と出現回数の組
type Bucket struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// BuildHistogram は max から min までの全整数について出現回数を数える
// 出現しない値も0件のバケットとして含める。空入力は nil を返す
func BuildHistogram(values []int) []Bucket {
	if len(values) == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	counts := make([]int, hi-lo+1)
	for _, v := range values {
		counts[v-lo]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for v := hi; v >= lo; v-- {
		buckets = append(buckets, Bucket{Value: v, Count: counts[v-lo]})
	}
	return buckets
}

// Total はバケットの件数合計を返す
func Total(buckets []Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}

// Mode は最頻値のバケットを返す（同数なら大きい値を優先）
func Mode(buckets []Bucket) (Bucket, bool) {
	if len(buckets) == 0 {
		return Bucket{}, false
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.Count > best.Count {
			best = b
		}
	}
	return best, true
}
