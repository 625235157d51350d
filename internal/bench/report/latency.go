package report

import (
	"math"
	"sort"
)

// LatencyStats summarizes wall-clock times in milliseconds.
type LatencyStats struct {
	Min     float64 `json:"min_ms"`
	Max     float64 `json:"max_ms"`
	Mean    float64 `json:"mean_ms"`
	Stddev  float64 `json:"stddev_ms"`
	P50     float64 `json:"p50_ms"`
	P90     float64 `json:"p90_ms"`
	P95     float64 `json:"p95_ms"`
	P99     float64 `json:"p99_ms"`
	Samples int     `json:"samples"`
}

func ComputeLatencyStats(samples []float64) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	stats := LatencyStats{
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		P50:     percentile(sorted, 50),
		P90:     percentile(sorted, 90),
		P95:     percentile(sorted, 95),
		P99:     percentile(sorted, 99),
		Samples: len(sorted),
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		var sumSquares float64
		for _, v := range sorted {
			diff := v - stats.Mean
			sumSquares += diff * diff
		}
		stats.Stddev = math.Sqrt(sumSquares / float64(len(sorted)-1))
	}

	return stats
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := float64(p) / 100.0 * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IndexPercentile picks sorted[(n-1)*p/100] without interpolation. The
// comparison output uses it so numbers line up with earlier tooling.
func IndexPercentile(samples []float64, p int) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)*p/100]
}

func (s LatencyStats) IsZero() bool {
	return s.Samples == 0
}
