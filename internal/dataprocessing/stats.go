package dataprocessing

import (
	"sort"

	apperrors "tsagg/internal/errors"
)

// Statistic names one of the supported per-bucket summary statistics.
type Statistic string

const (
	StatMin    Statistic = "min"
	StatMax    Statistic = "max"
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatMode   Statistic = "mode"
)

// SupportedStatistics lists the valid statistic names in canonical order.
var SupportedStatistics = []Statistic{StatMin, StatMax, StatMean, StatMedian, StatMode}

// ParseStatistics validates a list of statistic names. Duplicates collapse;
// an unsupported name fails with an InvalidStatisticError.
func ParseStatistics(names []string) ([]Statistic, error) {
	if len(names) == 0 {
		return nil, apperrors.InvalidStatisticError("(none)")
	}
	var out []Statistic
	seen := make(map[Statistic]bool)
	for _, name := range names {
		s := Statistic(name)
		switch s {
		case StatMin, StatMax, StatMean, StatMedian, StatMode:
		default:
			return nil, apperrors.InvalidStatisticError(name)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// Apply computes the statistic over the given values. An empty slice yields
// the missing sentinel.
func (s Statistic) Apply(values []float64) Value {
	if len(values) == 0 {
		return Missing
	}
	switch s {
	case StatMin:
		return Number(minOf(values))
	case StatMax:
		return Number(maxOf(values))
	case StatMean:
		return Number(meanOf(values))
	case StatMedian:
		return Number(medianOf(values))
	case StatMode:
		return Number(modeOf(values))
	}
	return Missing
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// modeOf returns the most frequent value; ties resolve to the smallest value
// among the most frequent.
func modeOf(values []float64) float64 {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best
}
