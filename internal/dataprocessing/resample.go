package dataprocessing

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "tsagg/internal/errors"
)

var intervalRe = regexp.MustCompile(`^(\d+)\s*([A-Za-z]+)$`)

// ParseInterval parses a resampling interval token such as "1H", "30T",
// "15min", "1D" or "2W" into a duration. Unit codes follow the usual
// resampling shorthand: S seconds, T or MIN minutes, H hours, D days,
// W weeks. Matching is case-insensitive.
func ParseInterval(token string) (time.Duration, error) {
	m := intervalRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, apperrors.InvalidIntervalError(token, fmt.Errorf("expected <count><unit>, e.g. 1H or 30T"))
	}

	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return 0, apperrors.InvalidIntervalError(token, fmt.Errorf("count must be a positive integer"))
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "s", "sec", "second", "seconds":
		unit = time.Second
	case "t", "min", "minute", "minutes":
		unit = time.Minute
	case "h", "hr", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "week", "weeks":
		unit = 7 * 24 * time.Hour
	default:
		return 0, apperrors.InvalidIntervalError(token, fmt.Errorf("unknown unit %q", m[2]))
	}

	return time.Duration(count) * unit, nil
}

// Resample buckets rows on an epoch-aligned grid of the given interval and
// computes every requested statistic per bucket per numeric column. Only
// buckets containing at least one row appear in the result, ordered by
// bucket start ascending.
//
// Numeric columns produce one output column per statistic, named
// "<column>_<statistic>". A bucket with no numeric values for a column
// yields the missing sentinel. Non-numeric columns carry the last non-missing
// value of each bucket under their original name.
func Resample(t *Table, interval time.Duration, stats []Statistic, logger *slog.Logger) (*Table, error) {
	if interval <= 0 {
		return nil, apperrors.InvalidIntervalError(interval.String(), fmt.Errorf("interval must be positive"))
	}
	if len(stats) == 0 {
		return nil, apperrors.InvalidStatisticError("(none)")
	}

	// Buckets are half-open [start, start+interval), aligned to the Unix
	// epoch so runs over different inputs share the same grid.
	ivMillis := interval.Milliseconds()
	buckets := make(map[int64][]Row)
	var starts []int64
	for _, row := range t.Rows {
		start := bucketStart(row.Timestamp.UnixMilli(), ivMillis)
		if _, exists := buckets[start]; !exists {
			starts = append(starts, start)
		}
		buckets[start] = append(buckets[start], row)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	numeric := make(map[string]bool, len(t.Columns))
	var outCols []string
	for _, col := range t.Columns {
		if t.IsNumeric(col) {
			numeric[col] = true
			for _, s := range stats {
				outCols = append(outCols, fmt.Sprintf("%s_%s", col, s))
			}
		} else {
			outCols = append(outCols, col)
		}
	}

	out := &Table{Columns: outCols}
	for _, start := range starts {
		rows := buckets[start]
		cells := make(map[string]Value, len(outCols))

		for _, col := range t.Columns {
			if numeric[col] {
				var values []float64
				for _, row := range rows {
					if v := row.Cells[col]; v.Kind == KindNumber {
						values = append(values, v.Num)
					}
				}
				for _, s := range stats {
					cells[fmt.Sprintf("%s_%s", col, s)] = s.Apply(values)
				}
			} else {
				last := Missing
				for _, row := range rows {
					if v := row.Cells[col]; !v.IsMissing() {
						last = v
					}
				}
				cells[col] = last
			}
		}

		out.Rows = append(out.Rows, Row{
			Timestamp: time.UnixMilli(start).UTC(),
			Cells:     cells,
		})
	}

	logger.Info("resampling complete",
		slog.Duration("interval", interval),
		slog.Int("source_rows", t.NumRows()),
		slog.Int("buckets", out.NumRows()))

	return out, nil
}

// bucketStart floors an epoch-millisecond instant onto the epoch-aligned
// grid of the given interval. Correct for instants before 1970 as well.
func bucketStart(ms, ivMillis int64) int64 {
	rem := ms % ivMillis
	if rem < 0 {
		rem += ivMillis
	}
	return ms - rem
}

