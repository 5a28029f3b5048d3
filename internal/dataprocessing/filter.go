package dataprocessing

import (
	"fmt"
	"log/slog"

	apperrors "tsagg/internal/errors"
)

// TimeRange is an optional inclusive [FromMillis, ToMillis] bound on row
// timestamps, expressed as epoch milliseconds. A nil bound is open.
type TimeRange struct {
	FromMillis *int64
	ToMillis   *int64
}

// IsBounded reports whether at least one bound is set.
func (r TimeRange) IsBounded() bool {
	return r.FromMillis != nil || r.ToMillis != nil
}

// Validate checks that the bounds are consistent.
func (r TimeRange) Validate() error {
	if r.FromMillis != nil && r.ToMillis != nil && *r.FromMillis > *r.ToMillis {
		return apperrors.ValidationError(
			fmt.Sprintf("timefrom (%d) is after timeto (%d)", *r.FromMillis, *r.ToMillis))
	}
	return nil
}

// FilterByTime returns the sub-table of rows whose timestamps fall inside the
// inclusive range. Remaining rows are never mutated; with no bounds set the
// table is returned unchanged.
func FilterByTime(t *Table, r TimeRange, logger *slog.Logger) (*Table, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !r.IsBounded() {
		return t, nil
	}

	out := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		ms := row.Timestamp.UnixMilli()
		if r.FromMillis != nil && ms < *r.FromMillis {
			continue
		}
		if r.ToMillis != nil && ms > *r.ToMillis {
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	logger.Info("time filter applied",
		slog.Int("rows_before", t.NumRows()),
		slog.Int("rows_after", out.NumRows()))

	return out, nil
}
