package dataprocessing

import (
	"log/slog"

	apperrors "tsagg/internal/errors"
)

// SelectColumns resolves each requested short name through the alias map and
// restricts the table to the resolved columns, in request order. The
// timestamp travels with every row and is always retained. An empty request
// keeps all columns. Fails with an UnknownColumnError naming the first short
// name that resolves to nothing.
func SelectColumns(t *Table, aliases *AliasMap, shortNames []string, logger *slog.Logger) (*Table, error) {
	if len(shortNames) == 0 {
		return t, nil
	}

	resolved := make([]string, 0, len(shortNames))
	seen := make(map[string]bool)
	for _, short := range shortNames {
		col, ok := aliases.Resolve(short)
		if !ok {
			return nil, apperrors.UnknownColumnError(short)
		}
		if seen[col] {
			continue
		}
		seen[col] = true
		resolved = append(resolved, col)
		logger.Debug("resolved column",
			slog.String("short_name", short),
			slog.String("column", col))
	}

	out := &Table{Columns: resolved}
	for _, row := range t.Rows {
		cells := make(map[string]Value, len(resolved))
		for _, col := range resolved {
			if v, ok := row.Cells[col]; ok {
				cells[col] = v
			}
		}
		out.Rows = append(out.Rows, Row{Timestamp: row.Timestamp, Cells: cells})
	}

	logger.Info("columns selected", slog.Int("count", len(resolved)))
	return out, nil
}
