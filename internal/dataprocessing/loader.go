package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tsagg/internal/config"
	apperrors "tsagg/internal/errors"
)

// timestampLayouts are tried in order when parsing the timestamp column.
// Numeric cells are treated as epoch seconds or milliseconds first.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// LoadWorkbook reads every sheet of an .xlsx workbook and outer-merges them
// on the timestamp column into one Table. Each sheet is treated as one
// device: the sheet prefix and a trailing "_N" counter are stripped from the
// sheet name, and every non-timestamp column is renamed
// "<device>_<column>". The returned AliasMap holds normalized short-name
// entries for all renamed columns.
//
// Rows are keyed by timestamp: sheets deriving the same device name feed one
// merged series per column, and rows sharing an identical timestamp collapse
// into a single Row with the last cell read winning per column.
//
// Rows whose timestamp cell fails to parse fail the load unless
// cfg.SkipBadRows is set, in which case they are dropped with a warning.
func LoadWorkbook(path string, cfg config.InputConfig, logger *slog.Logger) (*Table, *AliasMap, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.InputError(fmt.Sprintf("cannot open workbook %s", path), err)
	}
	defer f.Close()

	table := &Table{}
	aliases := NewAliasMap()
	columnSeen := make(map[string]bool)
	rowIndex := make(map[int64]*Row)
	var rowOrder []int64
	sheetsLoaded := 0

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, apperrors.InputError(fmt.Sprintf("cannot read sheet %q", sheet), err)
		}
		if len(rows) == 0 {
			logger.Warn("skipping empty sheet", slog.String("sheet", sheet))
			continue
		}

		header := rows[0]
		tsIdx := -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), cfg.TimestampColumn) {
				tsIdx = i
				break
			}
		}
		if tsIdx == -1 {
			logger.Warn("skipping sheet without timestamp column",
				slog.String("sheet", sheet),
				slog.String("timestamp_column", cfg.TimestampColumn))
			continue
		}

		device := deviceName(sheet, cfg.SheetPrefix)

		// Column names for this sheet, prefixed with the device name.
		prefixed := make([]string, len(header))
		for i, h := range header {
			if i == tsIdx {
				continue
			}
			name := strings.TrimSpace(h)
			if name == "" {
				continue
			}
			col := device + "_" + name
			prefixed[i] = col
			aliases.Add(col)
			// Sheets that derive the same device name ("Input Boiler_1",
			// "Input Boiler_2") contribute to one merged series per column.
			if !columnSeen[col] {
				columnSeen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}

		parsed, dropped := 0, 0
		sheetSeen := make(map[int64]bool)
		for n, cells := range rows[1:] {
			if tsIdx >= len(cells) || strings.TrimSpace(cells[tsIdx]) == "" {
				continue
			}
			ts, ok := parseTimestamp(cells[tsIdx])
			if !ok {
				if !cfg.SkipBadRows {
					return nil, nil, apperrors.InputError(
						fmt.Sprintf("sheet %q row %d: unparseable timestamp %q", sheet, n+2, cells[tsIdx]), nil)
				}
				logger.Warn("dropping row with unparseable timestamp",
					slog.String("sheet", sheet),
					slog.Int("row", n+2),
					slog.String("value", cells[tsIdx]))
				dropped++
				continue
			}

			key := ts.UnixMilli()
			row, exists := rowIndex[key]
			if !exists {
				row = &Row{Timestamp: ts, Cells: make(map[string]Value)}
				rowIndex[key] = row
				rowOrder = append(rowOrder, key)
			}
			if sheetSeen[key] {
				logger.Debug("collapsing row with duplicate timestamp",
					slog.String("sheet", sheet),
					slog.Int("row", n+2),
					slog.Time("timestamp", ts))
			}
			sheetSeen[key] = true
			for i, cell := range cells {
				if i == tsIdx || i >= len(prefixed) || prefixed[i] == "" {
					continue
				}
				row.Cells[prefixed[i]] = parseCell(cell)
			}
			parsed++
		}

		logger.Info("loaded sheet",
			slog.String("sheet", sheet),
			slog.String("device", device),
			slog.Int("rows", parsed),
			slog.Int("dropped", dropped))
		sheetsLoaded++
	}

	if sheetsLoaded == 0 {
		return nil, nil, apperrors.InputError(
			fmt.Sprintf("no sheet in %s carries a %q column", path, cfg.TimestampColumn), nil)
	}

	for _, key := range rowOrder {
		table.Rows = append(table.Rows, *rowIndex[key])
	}

	logger.Info("workbook loaded",
		slog.String("path", path),
		slog.Int("sheets", sheetsLoaded),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.NumRows()))

	return table, aliases, nil
}

// deviceName derives a device name from a sheet name by stripping the
// configured prefix and a trailing "_N" counter.
func deviceName(sheet, prefix string) string {
	name := strings.TrimPrefix(sheet, prefix)
	if i := strings.LastIndex(name, "_"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	return strings.TrimSpace(name)
}

// parseTimestamp parses a timestamp cell into a UTC instant. Integer cells
// are read as epoch milliseconds when they exceed 13 digits worth of range,
// epoch seconds otherwise.
func parseTimestamp(s string) (time.Time, bool) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(ss, 10, 64); err == nil {
		if n > 1_000_000_000_000 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ss); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseCell converts a raw cell string into a Value. Numbers may carry
// thousands separators.
func parseCell(s string) Value {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return Missing
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(ss, ",", ""), 64); err == nil {
		return Number(v)
	}
	return Text(ss)
}
