// Package exporter writes aggregation results: a delimited text file and,
// optionally, an HTML line chart.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tsagg/internal/dataprocessing"
	apperrors "tsagg/internal/errors"
)

// timestampHeader is the first column of every output file.
const timestampHeader = "Date Time"

// timestampFormat is how bucket starts are rendered in the output.
const timestampFormat = "2006-01-02 15:04:05"

// CSVWriter writes tables as comma-separated files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// WriteTable writes the table to path, overwriting any existing file there
// without confirmation. The write is atomic from the caller's perspective:
// data goes to a temp file in the target directory which is renamed over the
// destination only after a successful flush, so a failed run never leaves a
// partial output file behind.
func (w *CSVWriter) WriteTable(path string, t *dataprocessing.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.OutputError(fmt.Sprintf("cannot create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.OutputError("cannot create temp output file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmp)

	header := append([]string{timestampHeader}, t.Columns...)
	if err := writer.Write(header); err != nil {
		return apperrors.OutputError("failed to write header", err)
	}

	for i, row := range t.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Timestamp.UTC().Format(timestampFormat))
		for _, col := range t.Columns {
			record = append(record, formatValue(row.Cells[col]))
		}
		if err := writer.Write(record); err != nil {
			return apperrors.OutputError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.OutputError("failed to flush output", err)
	}
	if err := tmp.Sync(); err != nil {
		return apperrors.OutputError("failed to sync output", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.OutputError("failed to close output", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.OutputError(fmt.Sprintf("failed to move output into place at %s", path), err)
	}

	w.logger.Info("aggregated data written",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", len(header)))

	return nil
}

// formatValue renders a cell for CSV output. Missing cells become empty
// fields, the sentinel for "no data".
func formatValue(v dataprocessing.Value) string {
	switch v.Kind {
	case dataprocessing.KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case dataprocessing.KindText:
		return v.Text
	default:
		return ""
	}
}

// FormatTimestamp renders an instant the way the sink does. Exposed for the
// chart renderer so axis labels match the CSV.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}
