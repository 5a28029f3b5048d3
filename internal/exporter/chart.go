package exporter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"tsagg/internal/dataprocessing"
)

// ChartRenderer renders an aggregated table as an HTML line chart with one
// series per numeric column against bucket start time. Rendering is
// best-effort: callers log failures as warnings and never let them affect
// the exit code or the already-written CSV.
type ChartRenderer struct {
	logger *slog.Logger
}

// NewChartRenderer creates a new chart renderer instance.
func NewChartRenderer(logger *slog.Logger) *ChartRenderer {
	return &ChartRenderer{logger: logger}
}

// Render writes a line chart of the table's numeric columns to an HTML file
// at path. Fails when the table has no numeric columns to plot.
func (r *ChartRenderer) Render(path string, t *dataprocessing.Table) error {
	var numericCols []string
	for _, col := range t.Columns {
		if t.IsNumeric(col) {
			numericCols = append(numericCols, col)
		}
	}
	if len(numericCols) == 0 {
		return fmt.Errorf("no numeric columns to plot")
	}

	xLabels := make([]string, 0, t.NumRows())
	for _, row := range t.Rows {
		xLabels = append(xLabels, FormatTimestamp(row.Timestamp))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Time-Series Aggregated Data"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "tsagg"}),
		charts.WithXAxisOpts(opts.XAxis{Name: timestampHeader}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Values"}),
	)
	line.SetXAxis(xLabels)

	for _, col := range numericCols {
		data := make([]opts.LineData, 0, t.NumRows())
		for _, row := range t.Rows {
			v := row.Cells[col]
			if v.Kind == dataprocessing.KindNumber {
				data = append(data, opts.LineData{Value: v.Num})
			} else {
				// Gaps stay gaps; echarts skips nil points.
				data = append(data, opts.LineData{Value: nil})
			}
		}
		line.AddSeries(col, data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create chart file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}

	r.logger.Info("chart written",
		slog.String("path", path),
		slog.Int("series", len(numericCols)))

	return nil
}
