// Package app ties the pipeline stages together. Both entry points (flags
// and interactive prompts) build one validated Params and hand it to Run.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"tsagg/internal/config"
	"tsagg/internal/dataprocessing"
	apperrors "tsagg/internal/errors"
	"tsagg/internal/exporter"
)

// Params holds one run's worth of validated parameters, however they were
// obtained.
type Params struct {
	// InputPath is the source workbook.
	InputPath string `validate:"required"`
	// GroupBy is the resampling interval token, e.g. "1H", "30T", "1D".
	GroupBy string `validate:"required"`
	// Stats names the statistics to compute per bucket.
	Stats []string `validate:"required,min=1"`
	// Columns lists requested short names; empty keeps all columns.
	Columns []string
	// TimeFrom/TimeTo bound the rows by epoch milliseconds, inclusive.
	// Nil means unbounded.
	TimeFrom *int64
	TimeTo   *int64
	// Plot renders an HTML line chart next to the output file.
	Plot bool
	// OutputPath is where the aggregated CSV goes. Overwritten on success.
	OutputPath string `validate:"required"`
	// SkipBadRows drops rows with unparseable timestamps instead of failing.
	SkipBadRows bool
}

var validate = validator.New()

// Validate checks structural and cross-field constraints. Interval and
// statistic names are checked by the resampling stage so their failures carry
// the right error kind.
func (p *Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return apperrors.ValidationError(
				fmt.Sprintf("missing or invalid parameters: %s", strings.Join(fields, ", ")))
		}
		return apperrors.ValidationError(err.Error())
	}

	return p.timeRange().Validate()
}

func (p *Params) timeRange() dataprocessing.TimeRange {
	return dataprocessing.TimeRange{FromMillis: p.TimeFrom, ToMillis: p.TimeTo}
}

// Run executes the whole pipeline: load, filter, select, resample, write,
// and optionally plot. The output file is written only when every prior
// stage succeeds; plotting failures are logged and swallowed.
func Run(cfg *config.Config, params Params, logger *slog.Logger) error {
	if err := params.Validate(); err != nil {
		return err
	}

	// Fail fast on malformed interval or statistic names before touching
	// the input file.
	interval, err := dataprocessing.ParseInterval(params.GroupBy)
	if err != nil {
		return err
	}
	stats, err := dataprocessing.ParseStatistics(params.Stats)
	if err != nil {
		return err
	}

	inputCfg := cfg.Input
	if params.SkipBadRows {
		inputCfg.SkipBadRows = true
	}

	table, aliases, err := dataprocessing.LoadWorkbook(params.InputPath, inputCfg, logger)
	if err != nil {
		return err
	}

	table, err = dataprocessing.FilterByTime(table, params.timeRange(), logger)
	if err != nil {
		return err
	}

	table, err = dataprocessing.SelectColumns(table, aliases, params.Columns, logger)
	if err != nil {
		return err
	}

	result, err := dataprocessing.Resample(table, interval, stats, logger)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WriteTable(params.OutputPath, result); err != nil {
		return err
	}

	if params.Plot {
		chartPath := params.OutputPath + ".html"
		renderer := exporter.NewChartRenderer(logger)
		if err := renderer.Render(chartPath, result); err != nil {
			logger.Warn("plotting failed, output file is unaffected",
				slog.String("path", chartPath),
				slog.String("error", err.Error()))
		}
	}

	return nil
}
