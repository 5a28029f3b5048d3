// Command tsagg reads a workbook of time-series sensor readings, resamples
// the rows into fixed time buckets, writes per-bucket statistics to a CSV
// file, and optionally renders a line chart.
//
// With command-line flags the run is fully scripted; with no arguments the
// program prompts for each parameter instead. Both modes feed the same
// pipeline with the same validation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tsagg/internal/app"
	"tsagg/internal/config"
	apperrors "tsagg/internal/errors"
	"tsagg/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		input       = flag.String("input", "", "input workbook path (.xlsx)")
		groupBy     = flag.String("group-by", "", "resampling interval, e.g. 1H, 30T, 1D")
		stats       = flag.String("stats", "mean", "statistics to compute: min max mean median mode (comma or space separated)")
		columns     = flag.String("columns", "", "short names of columns to include (comma or space separated, empty for all)")
		timeFrom    = flag.String("timefrom", "", "start of time range in epoch milliseconds, inclusive")
		timeTo      = flag.String("timeto", "", "end of time range in epoch milliseconds, inclusive")
		plot        = flag.Bool("plot", false, "render an HTML line chart next to the output file")
		output      = flag.String("output", "", "output CSV path (overwritten without confirmation)")
		skipBadRows = flag.Bool("skip-bad-rows", false, "drop rows with unparseable timestamps instead of failing")
		configPath  = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger = logger.With(slog.String("run_id", uuid.NewString()))

	var params app.Params
	if len(os.Args) > 1 {
		params, err = paramsFromFlags(*input, *groupBy, *stats, *columns, *timeFrom, *timeTo, *plot, *output, *skipBadRows)
	} else {
		params, err = promptParams(os.Stdin, os.Stdout)
	}
	if err != nil {
		return fail(logger, err)
	}

	if params.OutputPath == "" {
		params.OutputPath = cfg.Output.Path
	}

	logger.Info("starting aggregation",
		slog.String("input", params.InputPath),
		slog.String("group_by", params.GroupBy),
		slog.Any("stats", params.Stats),
		slog.Any("columns", params.Columns),
		slog.String("output", params.OutputPath),
		slog.Bool("plot", params.Plot))

	if err := app.Run(cfg, params, logger); err != nil {
		return fail(logger, err)
	}

	fmt.Printf("Aggregated data saved to %s\n", params.OutputPath)
	return 0
}

// fail reports a run-terminating error with its stage and kind and returns
// the process exit code.
func fail(logger *slog.Logger, err error) int {
	logger.Error("run failed",
		slog.String("stage", apperrors.StageOf(err)),
		slog.String("kind", string(apperrors.KindOf(err))),
		slog.String("error", err.Error()))
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

func paramsFromFlags(input, groupBy, stats, columns, timeFrom, timeTo string, plot bool, output string, skipBadRows bool) (app.Params, error) {
	params := app.Params{
		InputPath:   input,
		GroupBy:     groupBy,
		Stats:       splitList(stats),
		Columns:     splitList(columns),
		Plot:        plot,
		OutputPath:  output,
		SkipBadRows: skipBadRows,
	}

	var err error
	if params.TimeFrom, err = parseOptionalMillis("timefrom", timeFrom); err != nil {
		return app.Params{}, err
	}
	if params.TimeTo, err = parseOptionalMillis("timeto", timeTo); err != nil {
		return app.Params{}, err
	}
	return params, nil
}

// splitList splits a comma- or whitespace-separated flag value.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseOptionalMillis(name, s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, apperrors.ValidationError(fmt.Sprintf("%s must be an integer epoch-millisecond value, got %q", name, s))
	}
	return &v, nil
}
