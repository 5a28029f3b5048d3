package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tsagg/internal/app"
)

// promptParams collects run parameters interactively, mirroring the flags.
// Validation happens in app.Params.Validate, the same as the flag path.
func promptParams(in io.Reader, out io.Writer) (app.Params, error) {
	r := bufio.NewReader(in)
	fmt.Fprintln(out, "=== Time-Series Aggregator ===")

	var params app.Params
	var err error

	params.InputPath = prompt(r, out, "Path to input workbook: ")
	params.GroupBy = prompt(r, out, "Grouping interval (e.g. 1H, 30T, 1D): ")

	statsLine := prompt(r, out, "Statistics (min max mean median mode) [default: mean]: ")
	if statsLine == "" {
		params.Stats = []string{"mean"}
	} else {
		params.Stats = splitList(statsLine)
	}

	params.Columns = splitList(prompt(r, out, "Columns to include (short names) [empty for all]: "))

	if params.TimeFrom, err = parseOptionalMillis("timefrom",
		prompt(r, out, "Start time in epoch ms [optional]: ")); err != nil {
		return app.Params{}, err
	}
	if params.TimeTo, err = parseOptionalMillis("timeto",
		prompt(r, out, "End time in epoch ms [optional]: ")); err != nil {
		return app.Params{}, err
	}

	plotAnswer := strings.ToLower(prompt(r, out, "Render chart? (y/n) [default: n]: "))
	params.Plot = plotAnswer == "y" || plotAnswer == "yes"

	params.OutputPath = prompt(r, out, "Output CSV path [default: aggregated_output.csv]: ")

	return params, nil
}

func prompt(r *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
