package app

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tsagg/internal/config"
	apperrors "tsagg/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFixtureWorkbook creates a workbook with readings at 09:01, 09:45 and
// 10:05 for one device.
func writeFixtureWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Input Boiler_1"))
	rows := [][]interface{}{
		{"Date Time", "Temperature", "Status"},
		{"2024-03-01 09:01:00", 10.0, "warming"},
		{"2024-03-01 09:45:00", 20.0, "stable"},
		{"2024-03-01 10:05:00", 30.0, "stable"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Input Boiler_1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func fixtureParams(input, output string) Params {
	return Params{
		InputPath:  input,
		GroupBy:    "1H",
		Stats:      []string{"min", "mean"},
		OutputPath: output,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plant.xlsx")
	output := filepath.Join(dir, "aggregated_output.csv")
	writeFixtureWorkbook(t, input)

	err := Run(config.Default(), fixtureParams(input, output), testLogger())
	require.NoError(t, err)

	records := readCSV(t, output)
	require.Len(t, records, 3, "two populated buckets plus header")

	assert.Equal(t, []string{"Date Time", "Boiler_Temperature_min", "Boiler_Temperature_mean", "Boiler_Status"}, records[0])
	// 09:00 bucket covers 09:01 and 09:45.
	assert.Equal(t, []string{"2024-03-01 09:00:00", "10", "15", "stable"}, records[1])
	// 10:00 bucket covers 10:05 only.
	assert.Equal(t, []string{"2024-03-01 10:00:00", "30", "30", "stable"}, records[2])
}

func TestRun_ColumnSelection(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plant.xlsx")
	output := filepath.Join(dir, "out.csv")
	writeFixtureWorkbook(t, input)

	params := fixtureParams(input, output)
	params.Stats = []string{"mean"}
	params.Columns = []string{"temp"}

	require.NoError(t, Run(config.Default(), params, testLogger()))

	records := readCSV(t, output)
	assert.Equal(t, []string{"Date Time", "Boiler_Temperature_mean"}, records[0])
}

func TestRun_TimeFilter(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plant.xlsx")
	output := filepath.Join(dir, "out.csv")
	writeFixtureWorkbook(t, input)

	params := fixtureParams(input, output)
	// Cut the range off before 10:05 UTC.
	to := int64(1709286900000) // 2024-03-01 09:55:00 UTC
	params.TimeTo = &to

	require.NoError(t, Run(config.Default(), params, testLogger()))

	records := readCSV(t, output)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-01 09:00:00", records[1][0])
}

func TestRun_Plot(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plant.xlsx")
	output := filepath.Join(dir, "out.csv")
	writeFixtureWorkbook(t, input)

	params := fixtureParams(input, output)
	params.Plot = true

	require.NoError(t, Run(config.Default(), params, testLogger()))

	_, err := os.Stat(output + ".html")
	assert.NoError(t, err, "chart is written next to the CSV")
}

func TestRun_FailuresWriteNoOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plant.xlsx")
	writeFixtureWorkbook(t, input)

	from, to := int64(200), int64(100)

	tests := []struct {
		name   string
		mutate func(p *Params)
		kind   apperrors.Kind
	}{
		{
			name:   "time range inverted",
			mutate: func(p *Params) { p.TimeFrom = &from; p.TimeTo = &to },
			kind:   apperrors.KindValidation,
		},
		{
			name:   "unknown column",
			mutate: func(p *Params) { p.Columns = []string{"humidity"} },
			kind:   apperrors.KindUnknownColumn,
		},
		{
			name:   "invalid interval",
			mutate: func(p *Params) { p.GroupBy = "1X" },
			kind:   apperrors.KindInvalidInterval,
		},
		{
			name:   "invalid statistic",
			mutate: func(p *Params) { p.Stats = []string{"stddev"} },
			kind:   apperrors.KindInvalidStatistic,
		},
		{
			name:   "missing input file",
			mutate: func(p *Params) { p.InputPath = filepath.Join(dir, "absent.xlsx") },
			kind:   apperrors.KindInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.csv")
			params := fixtureParams(input, output)
			tt.mutate(&params)

			err := Run(config.Default(), params, testLogger())
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))

			_, statErr := os.Stat(output)
			assert.True(t, os.IsNotExist(statErr), "failed runs must not write the output file")
		})
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{
			name:   "complete",
			params: Params{InputPath: "in.xlsx", GroupBy: "1H", Stats: []string{"mean"}, OutputPath: "out.csv"},
		},
		{
			name:    "missing input",
			params:  Params{GroupBy: "1H", Stats: []string{"mean"}, OutputPath: "out.csv"},
			wantErr: true,
		},
		{
			name:    "missing group-by",
			params:  Params{InputPath: "in.xlsx", Stats: []string{"mean"}, OutputPath: "out.csv"},
			wantErr: true,
		},
		{
			name:    "empty stats",
			params:  Params{InputPath: "in.xlsx", GroupBy: "1H", OutputPath: "out.csv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
