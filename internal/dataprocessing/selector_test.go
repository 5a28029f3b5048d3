package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tsagg/internal/errors"
)

func selectorFixture() (*Table, *AliasMap) {
	aliases := NewAliasMap()
	for _, col := range []string{"Boiler_Temperature", "Boiler_Pressure", "Pump_Flow"} {
		aliases.Add(col)
	}

	table := &Table{
		Columns: []string{"Boiler_Temperature", "Boiler_Pressure", "Pump_Flow"},
		Rows: []Row{
			{
				Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
				Cells: map[string]Value{
					"Boiler_Temperature": Number(21.5),
					"Boiler_Pressure":    Number(1.2),
					"Pump_Flow":          Number(4.2),
				},
			},
		},
	}
	return table, aliases
}

func TestSelectColumns(t *testing.T) {
	table, aliases := selectorFixture()

	out, err := SelectColumns(table, aliases, []string{"flow", "temp"}, testLogger())
	require.NoError(t, err)

	// Request order is preserved.
	assert.Equal(t, []string{"Pump_Flow", "Boiler_Temperature"}, out.Columns)
	require.Equal(t, 1, out.NumRows())

	row := out.Rows[0]
	assert.Equal(t, Number(4.2), row.Cells["Pump_Flow"])
	assert.Equal(t, Number(21.5), row.Cells["Boiler_Temperature"])
	_, present := row.Cells["Boiler_Pressure"]
	assert.False(t, present, "unselected columns are dropped")
	assert.Equal(t, table.Rows[0].Timestamp, row.Timestamp)
}

func TestSelectColumns_EmptyRequestKeepsAll(t *testing.T) {
	table, aliases := selectorFixture()

	out, err := SelectColumns(table, aliases, nil, testLogger())
	require.NoError(t, err)
	assert.Same(t, table, out)
}

func TestSelectColumns_UnknownShortName(t *testing.T) {
	table, aliases := selectorFixture()

	_, err := SelectColumns(table, aliases, []string{"temp", "humidity", "alsobad"}, testLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnknownColumn, apperrors.KindOf(err))
	// The first unresolved name is reported.
	assert.Contains(t, err.Error(), "humidity")
	assert.NotContains(t, err.Error(), "alsobad")
}

func TestSelectColumns_DuplicateResolutionCollapses(t *testing.T) {
	table, aliases := selectorFixture()

	out, err := SelectColumns(table, aliases, []string{"temp", "temperature"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"Boiler_Temperature"}, out.Columns)
}
