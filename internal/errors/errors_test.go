package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	plain := New(KindValidation, "validate", "timefrom is after timeto")
	assert.Equal(t, "validate [VALIDATION_ERROR]: timefrom is after timeto", plain.Error())

	wrapped := Wrap(KindInput, "loader", "cannot open workbook", errors.New("no such file"))
	assert.Equal(t, "loader [INPUT_ERROR]: cannot open workbook: no such file", wrapped.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := OutputError("failed to flush output", cause)

	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("stage wrapper: %w", UnknownColumnError("humidity"))

	assert.True(t, errors.Is(err, &Error{Kind: KindUnknownColumn}))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation}))
}

func TestKindOfAndStageOf(t *testing.T) {
	err := InvalidIntervalError("1X", errors.New("unknown unit"))

	assert.Equal(t, KindInvalidInterval, KindOf(err))
	assert.Equal(t, "resample", StageOf(err))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "", StageOf(nil))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		kind  Kind
		stage string
	}{
		{name: "input", err: InputError("bad file", nil), kind: KindInput, stage: "loader"},
		{name: "validation", err: ValidationError("bad range"), kind: KindValidation, stage: "validate"},
		{name: "unknown column", err: UnknownColumnError("x"), kind: KindUnknownColumn, stage: "select"},
		{name: "invalid interval", err: InvalidIntervalError("z", nil), kind: KindInvalidInterval, stage: "resample"},
		{name: "invalid statistic", err: InvalidStatisticError("p99"), kind: KindInvalidStatistic, stage: "resample"},
		{name: "output", err: OutputError("cannot write", nil), kind: KindOutput, stage: "sink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.stage, tt.err.Stage)
		})
	}
}

func TestUnknownColumnError_NamesTheColumn(t *testing.T) {
	err := UnknownColumnError("humidity")
	assert.Contains(t, err.Error(), `"humidity"`)
}
