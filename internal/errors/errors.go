// Package errors defines the typed error kinds surfaced by the aggregation
// pipeline. Every failure carries a machine-readable kind, the pipeline stage
// it originated from, and a human-readable message.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInput            Kind = "INPUT_ERROR"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindUnknownColumn    Kind = "UNKNOWN_COLUMN"
	KindInvalidInterval  Kind = "INVALID_INTERVAL"
	KindInvalidStatistic Kind = "INVALID_STATISTIC"
	KindOutput           Kind = "OUTPUT_ERROR"
)

// Error is the error type returned by every pipeline stage.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Stage, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Stage, e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches against another *Error by kind, so callers can test
// errors.Is(err, &Error{Kind: KindValidation}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a pipeline error with the given kind, stage and message.
func New(kind Kind, stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

// Newf creates a pipeline error with a formatted message.
func Newf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a pipeline error.
func Wrap(kind Kind, stage, message string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// Helper constructors for the common failure modes.

// InputError reports an unreadable or malformed input file.
func InputError(message string, err error) *Error {
	return Wrap(KindInput, "loader", message, err)
}

// ValidationError reports inconsistent or malformed run parameters.
func ValidationError(message string) *Error {
	return New(KindValidation, "validate", message)
}

// UnknownColumnError reports a short name with no matching source column.
func UnknownColumnError(shortName string) *Error {
	return Newf(KindUnknownColumn, "select", "no source column matches %q", shortName)
}

// InvalidIntervalError reports an unparseable resampling interval.
func InvalidIntervalError(token string, err error) *Error {
	return Wrap(KindInvalidInterval, "resample", fmt.Sprintf("cannot parse interval %q", token), err)
}

// InvalidStatisticError reports an unsupported statistic name.
func InvalidStatisticError(name string) *Error {
	return Newf(KindInvalidStatistic, "resample", "unsupported statistic %q", name)
}

// OutputError reports a failure writing the result file.
func OutputError(message string, err error) *Error {
	return Wrap(KindOutput, "sink", message, err)
}

// KindOf returns the kind of err if it is a pipeline error, or "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StageOf returns the stage of err if it is a pipeline error, or "" otherwise.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
