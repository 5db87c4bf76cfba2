// Package errors defines the failure taxonomy shared by the loader, the
// analysis pipeline and the CLI.
package errors

import (
	"errors"
	"fmt"
)

// SchemaError reports a required sheet or column that is missing from the
// input. It is always fatal.
type SchemaError struct {
	Table  string
	Column string // empty when the whole sheet is missing
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema: required sheet %q not found", e.Table)
	}
	return fmt.Sprintf("schema: required column %q not found in sheet %q", e.Column, e.Table)
}

// CoercionError reports a cell that could not be read as a number. The
// pipeline recovers from it by dropping the sample it belongs to.
type CoercionError struct {
	Table  string
	Column string
	Row    int // 1-based sheet row, as shown by spreadsheet software
	Value  string
}

func (e *CoercionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("coercion: %s[%q] row %d is empty", e.Table, e.Column, e.Row)
	}
	return fmt.Sprintf("coercion: %s[%q] row %d: %q is not numeric", e.Table, e.Column, e.Row, e.Value)
}

// DegenerateDatasetError reports a dataset-wide reduction that makes every
// downstream metric meaningless (no samples, zero peak current, zero peak
// power). It is always fatal.
type DegenerateDatasetError struct {
	Reason string
}

func (e *DegenerateDatasetError) Error() string {
	return "degenerate dataset: " + e.Reason
}

// ErrHarmonicUnavailable marks a harmonic order whose channel columns are
// absent. The ranker omits such orders instead of failing.
var ErrHarmonicUnavailable = errors.New("harmonic order unavailable")

// IsFatal reports whether err must abort a run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var coerce *CoercionError
	if errors.As(err, &coerce) {
		return false
	}
	return !errors.Is(err, ErrHarmonicUnavailable)
}
