// Package dataprocessing implements the aggregation pipeline: loading
// workbooks into an in-memory table, filtering by time range, selecting
// columns through an alias map, and resampling into fixed time buckets.
package dataprocessing

import (
	"regexp"
	"strings"
	"time"
)

// ValueKind discriminates the contents of a cell.
type ValueKind int

const (
	// KindMissing marks a cell with no data. Distinct from zero.
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

// Value is a single cell: a number, a text value, or missing.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Missing is the sentinel value for cells with no data.
var Missing = Value{Kind: KindMissing}

// Number wraps a float64 as a cell value.
func Number(v float64) Value {
	return Value{Kind: KindNumber, Num: v}
}

// Text wraps a string as a cell value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// IsMissing reports whether the cell holds no data.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// Row is one observation: a timestamp plus cells keyed by column name.
type Row struct {
	Timestamp time.Time
	Cells     map[string]Value
}

// Table is an ordered sequence of rows sharing one timestamp column and a
// fixed set of value columns. Row order follows the source file, which is not
// guaranteed chronological.
type Table struct {
	// Columns lists the value columns in source order. The timestamp is not
	// part of this list.
	Columns []string
	Rows    []Row
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// IsNumeric reports whether a column holds numeric data: at least one number
// and no text cells. Missing cells do not disqualify a column.
func (t *Table) IsNumeric(column string) bool {
	hasNumber := false
	for _, row := range t.Rows {
		switch row.Cells[column].Kind {
		case KindNumber:
			hasNumber = true
		case KindText:
			return false
		}
	}
	return hasNumber
}

var nonLetterRe = regexp.MustCompile(`[^a-z]+`)

// NormalizeColumnName reduces a column name to lowercase letters only, the
// form used for short-name matching.
func NormalizeColumnName(col string) string {
	return nonLetterRe.ReplaceAllString(strings.ToLower(col), "")
}

// AliasMap maps normalized column names to the actual column identifiers in
// the source workbook. Entries keep insertion order so that short-name
// resolution is deterministic.
type AliasMap struct {
	normalized []string
	actual     map[string]string
}

// NewAliasMap returns an empty alias map.
func NewAliasMap() *AliasMap {
	return &AliasMap{actual: make(map[string]string)}
}

// Add registers a source column under its normalized name.
func (m *AliasMap) Add(column string) {
	norm := NormalizeColumnName(column)
	if _, exists := m.actual[norm]; !exists {
		m.normalized = append(m.normalized, norm)
	}
	m.actual[norm] = column
}

// Resolve maps a user-facing short name to an actual column. A short name
// matches the first registered column whose normalized name contains the
// normalized short name as a substring.
func (m *AliasMap) Resolve(shortName string) (string, bool) {
	norm := NormalizeColumnName(shortName)
	if norm == "" {
		return "", false
	}
	for _, key := range m.normalized {
		if strings.Contains(key, norm) {
			return m.actual[key], true
		}
	}
	return "", false
}

// Len returns the number of registered columns.
func (m *AliasMap) Len() int {
	return len(m.normalized)
}
