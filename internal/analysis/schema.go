package analysis

import (
	"fmt"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
	"github.com/user/pq_analyzer_go/internal/parser"
)

// Required fundamental and THD columns.
var (
	CurrentColumns    = []string{"A1 H1", "A2 H1", "A3 H1"}
	VoltageColumns    = []string{"V1-2 H1", "V2-3 H1", "V3-1 H1"}
	VoltageTHDColumns = []string{"V1-2 THDf", "V2-3 THDf", "V3-1 THDf"}
	CurrentTHDColumns = []string{"A1 THDf", "A2 THDf", "A3 THDf"}
)

// HarmonicSchema enumerates the (channel × order) key space of one signal's
// percent table.
type HarmonicSchema struct {
	Signal   string
	Channels []string
	MinOrder int
	MaxOrder int
}

// Harmonic schemas for the two signals, orders 2 to 50.
var (
	CurrentHarmonics = HarmonicSchema{Signal: "current", Channels: []string{"A1", "A2", "A3"}, MinOrder: 2, MaxOrder: 50}
	VoltageHarmonics = HarmonicSchema{Signal: "voltage", Channels: []string{"V1-2", "V2-3", "V3-1"}, MinOrder: 2, MaxOrder: 50}
)

// Column renders the percent-table column label for a channel and order.
func (s HarmonicSchema) Column(channel string, order int) string {
	return fmt.Sprintf("%s H%d", channel, order)
}

// WithOrders returns a copy restricted to [min, max] within 2..50.
func (s HarmonicSchema) WithOrders(lo, hi int) HarmonicSchema {
	if lo > s.MinOrder {
		s.MinOrder = lo
	}
	if hi < s.MaxOrder {
		s.MaxOrder = hi
	}
	return s
}

// Group returns the header group holding the schema's columns: the group of
// the first "<channel> H<order>" column found. Groups that only cover other
// columns, such as a timestamp group, are never chosen.
func (s HarmonicSchema) Group(table *parser.GroupedTable) (string, bool) {
	for h := s.MinOrder; h <= s.MaxOrder; h++ {
		for _, ch := range s.Channels {
			if group, ok := table.GroupOf(s.Column(ch, h)); ok {
				return group, true
			}
		}
	}
	return "", false
}

// Columns resolves every channel of an order inside group. ok is false when
// any channel is absent.
func (s HarmonicSchema) Columns(table *parser.GroupedTable, group string, order int) ([]int, bool) {
	cols := make([]int, 0, len(s.Channels))
	for _, ch := range s.Channels {
		idx, ok := table.Lookup(group, s.Column(ch, order))
		if !ok {
			return nil, false
		}
		cols = append(cols, idx)
	}
	return cols, true
}

// ValidateSchema checks that every table is present and carries the required
// fundamental and THD columns. Harmonic percent columns are optional.
func ValidateSchema(set *parser.TableSet) error {
	if set == nil {
		return &pqerrors.SchemaError{Table: "workbook"}
	}
	required := []struct {
		table   *parser.Table
		name    string
		columns [][]string
	}{
		{set.Current, parser.SheetCurrentRMS, [][]string{CurrentColumns}},
		{set.Voltage, parser.SheetVoltageRMS, [][]string{VoltageColumns}},
		{set.Recording, parser.SheetRecording, [][]string{VoltageTHDColumns, CurrentTHDColumns}},
	}
	for _, r := range required {
		if r.table == nil {
			return &pqerrors.SchemaError{Table: r.name}
		}
		for _, group := range r.columns {
			for _, col := range group {
				if !r.table.HasColumn(col) {
					return &pqerrors.SchemaError{Table: r.name, Column: col}
				}
			}
		}
	}
	if set.CurrentPct == nil {
		return &pqerrors.SchemaError{Table: parser.SheetCurrentPercent}
	}
	if set.VoltagePct == nil {
		return &pqerrors.SchemaError{Table: parser.SheetVoltagePercent}
	}
	return nil
}
