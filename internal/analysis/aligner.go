package analysis

import (
	"fmt"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
	"github.com/user/pq_analyzer_go/internal/parser"
)

// unitRows is the number of unit-annotation rows under each header.
const unitRows = 1

// AlignTables drops the unit row of every table and truncates all five to
// the shortest one. Alignment is positional: the tables are assumed to share
// the instrument's sample clock. The input tables are not modified.
func AlignTables(set *parser.TableSet) (*AlignedSet, error) {
	if err := ValidateSchema(set); err != nil {
		return nil, err
	}

	tables := []*parser.Table{set.Current, set.Voltage, set.Recording, set.CurrentPct.Table, set.VoltagePct.Table}
	n := -1
	for _, t := range tables {
		usable := t.Len() - unitRows
		if usable <= 0 {
			return nil, &pqerrors.DegenerateDatasetError{Reason: fmt.Sprintf("sheet %q has no data rows", t.Name)}
		}
		if n < 0 || usable < n {
			n = usable
		}
	}

	end := unitRows + n
	return &AlignedSet{
		N:          n,
		Current:    set.Current.Slice(unitRows, end),
		Voltage:    set.Voltage.Slice(unitRows, end),
		Recording:  set.Recording.Slice(unitRows, end),
		CurrentPct: set.CurrentPct.Slice(unitRows, end),
		VoltagePct: set.VoltagePct.Slice(unitRows, end),
	}, nil
}

// Records returns one JoinedRecord per aligned position.
func (a *AlignedSet) Records() []JoinedRecord {
	out := make([]JoinedRecord, a.N)
	for i := range out {
		out[i] = JoinedRecord{Index: i, sets: a}
	}
	return out
}

// SheetRow is the 1-based row number of this record in the source sheets.
func (r JoinedRecord) SheetRow() int {
	return parser.FirstRowNumber + unitRows + r.Index
}

// Current returns a raw cell of the current table for this record.
func (r JoinedRecord) Current(column string) (string, bool) {
	return r.sets.Current.Value(r.Index, column)
}

// Voltage returns a raw cell of the voltage table for this record.
func (r JoinedRecord) Voltage(column string) (string, bool) {
	return r.sets.Voltage.Value(r.Index, column)
}

// Recording returns a raw cell of the recording (THD) table for this record.
func (r JoinedRecord) Recording(column string) (string, bool) {
	return r.sets.Recording.Value(r.Index, column)
}
