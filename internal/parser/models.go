package parser

import "strings"

// Sheet names written by the instrument's export software.
const (
	SheetCurrentRMS     = "A H Harmonic RMS"
	SheetVoltageRMS     = "Vφ φ H Harmonic RMS"
	SheetRecording      = "Recording"
	SheetCurrentPercent = "A H Harmonic %"
	SheetVoltagePercent = "Vφ φ H Harmonic %"
	SheetConfigInfo     = "Config Info"
)

// FirstRowNumber is the 1-based sheet row of Rows[0] in every measurement
// sheet: two header rows sit above it.
const FirstRowNumber = 3

// Table is one sheet of named columns. Cells are kept as raw strings; numeric
// coercion happens downstream so that a bad cell only costs its sample.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a Table and indexes its column names. When a name repeats,
// the first occurrence wins.
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	return t
}

// Len returns the number of rows below the header.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex looks up a column by its exact (case-sensitive) name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Cell returns the raw value at (row, col). Short rows yield "".
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Value returns the raw value of the named column in the given row.
func (t *Table) Value(row int, column string) (string, bool) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return "", false
	}
	return t.Cell(row, col), true
}

// Slice returns a new Table sharing the header with rows [from, to).
// The receiver is not modified.
func (t *Table) Slice(from, to int) *Table {
	if from < 0 {
		from = 0
	}
	if to > len(t.Rows) {
		to = len(t.Rows)
	}
	if from > to {
		from = to
	}
	rows := make([][]string, to-from)
	copy(rows, t.Rows[from:to])
	return &Table{Name: t.Name, Columns: t.Columns, Rows: rows, index: t.index}
}

// GroupedTable is a Table whose header spans two rows: a group label
// (merged over several cells in the workbook) above each column label.
type GroupedTable struct {
	*Table
	Groups []string
	keyed  map[groupKey]int
	first  map[string]int // column label -> first index in sheet order
}

type groupKey struct {
	group  string
	column string
}

// NewGroupedTable builds a GroupedTable. Group labels are forward-filled, so
// a blank group cell belongs to the nearest non-blank group on its left.
func NewGroupedTable(name string, groups, columns []string, rows [][]string) *GroupedTable {
	filled := make([]string, len(columns))
	current := ""
	for i := range columns {
		if i < len(groups) && strings.TrimSpace(groups[i]) != "" {
			current = strings.TrimSpace(groups[i])
		}
		filled[i] = current
	}

	g := &GroupedTable{
		Table:  NewTable(name, columns, rows),
		Groups: filled,
		keyed:  make(map[groupKey]int, len(columns)),
		first:  make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		k := groupKey{group: filled[i], column: strings.TrimSpace(c)}
		if k.column == "" {
			continue
		}
		if _, dup := g.keyed[k]; !dup {
			g.keyed[k] = i
		}
		if _, dup := g.first[k.column]; !dup {
			g.first[k.column] = i
		}
	}
	return g
}

// GroupOf returns the group label of the first column named column, in
// sheet order.
func (g *GroupedTable) GroupOf(column string) (string, bool) {
	if g == nil {
		return "", false
	}
	i, ok := g.first[column]
	if !ok {
		return "", false
	}
	return g.Groups[i], true
}

// Lookup finds the column identified by (group, column). A missing key is
// reported with ok == false and is never an error.
func (g *GroupedTable) Lookup(group, column string) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.keyed[groupKey{group: group, column: column}]
	return i, ok
}

// Slice returns a new GroupedTable with rows [from, to).
func (g *GroupedTable) Slice(from, to int) *GroupedTable {
	return &GroupedTable{Table: g.Table.Slice(from, to), Groups: g.Groups, keyed: g.keyed, first: g.first}
}

// TableSet holds everything the analysis needs from one recording.
type TableSet struct {
	Current    *Table
	Voltage    *Table
	Recording  *Table
	CurrentPct *GroupedTable
	VoltagePct *GroupedTable
	ConfigInfo [][]string
	// ParseWarnings collects non-fatal issues found while loading.
	ParseWarnings []string
}

// Model returns the instrument entry of the Config Info sheet: the first row
// whose first cell mentions "Model", as (label, value).
func (s *TableSet) Model() (string, string, bool) {
	for _, row := range s.ConfigInfo {
		if len(row) == 0 || !strings.Contains(row[0], "Model") {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		return row[0], value, true
	}
	return "", "", false
}
