package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLookups(t *testing.T) {
	tbl := NewTable("t", []string{"Date", "A1 H1", "", "A1 H1"}, [][]string{{"d", "1"}, {"d", "2", "x", "3"}})

	i, ok := tbl.ColumnIndex("A1 H1")
	require.True(t, ok)
	assert.Equal(t, 1, i, "first occurrence wins")
	assert.False(t, tbl.HasColumn("a1 h1"), "lookups are case-sensitive")
	assert.Equal(t, "", tbl.Cell(0, 3), "short rows read as blank")
	assert.Equal(t, "", tbl.Cell(5, 0))

	v, ok := tbl.Value(1, "A1 H1")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestTableSliceDoesNotAlias(t *testing.T) {
	tbl := NewTable("t", []string{"c"}, [][]string{{"0"}, {"1"}, {"2"}})
	s := tbl.Slice(1, 10)

	require.Equal(t, 2, s.Len())
	s.Rows[0] = []string{"changed"}
	assert.Equal(t, "1", tbl.Rows[1][0])
	assert.Equal(t, 0, tbl.Slice(3, 1).Len())
}

func TestGroupedTableForwardFillsGroups(t *testing.T) {
	g := NewGroupedTable("pct", []string{"", "", "Harmonic %", "", "Other"}, []string{"Date", "Time", "A1 H2", "A2 H2", "A1 H2"}, nil)

	group, ok := g.GroupOf("A1 H2")
	require.True(t, ok)
	assert.Equal(t, "Harmonic %", group)
	_, ok = g.GroupOf("A9 H2")
	assert.False(t, ok)
	assert.Equal(t, []string{"", "", "Harmonic %", "Harmonic %", "Other"}, g.Groups)

	i, ok := g.Lookup("Harmonic %", "A2 H2")
	require.True(t, ok)
	assert.Equal(t, 3, i)
	i, ok = g.Lookup("Other", "A1 H2")
	require.True(t, ok)
	assert.Equal(t, 4, i)
	_, ok = g.Lookup("Harmonic %", "A3 H2")
	assert.False(t, ok)
}

func TestTableSetModel(t *testing.T) {
	set := &TableSet{ConfigInfo: [][]string{{"Serial"}, {}, {"Instrument Model", "PEL 8336"}, {"Model", "later"}}}
	label, value, ok := set.Model()
	require.True(t, ok)
	assert.Equal(t, "Instrument Model", label)
	assert.Equal(t, "PEL 8336", value)
}
