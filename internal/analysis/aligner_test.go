package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
	"github.com/user/pq_analyzer_go/internal/parser"
	"github.com/user/pq_analyzer_go/internal/testutil"
)

func fourSamples() []testutil.Sample {
	return []testutil.Sample{
		testutil.Balanced(10, 400, 2, 10),
		testutil.Balanced(20, 400, 2, 5),
		testutil.Balanced(30, 400, 3, 4),
		testutil.Balanced(40, 400, 4, 3),
	}
}

func TestAlignTablesTruncatesToShortestTable(t *testing.T) {
	set := testutil.NewTableSet(fourSamples(), []int{3, 5})
	// Recording loses its last row: 1 unit row + 3 samples.
	set.Recording = set.Recording.Slice(0, 4)
	beforeLen := set.Current.Len()

	aligned, err := AlignTables(set)
	require.NoError(t, err)

	assert.Equal(t, 3, aligned.N)
	for _, tbl := range []*parser.Table{aligned.Current, aligned.Voltage, aligned.Recording, aligned.CurrentPct.Table, aligned.VoltagePct.Table} {
		assert.Equal(t, 3, tbl.Len(), tbl.Name)
	}
	assert.Len(t, aligned.Records(), 3)
	assert.Equal(t, beforeLen, set.Current.Len(), "input must not be modified")
}

func TestAlignTablesDropsUnitRow(t *testing.T) {
	set := testutil.NewTableSet(fourSamples(), nil)

	aligned, err := AlignTables(set)
	require.NoError(t, err)

	rec := aligned.Records()[0]
	v, ok := rec.Current("A1 H1")
	require.True(t, ok)
	assert.Equal(t, "10", v)
}

func TestAlignTablesCountNeverExceedsMinimum(t *testing.T) {
	for keep := 2; keep <= 5; keep++ {
		set := testutil.NewTableSet(fourSamples(), []int{5})
		set.VoltagePct = set.VoltagePct.Slice(0, keep)

		aligned, err := AlignTables(set)
		require.NoError(t, err)
		assert.Equal(t, keep-1, aligned.N)
	}
}

func TestAlignTablesErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*parser.TableSet)
		wantErr interface{}
	}{
		{
			name:    "table with only unit row",
			mutate:  func(s *parser.TableSet) { s.Voltage = s.Voltage.Slice(0, 1) },
			wantErr: &pqerrors.DegenerateDatasetError{},
		},
		{
			name: "missing fundamental column",
			mutate: func(s *parser.TableSet) {
				s.Current = parser.NewTable(s.Current.Name, []string{"Date", "Time", "A1 H1", "A2 H1"}, s.Current.Rows)
			},
			wantErr: &pqerrors.SchemaError{},
		},
		{
			name:    "missing percent sheet",
			mutate:  func(s *parser.TableSet) { s.VoltagePct = nil },
			wantErr: &pqerrors.SchemaError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := testutil.NewTableSet(fourSamples(), []int{5})
			tt.mutate(set)

			_, err := AlignTables(set)
			require.Error(t, err)
			switch tt.wantErr.(type) {
			case *pqerrors.DegenerateDatasetError:
				var target *pqerrors.DegenerateDatasetError
				assert.True(t, errors.As(err, &target))
			case *pqerrors.SchemaError:
				var target *pqerrors.SchemaError
				assert.True(t, errors.As(err, &target))
			}
		})
	}
}

func TestValidateSchemaNamesMissingColumn(t *testing.T) {
	set := testutil.NewTableSet(fourSamples(), nil)
	set.Recording = parser.NewTable(parser.SheetRecording, []string{"V1-2 THDf", "V2-3 THDf", "V3-1 THDf", "A1 THDf", "A2 THDf"}, nil)

	err := ValidateSchema(set)
	var schemaErr *pqerrors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "A3 THDf", schemaErr.Column)
	assert.Equal(t, parser.SheetRecording, schemaErr.Table)
}
