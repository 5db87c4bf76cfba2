package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pq_analyzer_go/internal/parser"
	"github.com/user/pq_analyzer_go/internal/testutil"
)

// harmonicFixture returns aligned tables plus two samples, one per band.
func harmonicFixture(t *testing.T, first, second map[int]float64, orders []int) (*AlignedSet, []LoadBand, []MeasurementSample) {
	t.Helper()
	a := testutil.Balanced(10, 400, 2, 3)
	a.CurrentPct = first
	b := testutil.Balanced(40, 400, 2, 3)
	b.CurrentPct = second

	aligned, err := AlignTables(testutil.NewTableSet([]testutil.Sample{a, b}, orders))
	require.NoError(t, err)

	bands, err := BuildLoadBands(100, 2)
	require.NoError(t, err)
	samples := []MeasurementSample{{Index: 0, Band: 0}, {Index: 1, Band: 1}}
	return aligned, bands, samples
}

func TestRankHarmonicsTopThree(t *testing.T) {
	orders := []int{2, 3, 5, 7, 11}
	aligned, bands, samples := harmonicFixture(t,
		map[int]float64{2: 0.5, 3: 1.2, 5: 4.321, 7: 2.1, 11: 0.9},
		map[int]float64{2: 0.1, 3: 3.0, 5: 1.0, 7: 1.0, 11: 1.0},
		orders)

	ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics, bands, samples, 3)
	require.NoError(t, err)
	require.Len(t, ranking.Bands, 2)

	assert.Equal(t, []HarmonicRank{{5, 4.321}, {7, 2.1}, {3, 1.2}}, ranking.Bands[0].Top)
	assert.Equal(t, "H5 (4.32%); H7 (2.10%); H3 (1.20%)", FormatHarmonics(ranking.Bands[0].Top))

	// Equal magnitudes fall back to ascending order.
	assert.Equal(t, []int{3, 5, 7}, orders3(ranking.Bands[1].Top))
}

func orders3(ranks []HarmonicRank) []int {
	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = r.Order
	}
	return out
}

func TestRankHarmonicsSkipsAbsentOrders(t *testing.T) {
	aligned, bands, samples := harmonicFixture(t,
		map[int]float64{5: 3, 7: 1},
		map[int]float64{5: 2, 7: 4},
		[]int{5, 7})

	ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics, bands, samples, 3)
	require.NoError(t, err)

	assert.Len(t, ranking.Skipped, 47)
	assert.NotContains(t, ranking.Skipped, 5)
	assert.NotContains(t, ranking.Skipped, 7)
	assert.Len(t, ranking.Bands[0].Top, 2)
	assert.Equal(t, 5, ranking.Bands[0].Top[0].Order)
	assert.Equal(t, 7, ranking.Bands[1].Top[0].Order)
}

func TestRankHarmonicsOrderWithOneMissingChannel(t *testing.T) {
	set := testutil.NewTableSet([]testutil.Sample{testutil.Balanced(10, 400, 2, 3)}, []int{5, 7})
	// Only A1 and A2 carry H7: the order is unavailable.
	cols := []string{"Date", "Time", "A1 H5", "A2 H5", "A3 H5", "A1 H7", "A2 H7"}
	rows := [][]string{{"", "", "%", "%", "%", "%", "%"}, {"d", "t", "1", "2", "3", "9", "9"}}
	set.CurrentPct = parser.NewGroupedTable(parser.SheetCurrentPercent, []string{"", "", testutil.PercentGroup}, cols, rows)

	aligned, err := AlignTables(set)
	require.NoError(t, err)
	bands, _ := BuildLoadBands(10, 1)

	ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics.WithOrders(5, 7), bands, []MeasurementSample{{Index: 0, Band: 0}}, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 7}, ranking.Skipped)
	assert.Equal(t, []HarmonicRank{{5, 2}}, ranking.Bands[0].Top)
}

func TestRankHarmonicsIgnoresNonNumericChannel(t *testing.T) {
	set := testutil.NewTableSet([]testutil.Sample{testutil.Balanced(10, 400, 2, 3), testutil.Balanced(10, 400, 2, 3)}, nil)
	cols := []string{"Date", "Time", "A1 H3", "A2 H3", "A3 H3"}
	rows := [][]string{
		{"", "", "%", "%", "%"},
		{"d", "t", "2", "x", "4"},
		{"d", "t", "", "", ""},
	}
	set.CurrentPct = parser.NewGroupedTable(parser.SheetCurrentPercent, []string{"", "", testutil.PercentGroup}, cols, rows)
	aligned, err := AlignTables(set)
	require.NoError(t, err)
	bands, _ := BuildLoadBands(10, 1)

	samples := []MeasurementSample{{Index: 0, Band: 0}, {Index: 1, Band: 0}}
	ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics.WithOrders(3, 3), bands, samples, 3)
	require.NoError(t, err)
	assert.Equal(t, []HarmonicRank{{3, 3}}, ranking.Bands[0].Top)
}

func TestRankHarmonicsUsesSourceIndex(t *testing.T) {
	aligned, bands, _ := harmonicFixture(t,
		map[int]float64{3: 9},
		map[int]float64{5: 9},
		[]int{3, 5})

	// The first record was dropped upstream; only source row 1 remains.
	samples := []MeasurementSample{{Index: 1, Band: 0}}
	ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics, bands, samples, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{5}, orders3(ranking.Bands[0].Top))
	assert.Empty(t, ranking.Bands[1].Top)
}

func TestRankHarmonicsDeterministic(t *testing.T) {
	orders := []int{2, 3, 4, 5, 6, 7, 8, 9}
	first := map[int]float64{}
	second := map[int]float64{}
	for _, h := range orders {
		first[h] = 1.5
		second[h] = float64(h % 3)
	}
	aligned, bands, samples := harmonicFixture(t, first, second, orders)

	var previous *HarmonicRanking
	for i := 0; i < 20; i++ {
		ranking, err := RankHarmonics(context.Background(), aligned.CurrentPct, CurrentHarmonics, bands, samples, 3)
		require.NoError(t, err)
		if previous != nil {
			assert.Equal(t, previous.Bands, ranking.Bands)
		}
		previous = ranking
	}
	assert.Equal(t, []int{2, 3, 4}, orders3(previous.Bands[0].Top))
	assert.Equal(t, []int{2, 5, 8}, orders3(previous.Bands[1].Top))
}

func TestRankHarmonicsCancelled(t *testing.T) {
	aligned, bands, samples := harmonicFixture(t, map[int]float64{3: 1}, map[int]float64{3: 1}, []int{3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RankHarmonics(ctx, aligned.CurrentPct, CurrentHarmonics, bands, samples, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankHarmonicsWithTimestampGroup(t *testing.T) {
	table := parser.NewGroupedTable(parser.SheetCurrentPercent,
		[]string{"Time stamp", "", "A H Harmonic %"},
		[]string{"Date", "Time", "A1 H5", "A2 H5", "A3 H5"},
		[][]string{{"2025-04-17", "00:00", "4", "4", "4"}})
	bands, err := BuildLoadBands(100, 1)
	require.NoError(t, err)
	samples := []MeasurementSample{{Index: 0, Band: 0}}

	group, ok := CurrentHarmonics.Group(table)
	require.True(t, ok)
	assert.Equal(t, "A H Harmonic %", group)

	ranking, err := RankHarmonics(context.Background(), table, CurrentHarmonics.WithOrders(2, 7), bands, samples, 3)
	require.NoError(t, err)
	assert.NotContains(t, ranking.Skipped, 5)
	assert.Equal(t, []HarmonicRank{{5, 4}}, ranking.Bands[0].Top)
}

func TestHarmonicSchemaGroupAbsent(t *testing.T) {
	table := parser.NewGroupedTable(parser.SheetCurrentPercent,
		[]string{"Time stamp"}, []string{"Date", "Time"}, nil)
	_, ok := CurrentHarmonics.Group(table)
	assert.False(t, ok)
}
