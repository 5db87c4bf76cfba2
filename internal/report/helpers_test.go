package report

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/pq_analyzer_go/internal/analysis"
	"github.com/user/pq_analyzer_go/internal/config"
	"github.com/user/pq_analyzer_go/internal/testutil"
)

var testOrders = []int{3, 5, 7, 11}

func testSamples() []testutil.Sample {
	samples := []testutil.Sample{
		testutil.Balanced(5, 400, 2, 10),
		testutil.Balanced(15, 400, 2, 5),
		testutil.Balanced(25, 400, 3, 4),
		testutil.Balanced(40, 400, 4, 3),
	}
	for i := range samples {
		samples[i].CurrentPct = map[int]float64{3: float64(i), 5: 4, 7: 2}
		samples[i].VoltagePct = map[int]float64{5: 1.5, 11: 0.25}
	}
	return samples
}

func analyzedResults(t *testing.T) *analysis.AnalysisResults {
	t.Helper()
	results, err := analysis.AnalyzePowerQuality(context.Background(),
		testutil.NewTableSet(testSamples(), testOrders), config.Default().Analysis)
	require.NoError(t, err)
	return results
}

// failingResults has a THD_V violation and an empty second band.
func failingResults() *analysis.AnalysisResults {
	results := analysis.NewAnalysisResults()
	results.Bands = []analysis.LoadBand{
		{Index: 0, Lower: 0, Upper: 50, Label: "0–50 kW"},
		{Index: 1, Lower: 50, Upper: 100, Label: "50–100 kW"},
	}
	results.Summaries = []analysis.BandSummary{
		{
			Band: results.Bands[0], Count: 3, Duration: 6 * time.Minute,
			MeanIAvg: 120.5, MeanVAvg: 380, MeanTHDV: 9.5, MeanTHDI: 12.25, MeanTDD: 3.1,
			CurrentLabel: "H5 (6.10%)", VoltageLabel: "H5 (7.00%)",
		},
		{
			Band: results.Bands[1], MeanIAvg: math.NaN(), MeanVAvg: math.NaN(),
			MeanTHDV: math.NaN(), MeanTHDI: math.NaN(), MeanTDD: math.NaN(),
		},
	}
	results.Compliance = []analysis.ComplianceRow{
		{Metric: analysis.MetricVoltageTHD, Observed: 9.5, Limit: 8, Pass: false},
		{Metric: analysis.MetricTDD, Observed: 3.1, Limit: 5, Pass: true},
	}
	return results
}

func findTable(t *testing.T, doc *Document, heading string) *TableBlock {
	t.Helper()
	for i, b := range doc.Blocks {
		if b.Kind == BlockHeading && b.Text == heading {
			require.Less(t, i+1, len(doc.Blocks))
			require.Equal(t, BlockTable, doc.Blocks[i+1].Kind)
			return doc.Blocks[i+1].Table
		}
	}
	t.Fatalf("heading %q not found", heading)
	return nil
}
