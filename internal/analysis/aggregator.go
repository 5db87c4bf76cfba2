package analysis

import (
	"time"

	"github.com/user/pq_analyzer_go/internal/config"
)

// Compliance metric names.
const (
	MetricVoltageTHD = "THD_V (%)"
	MetricTDD        = "TDD (%)"
)

// SummarizeBands emits one BandSummary per band in ascending power order.
func SummarizeBands(bands []LoadBand, samples []MeasurementSample, current, voltage *HarmonicRanking, interval time.Duration) []BandSummary {
	type acc struct{ iavg, vavg, thdv, thdi, tdd []float64 }
	per := make([]acc, len(bands))
	for _, s := range samples {
		if s.Band < 0 || s.Band >= len(bands) {
			continue
		}
		a := &per[s.Band]
		a.iavg = append(a.iavg, s.IAvg)
		a.vavg = append(a.vavg, s.VAvg)
		a.thdv = append(a.thdv, s.THDV)
		a.thdi = append(a.thdi, s.THDI)
		a.tdd = append(a.tdd, s.TDD)
	}

	out := make([]BandSummary, len(bands))
	for i, band := range bands {
		a := per[i]
		n := len(a.iavg)
		out[i] = BandSummary{
			Band:     band,
			Count:    n,
			Duration: time.Duration(n) * interval,
			MeanIAvg: round2(calculateMean(a.iavg)),
			MeanVAvg: round2(calculateMean(a.vavg)),
			MeanTHDV: round2(calculateMean(a.thdv)),
			MeanTHDI: round2(calculateMean(a.thdi)),
			MeanTDD:  round2(calculateMean(a.tdd)),
		}
		if current != nil && i < len(current.Bands) {
			out[i].TopCurrent = current.Bands[i].Top
			out[i].CurrentLabel = FormatHarmonics(current.Bands[i].Top)
		}
		if voltage != nil && i < len(voltage.Bands) {
			out[i].TopVoltage = voltage.Bands[i].Top
			out[i].VoltageLabel = FormatHarmonics(voltage.Bands[i].Top)
		}
	}
	return out
}

// CheckCompliance compares the dataset-wide means of THD_V and TDD with the
// configured limits. A metric passes when its unrounded mean is at most the
// limit.
func CheckCompliance(samples []MeasurementSample, limits config.LimitsConfig) []ComplianceRow {
	thdv := make([]float64, len(samples))
	tdd := make([]float64, len(samples))
	for i, s := range samples {
		thdv[i] = s.THDV
		tdd[i] = s.TDD
	}
	return []ComplianceRow{
		newComplianceRow(MetricVoltageTHD, calculateMean(thdv), limits.VoltageTHD),
		newComplianceRow(MetricTDD, calculateMean(tdd), limits.TDD),
	}
}

func newComplianceRow(metric string, mean, limit float64) ComplianceRow {
	return ComplianceRow{
		Metric:   metric,
		Observed: round2(mean),
		Limit:    limit,
		Pass:     mean <= limit, // NaN compares false
	}
}
