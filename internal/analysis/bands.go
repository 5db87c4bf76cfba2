package analysis

import (
	"fmt"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
)

// BuildLoadBands splits [0, peakPower] into count equal-width bands.
// Labels carry the bounds rounded to whole kW, e.g. "0–250 kW".
func BuildLoadBands(peakPower float64, count int) ([]LoadBand, error) {
	if count < 1 {
		return nil, fmt.Errorf("band count must be positive, got %d", count)
	}
	if !(peakPower > 0) {
		return nil, &pqerrors.DegenerateDatasetError{Reason: fmt.Sprintf("peak real power is %g kW, load bands collapse", peakPower)}
	}

	bounds := make([]float64, count+1)
	for k := range bounds {
		bounds[k] = float64(k) / float64(count) * peakPower
	}
	bounds[count] = peakPower

	bands := make([]LoadBand, count)
	for i := range bands {
		bands[i] = LoadBand{
			Index: i,
			Lower: bounds[i],
			Upper: bounds[i+1],
			Label: fmt.Sprintf("%.0f–%.0f kW", bounds[i], bounds[i+1]),
		}
	}
	return bands, nil
}

// bandOf returns the band holding p. Values below zero fall in the first
// band; the last band is closed on the right.
func bandOf(bands []LoadBand, p float64) int {
	for i := len(bands) - 1; i > 0; i-- {
		if p >= bands[i].Lower {
			return i
		}
	}
	return 0
}

// ClassifyLoadBands computes P_max over the samples, builds the bands and
// returns a copy of the samples with Band assigned.
func ClassifyLoadBands(samples []MeasurementSample, count int) ([]LoadBand, []MeasurementSample, error) {
	if len(samples) == 0 {
		return nil, nil, &pqerrors.DegenerateDatasetError{Reason: "no samples to classify"}
	}
	powers := make([]float64, len(samples))
	for i, s := range samples {
		powers[i] = s.PkW
	}

	bands, err := BuildLoadBands(calculateMax(powers), count)
	if err != nil {
		return nil, nil, err
	}

	out := make([]MeasurementSample, len(samples))
	for i, s := range samples {
		s.Band = bandOf(bands, s.PkW)
		out[i] = s
	}
	return bands, out, nil
}
