package analysis

import (
	"math"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
	"github.com/user/pq_analyzer_go/internal/parser"
)

// MetricSet is the output of ComputeMetrics.
type MetricSet struct {
	Samples     []MeasurementSample
	PeakCurrent float64 // I_L, max of I_avg over retained samples
	Dropped     []*pqerrors.CoercionError
}

type fieldSource struct {
	table  string
	column string
	get    func(JoinedRecord, string) (string, bool)
}

// ComputeMetrics coerces the fundamentals and THDs of every record, drops
// records with any missing field, derives I_avg, V_avg and P_kW, and then
// assigns TDD once the dataset-wide peak current I_L is known.
func ComputeMetrics(records []JoinedRecord) (*MetricSet, error) {
	sources := make([]fieldSource, 0, 12)
	add := func(table string, cols []string, get func(JoinedRecord, string) (string, bool)) {
		for _, c := range cols {
			sources = append(sources, fieldSource{table: table, column: c, get: get})
		}
	}
	add(parser.SheetCurrentRMS, CurrentColumns, JoinedRecord.Current)
	add(parser.SheetVoltageRMS, VoltageColumns, JoinedRecord.Voltage)
	add(parser.SheetRecording, VoltageTHDColumns, JoinedRecord.Recording)
	add(parser.SheetRecording, CurrentTHDColumns, JoinedRecord.Recording)

	set := &MetricSet{
		Samples: make([]MeasurementSample, 0, len(records)),
		Dropped: make([]*pqerrors.CoercionError, 0),
	}

	values := make([]float64, len(sources))
	for _, rec := range records {
		complete := true
		for i, src := range sources {
			raw, _ := src.get(rec, src.column)
			v, ok := parseNumeric(raw)
			if !ok {
				set.Dropped = append(set.Dropped, &pqerrors.CoercionError{Table: src.table, Column: src.column, Row: rec.SheetRow(), Value: raw})
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}
		set.Samples = append(set.Samples, newSample(rec.Index, values))
	}

	if len(set.Samples) == 0 {
		return nil, &pqerrors.DegenerateDatasetError{Reason: "no sample has all required fields numeric"}
	}

	currents := make([]float64, len(set.Samples))
	for i, s := range set.Samples {
		currents[i] = s.IAvg
	}
	set.PeakCurrent = calculateMax(currents)
	if set.PeakCurrent <= 0 {
		return nil, &pqerrors.DegenerateDatasetError{Reason: "peak demand current I_L is zero, TDD is undefined"}
	}

	for i := range set.Samples {
		s := &set.Samples[i]
		s.TDD = s.THDI * (s.IAvg / set.PeakCurrent)
	}
	return set, nil
}

// newSample expects values in the order built by ComputeMetrics.
func newSample(index int, v []float64) MeasurementSample {
	s := MeasurementSample{
		Index: index,
		I1:    v[0], I2: v[1], I3: v[2],
		V12: v[3], V23: v[4], V31: v[5],
		THDV: (v[6] + v[7] + v[8]) / 3,
		THDI: (v[9] + v[10] + v[11]) / 3,
		Band: -1,
	}
	s.IAvg = (s.I1 + s.I2 + s.I3) / 3
	s.VAvg = (s.V12 + s.V23 + s.V31) / 3
	s.PkW = math.Sqrt(3) * s.VAvg * s.IAvg / 1000
	return s
}
