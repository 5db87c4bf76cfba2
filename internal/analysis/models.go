package analysis

import (
	"fmt"
	"sort"
	"time"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
	"github.com/user/pq_analyzer_go/internal/parser"
)

// JoinedRecord is one positional sample across the five aligned tables.
type JoinedRecord struct {
	Index int // position after the unit row was dropped
	sets  *AlignedSet
}

// MeasurementSample holds the fundamentals and derived metrics of one sample.
type MeasurementSample struct {
	Index         int // source row, used to read the harmonic-percent tables
	I1, I2, I3    float64
	V12, V23, V31 float64
	THDV          float64
	THDI          float64
	IAvg          float64
	VAvg          float64
	PkW           float64
	TDD           float64
	Band          int // 0-based band index, -1 until classified
}

// LoadBand is a power interval [Lower, Upper); the last band also holds Upper.
type LoadBand struct {
	Index int
	Lower float64
	Upper float64
	Label string
}

// HarmonicRank is one ranked harmonic order inside a band.
type HarmonicRank struct {
	Order int
	Mean  float64 // percent of fundamental
}

// BandHarmonics is the per-band result of the ranker for one signal.
type BandHarmonics struct {
	Band     int
	Top      []HarmonicRank
	Spectrum map[int]float64 // mean per order, orders with no data omitted
}

// BandSummary is one row of the load-band table. Means are rounded to two
// decimals and NaN when the band is empty.
type BandSummary struct {
	Band         LoadBand
	Count        int
	Duration     time.Duration
	MeanIAvg     float64
	MeanVAvg     float64
	MeanTHDV     float64
	MeanTHDI     float64
	MeanTDD      float64
	TopCurrent   []HarmonicRank
	TopVoltage   []HarmonicRank
	CurrentLabel string // e.g. "H5 (4.32%); H7 (2.10%)"
	VoltageLabel string
}

// ComplianceRow compares a dataset-wide mean against a regulatory limit.
type ComplianceRow struct {
	Metric   string
	Observed float64 // rounded to two decimals
	Limit    float64
	Pass     bool
}

// AnalysisResults holds all results from the analysis.
type AnalysisResults struct {
	AlignedCount     int
	Samples          []MeasurementSample
	PeakCurrent      float64 // I_L
	PeakPower        float64 // P_max
	Bands            []LoadBand
	Summaries        []BandSummary
	Compliance       []ComplianceRow
	CurrentHarmonics []BandHarmonics
	VoltageHarmonics []BandHarmonics
	// SkippedOrders lists, per signal, harmonic orders whose channel columns
	// were absent from the percent table.
	SkippedOrders map[string][]int
	// Warnings collects recovered per-sample issues.
	Warnings []string
}

// NewAnalysisResults returns an empty result set.
func NewAnalysisResults() *AnalysisResults {
	return &AnalysisResults{
		Samples:       make([]MeasurementSample, 0),
		Bands:         make([]LoadBand, 0),
		Summaries:     make([]BandSummary, 0),
		Compliance:    make([]ComplianceRow, 0),
		SkippedOrders: make(map[string][]int),
		Warnings:      make([]string, 0),
	}
}

// UnavailableHarmonics returns one error per signal with skipped orders,
// sorted by signal. Each wraps pqerrors.ErrHarmonicUnavailable.
func (r *AnalysisResults) UnavailableHarmonics() []error {
	signals := make([]string, 0, len(r.SkippedOrders))
	for signal := range r.SkippedOrders {
		signals = append(signals, signal)
	}
	sort.Strings(signals)

	errs := make([]error, 0, len(signals))
	for _, signal := range signals {
		errs = append(errs, fmt.Errorf("%s orders %v: %w", signal, r.SkippedOrders[signal], pqerrors.ErrHarmonicUnavailable))
	}
	return errs
}

// AlignedSet is the five tables truncated to a common length.
type AlignedSet struct {
	N          int
	Current    *parser.Table
	Voltage    *parser.Table
	Recording  *parser.Table
	CurrentPct *parser.GroupedTable
	VoltagePct *parser.GroupedTable
}
