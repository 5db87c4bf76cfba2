package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/user/pq_analyzer_go/internal/parser"
)

// HarmonicRanking is the ranker's output for one signal.
type HarmonicRanking struct {
	Signal  string
	Bands   []BandHarmonics
	Skipped []int // orders whose channels are absent from the table
}

// harmonicSeries holds, per available order, one value per sample (NaN when
// no channel of that sample coerced).
type harmonicSeries struct {
	orders []int
	values map[int][]float64
}

// buildSeries averages the channels of each order for every sample. The
// sample's source Index selects the table row.
func buildSeries(table *parser.GroupedTable, schema HarmonicSchema, samples []MeasurementSample) (harmonicSeries, []int) {
	series := harmonicSeries{values: make(map[int][]float64)}
	skipped := make([]int, 0)
	// When no order is present at all, group is "" and every lookup misses.
	group, _ := schema.Group(table)

	for h := schema.MinOrder; h <= schema.MaxOrder; h++ {
		cols, ok := schema.Columns(table, group, h)
		if !ok {
			skipped = append(skipped, h)
			continue
		}
		vals := make([]float64, len(samples))
		for i, s := range samples {
			sum, n := 0.0, 0
			for _, c := range cols {
				if v, ok := parseNumeric(table.Cell(s.Index, c)); ok {
					sum += v
					n++
				}
			}
			if n == 0 {
				vals[i] = math.NaN()
			} else {
				vals[i] = sum / float64(n)
			}
		}
		series.orders = append(series.orders, h)
		series.values[h] = vals
	}
	return series, skipped
}

// RankHarmonics computes, for each band, the mean magnitude of every
// available harmonic order over the band's samples and keeps the topN
// largest. Bands are reduced concurrently; each goroutine writes only its
// own slot, so the result does not depend on scheduling.
func RankHarmonics(ctx context.Context, table *parser.GroupedTable, schema HarmonicSchema, bands []LoadBand, samples []MeasurementSample, topN int) (*HarmonicRanking, error) {
	if table == nil {
		return nil, fmt.Errorf("%s harmonic table is nil", schema.Signal)
	}
	series, skipped := buildSeries(table, schema, samples)

	members := make([][]int, len(bands))
	for i, s := range samples {
		if s.Band >= 0 && s.Band < len(bands) {
			members[s.Band] = append(members[s.Band], i)
		}
	}

	result := &HarmonicRanking{
		Signal:  schema.Signal,
		Bands:   make([]BandHarmonics, len(bands)),
		Skipped: skipped,
	}

	g, ctx := errgroup.WithContext(ctx)
	for b := range bands {
		b := b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.Bands[b] = rankBand(b, series, members[b], topN)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func rankBand(band int, series harmonicSeries, members []int, topN int) BandHarmonics {
	bh := BandHarmonics{Band: band, Spectrum: make(map[int]float64)}
	ranked := make([]HarmonicRank, 0, len(series.orders))

	for _, h := range series.orders {
		vals := series.values[h]
		present := make([]float64, 0, len(members))
		for _, i := range members {
			if !math.IsNaN(vals[i]) {
				present = append(present, vals[i])
			}
		}
		if len(present) == 0 {
			continue
		}
		m := calculateMean(present)
		bh.Spectrum[h] = m
		ranked = append(ranked, HarmonicRank{Order: h, Mean: m})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Mean != ranked[j].Mean {
			return ranked[i].Mean > ranked[j].Mean // Descending
		}
		return ranked[i].Order < ranked[j].Order
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	bh.Top = ranked
	return bh
}

// FormatHarmonics renders a ranking as "H5 (4.32%); H7 (2.10%)".
func FormatHarmonics(ranks []HarmonicRank) string {
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = fmt.Sprintf("H%d (%.2f%%)", r.Order, r.Mean)
	}
	return strings.Join(parts, "; ")
}
