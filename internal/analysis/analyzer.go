package analysis

import (
	"context"
	"fmt"

	"github.com/user/pq_analyzer_go/internal/config"
	"github.com/user/pq_analyzer_go/internal/parser"
)

// AnalyzePowerQuality runs align → metrics → bands → harmonics → aggregate.
// Any fatal error aborts the run and no partial results are returned.
func AnalyzePowerQuality(ctx context.Context, set *parser.TableSet, cfg config.AnalysisConfig) (*AnalysisResults, error) {
	aligned, err := AlignTables(set)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}

	metrics, err := ComputeMetrics(aligned.Records())
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bands, samples, err := ClassifyLoadBands(metrics.Samples, cfg.BandCount)
	if err != nil {
		return nil, fmt.Errorf("load bands: %w", err)
	}

	currentSchema := CurrentHarmonics.WithOrders(cfg.MinHarmonic, cfg.MaxHarmonic)
	voltageSchema := VoltageHarmonics.WithOrders(cfg.MinHarmonic, cfg.MaxHarmonic)

	current, err := RankHarmonics(ctx, aligned.CurrentPct, currentSchema, bands, samples, cfg.TopHarmonics)
	if err != nil {
		return nil, fmt.Errorf("rank current harmonics: %w", err)
	}
	voltage, err := RankHarmonics(ctx, aligned.VoltagePct, voltageSchema, bands, samples, cfg.TopHarmonics)
	if err != nil {
		return nil, fmt.Errorf("rank voltage harmonics: %w", err)
	}

	results := NewAnalysisResults()
	results.AlignedCount = aligned.N
	results.Samples = samples
	results.PeakCurrent = metrics.PeakCurrent
	results.PeakPower = bands[len(bands)-1].Upper
	results.Bands = bands
	results.CurrentHarmonics = current.Bands
	results.VoltageHarmonics = voltage.Bands
	results.Summaries = SummarizeBands(bands, samples, current, voltage, cfg.SampleInterval)
	results.Compliance = CheckCompliance(samples, cfg.Limits)

	for _, d := range metrics.Dropped {
		results.Warnings = append(results.Warnings, "sample dropped: "+d.Error())
	}
	if len(current.Skipped) > 0 {
		results.SkippedOrders[current.Signal] = current.Skipped
	}
	if len(voltage.Skipped) > 0 {
		results.SkippedOrders[voltage.Signal] = voltage.Skipped
	}
	return results, nil
}
