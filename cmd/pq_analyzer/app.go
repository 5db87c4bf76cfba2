package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/user/pq_analyzer_go/internal/analysis"
	"github.com/user/pq_analyzer_go/internal/config"
	"github.com/user/pq_analyzer_go/internal/parser"
	"github.com/user/pq_analyzer_go/internal/report"
)

// App runs one report generation.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewApp creates a new App with the given configuration and logger.
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

func (a *App) sendStatus(message string, fields ...zap.Field) {
	a.logger.Info(message, fields...)
}

func (a *App) sendWarning(message string, fields ...zap.Field) {
	a.logger.Warn(message, fields...)
}

// GenerateReport parses inputPath, analyzes it and writes the report to
// outputPath. Nothing is written when any step before the emitter fails.
func (a *App) GenerateReport(ctx context.Context, inputPath, outputPath string) error {
	a.sendStatus("Request", zap.String("input", inputPath), zap.String("output", outputPath))

	format, err := report.FormatOf(outputPath)
	if err != nil {
		return err
	}
	if sameFile(inputPath, outputPath) {
		return fmt.Errorf("output %q would overwrite the input workbook", outputPath)
	}

	a.sendStatus("Parsing workbook", zap.String("path", inputPath))
	set, err := parser.ParseWorkbook(inputPath)
	if err != nil {
		return fmt.Errorf("error parsing workbook: %w", err)
	}
	for _, w := range set.ParseWarnings {
		a.sendWarning(w)
	}

	a.sendStatus("Analyzing data",
		zap.Int("band_count", a.cfg.Analysis.BandCount),
		zap.Duration("sample_interval", a.cfg.Analysis.SampleInterval))
	results, err := analysis.AnalyzePowerQuality(ctx, set, a.cfg.Analysis)
	if err != nil {
		return fmt.Errorf("error analyzing data: %w", err)
	}
	a.sendStatus("Analysis complete",
		zap.Int("aligned", results.AlignedCount),
		zap.Int("retained", len(results.Samples)),
		zap.Float64("peak_current_a", results.PeakCurrent),
		zap.Float64("peak_power_kw", results.PeakPower))
	for _, w := range results.Warnings {
		a.sendWarning(w)
	}
	for _, e := range results.UnavailableHarmonics() {
		a.sendWarning("Harmonic orders unavailable", zap.Error(e))
	}
	for _, row := range results.Compliance {
		a.sendStatus("Compliance", zap.String("metric", row.Metric),
			zap.Float64("observed", row.Observed), zap.Float64("limit", row.Limit), zap.Bool("pass", row.Pass))
	}

	var instrument *report.Instrument
	if label, value, ok := set.Model(); ok {
		instrument = &report.Instrument{Label: label, Value: value}
	}
	doc := report.BuildDocument(results, instrument)

	var plots map[string][]byte
	if format == report.FormatPDF {
		a.sendStatus("Generating plots...")
		var errs []error
		plots, errs = report.RenderPlots(results, a.cfg.Analysis.Limits)
		for _, e := range errs {
			a.sendWarning("Plot skipped", zap.Error(e))
		}
	}

	a.sendStatus("Writing report", zap.String("path", outputPath), zap.String("format", string(format)))
	if err := report.Emit(inputPath, outputPath, doc, plots); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	a.sendStatus("Report successfully generated", zap.String("path", outputPath))
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
