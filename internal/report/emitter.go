package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/pq_analyzer_go/internal/analysis"
	"github.com/user/pq_analyzer_go/internal/config"
)

// Format is an output kind selected from the output file extension.
type Format string

const (
	FormatWorkbook Format = ".xlsx"
	FormatPDF      Format = ".pdf"
)

// FormatOf returns the output format for path, or an error for an
// unsupported extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case string(FormatWorkbook):
		return FormatWorkbook, nil
	case string(FormatPDF):
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q (want .xlsx or .pdf)", ext)
	}
}

// RenderPlots draws every report plot it can. A plot that cannot be drawn,
// for instance a spectrum with no harmonic columns, is left out and its
// error returned alongside the others.
func RenderPlots(results *analysis.AnalysisResults, limits config.LimitsConfig) (map[string][]byte, []error) {
	plots := make(map[string][]byte)
	var errs []error

	add := func(key string, img []byte, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		plots[key] = img
	}

	img, err := CreateTHDBarPlot(results, limits.VoltageTHD)
	add(PlotTHDBar, img, err)
	img, err = CreateSpectrumLinePlot(results, analysis.CurrentHarmonics.Signal)
	add(PlotCurrentSpectrum, img, err)
	img, err = CreateSpectrumLinePlot(results, analysis.VoltageHarmonics.Signal)
	add(PlotVoltageSpectrum, img, err)
	img, err = CreateSpectrumHeatmap(results, analysis.CurrentHarmonics.Signal)
	add(PlotCurrentHeatmap, img, err)

	return plots, errs
}

// Emit writes doc to outputPath in the format named by its extension. The
// workbook format copies inputPath; plots are used by the PDF format only.
func Emit(inputPath, outputPath string, doc *Document, plots map[string][]byte) error {
	format, err := FormatOf(outputPath)
	if err != nil {
		return err
	}
	switch format {
	case FormatWorkbook:
		return WriteWorkbookReport(inputPath, outputPath, doc)
	default:
		return BuildPDFReport(outputPath, doc, plots)
	}
}
