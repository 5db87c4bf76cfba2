package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/pq_analyzer_go/internal/analysis"
)

var (
	colorTHDV  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	colorTHDI  = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}
	colorLimit = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}
)

// CreateTHDBarPlot draws mean THD_V and THD_I side by side for each load
// band, with the voltage THD limit as a dashed line. Empty bands are drawn at
// zero.
func CreateTHDBarPlot(results *analysis.AnalysisResults, voltageLimit float64) ([]byte, error) {
	if results == nil || len(results.Summaries) == 0 {
		return nil, fmt.Errorf("no band summaries to plot")
	}

	thdv := make(plotter.Values, len(results.Summaries))
	thdi := make(plotter.Values, len(results.Summaries))
	labels := make([]string, len(results.Summaries))
	for i, s := range results.Summaries {
		thdv[i] = zeroIfNaN(s.MeanTHDV)
		thdi[i] = zeroIfNaN(s.MeanTHDI)
		labels[i] = s.Band.Label
	}

	p := plot.New()
	p.Title.Text = "THD médio por Faixa de Carga"
	p.Y.Label.Text = "THD (%)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	w := vg.Points(20)
	barsV, err := plotter.NewBarChart(thdv, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create THD_V bars: %v", err)
	}
	barsV.Color = colorTHDV
	barsV.LineStyle.Width = vg.Length(0)
	barsV.Offset = -w / 2

	barsI, err := plotter.NewBarChart(thdi, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create THD_I bars: %v", err)
	}
	barsI.Color = colorTHDI
	barsI.LineStyle.Width = vg.Length(0)
	barsI.Offset = w / 2

	p.Add(barsV, barsI)
	p.Legend.Add("THD_V", barsV)
	p.Legend.Add("THD_I", barsI)

	if voltageLimit > 0 {
		limit, err := plotter.NewLine(plotter.XYs{
			{X: -0.5, Y: voltageLimit},
			{X: float64(len(labels)) - 0.5, Y: voltageLimit},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create limit line: %v", err)
		}
		limit.Color = colorLimit
		limit.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(limit)
		p.Legend.Add(fmt.Sprintf("Limite THD_V (%s)", LimitText(voltageLimit)), limit)
	}

	p.NominalX(labels...)
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	return renderPNG(p, 800, 400)
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// renderPNG encodes a plot as PNG bytes of the given size in points.
func renderPNG(p *plot.Plot, width, height float64) ([]byte, error) {
	writer, err := p.WriterTo(vg.Points(width), vg.Points(height), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
