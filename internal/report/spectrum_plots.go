package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/pq_analyzer_go/internal/analysis"
)

var bandColors = []color.Color{
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // green
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}, // blue
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // orange
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // red
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255}, // purple
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 255}, // brown
}

func bandHarmonics(results *analysis.AnalysisResults, signal string) ([]analysis.BandHarmonics, error) {
	switch signal {
	case analysis.CurrentHarmonics.Signal:
		return results.CurrentHarmonics, nil
	case analysis.VoltageHarmonics.Signal:
		return results.VoltageHarmonics, nil
	default:
		return nil, fmt.Errorf("unknown harmonic signal: %s", signal)
	}
}

func bandLabel(results *analysis.AnalysisResults, band int) string {
	if band >= 0 && band < len(results.Bands) {
		return results.Bands[band].Label
	}
	return fmt.Sprintf("Faixa %d", band+1)
}

// spectrumOrders returns every order with data in any band, ascending.
func spectrumOrders(bands []analysis.BandHarmonics) []int {
	seen := make(map[int]bool)
	for _, b := range bands {
		for order := range b.Spectrum {
			seen[order] = true
		}
	}
	orders := make([]int, 0, len(seen))
	for order := range seen {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	return orders
}

// CreateSpectrumLinePlot draws the mean harmonic spectrum of one signal
// ("current" or "voltage"), one line per load band.
func CreateSpectrumLinePlot(results *analysis.AnalysisResults, signal string) ([]byte, error) {
	if results == nil {
		return nil, fmt.Errorf("no analysis results to plot")
	}
	bands, err := bandHarmonics(results, signal)
	if err != nil {
		return nil, err
	}
	orders := spectrumOrders(bands)
	if len(orders) == 0 {
		return nil, fmt.Errorf("no %s harmonic data to plot", signal)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Espectro harmônico médio (%s) por Faixa", signalName(signal))
	p.X.Label.Text = "Ordem harmônica"
	p.Y.Label.Text = "% da fundamental"
	p.X.Min = float64(orders[0]) - 1
	p.X.Max = float64(orders[len(orders)-1]) + 1
	p.Y.Min = 0
	p.X.Tick.Marker = plot.ConstantTicks(orderTicks(orders, 5))
	p.Add(plotter.NewGrid())

	for i, b := range bands {
		pts := make(plotter.XYs, 0, len(b.Spectrum))
		for _, order := range orders {
			v, ok := b.Spectrum[order]
			if !ok || math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(order), Y: v})
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for band %d: %v", b.Band, err)
		}
		c := bandColors[i%len(bandColors)]
		line.Color = c
		line.LineStyle.Width = vg.Points(1.5)
		points.Color = c
		points.Radius = vg.Points(2)
		p.Add(line, points)
		p.Legend.Add(bandLabel(results, b.Band), line, points)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	return renderPNG(p, 800, 400)
}

// spectrumGrid is a band × order grid for the heat map. Columns are orders,
// rows are bands; missing cells are NaN.
type spectrumGrid struct {
	orders []int
	bands  []analysis.BandHarmonics
}

func (g spectrumGrid) Dims() (c, r int) { return len(g.orders), len(g.bands) }

func (g spectrumGrid) Z(c, r int) float64 {
	if v, ok := g.bands[r].Spectrum[g.orders[c]]; ok {
		return v
	}
	return math.NaN()
}

func (g spectrumGrid) X(c int) float64 { return float64(g.orders[c]) }
func (g spectrumGrid) Y(r int) float64 { return float64(r) }

// CreateSpectrumHeatmap draws the mean spectrum of one signal as a heat map
// with load bands on the Y axis.
func CreateSpectrumHeatmap(results *analysis.AnalysisResults, signal string) ([]byte, error) {
	if results == nil {
		return nil, fmt.Errorf("no analysis results to plot heatmap")
	}
	bands, err := bandHarmonics(results, signal)
	if err != nil {
		return nil, err
	}
	orders := spectrumOrders(bands)
	if len(orders) == 0 {
		return nil, fmt.Errorf("no %s harmonic data to plot", signal)
	}
	grid := spectrumGrid{orders: orders, bands: bands}

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.NaN = color.Gray{Y: 200}
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Mapa de calor do espectro (%s)", signalName(signal))
	p.X.Label.Text = "Ordem harmônica"
	p.Y.Label.Text = "Faixa de carga"
	p.X.Tick.Marker = plot.ConstantTicks(orderTicks(orders, 5))

	yTicks := make([]plot.Tick, len(bands))
	for i, b := range bands {
		yTicks[i] = plot.Tick{Value: float64(i), Label: bandLabel(results, b.Band)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Add(hm)

	return renderPNG(p, 1000, 400)
}

func orderTicks(orders []int, step int) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(orders)/step+2)
	for _, order := range orders {
		if order%step == 0 || order == orders[0] || order == orders[len(orders)-1] {
			ticks = append(ticks, plot.Tick{Value: float64(order), Label: fmt.Sprintf("%d", order)})
		}
	}
	return ticks
}

func signalName(signal string) string {
	if signal == analysis.VoltageHarmonics.Signal {
		return "tensão"
	}
	return "corrente"
}
