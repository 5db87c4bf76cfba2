package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// Plot keys understood by BuildPDFReport.
const (
	PlotTHDBar          = "bar_thd"
	PlotCurrentSpectrum = "line_spectrum_current"
	PlotVoltageSpectrum = "line_spectrum_voltage"
	PlotCurrentHeatmap  = "heatmap_spectrum_current"
)

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	tr          func(string) string
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 8)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 8)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // failed verdicts
		s.pdf.SetFont("Arial", "B", 8)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

// text converts to the core-font code page. "≤" has no cp1252 glyph.
func (s *pdfStyler) text(v string) string {
	return s.tr(strings.ReplaceAll(v, "≤", "<="))
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(s.text(text)), pdfContentWidth)
	s.checkAddPage(math.Max(1, float64(len(lines))) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.text(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// writeTable draws a bordered table. Rows that do not fit in one cell line
// grow to the tallest wrapped cell.
func (s *pdfStyler) writeTable(t *TableBlock) {
	widths := make([]float64, len(t.Header))
	for i := range t.Header {
		rel := 1 / float64(len(t.Header))
		if i < len(t.Widths) {
			rel = t.Widths[i]
		}
		widths[i] = rel * pdfContentWidth
	}

	s.writeTableRow(t.Header, widths, nil, true)
	for _, row := range t.Rows {
		values := make([]string, len(row))
		alerts := make([]bool, len(row))
		for i, c := range row {
			values[i] = c.String()
			alerts[i] = c.Alert
		}
		s.writeTableRow(values, widths, alerts, false)
	}
}

func (s *pdfStyler) writeTableRow(values []string, widths []float64, alerts []bool, header bool) {
	cellHeight := s.lineHeight - 1
	lines := 1
	for i, v := range values {
		if i >= len(widths) {
			break
		}
		if n := len(s.pdf.SplitLines([]byte(s.text(v)), widths[i]-2)); n > lines {
			lines = n
		}
	}
	rowHeight := float64(lines) * cellHeight
	s.checkAddPage(rowHeight)

	x := pdfMargin
	for i, v := range values {
		if i >= len(widths) {
			break
		}
		switch {
		case header:
			s.applyStyle("tableHeader")
		case alerts != nil && alerts[i]:
			s.applyStyle("tableCellRed")
		default:
			s.applyStyle("tableCell")
		}
		style := "D"
		if header {
			style = "FD"
		}
		s.pdf.Rect(x, s.currentY, widths[i], rowHeight, style)
		s.pdf.SetXY(x, s.currentY)
		s.pdf.MultiCell(widths[i], cellHeight, s.text(v), "", "C", false)
		x += widths[i]
	}
	s.currentY += rowHeight
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		height *= pdfContentWidth / width
		width = pdfContentWidth
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// BuildPDFReport writes doc and the given plots to a landscape PDF file.
func BuildPDFReport(filepath string, doc *Document, plotImages map[string][]byte) error {
	pdf := renderPDF(doc, plotImages)
	if err := pdf.OutputFileAndClose(filepath); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

// WritePDFReport is BuildPDFReport for an arbitrary writer.
func WritePDFReport(w io.Writer, doc *Document, plotImages map[string][]byte) error {
	pdf := renderPDF(doc, plotImages)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

func renderPDF(doc *Document, plotImages map[string][]byte) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(TitleText, true)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	for _, b := range doc.Blocks {
		switch b.Kind {
		case BlockTitle:
			styler.writeParagraph(b.Text, "h1", "C")
		case BlockHeading:
			styler.writeParagraph(b.Text, "h2", "L")
		case BlockParagraph:
			styler.writeParagraph(b.Text, "normal", "L")
		case BlockBlank:
			styler.addSpacer(3)
		case BlockTable:
			styler.writeTable(b.Table)
		}
	}

	plotDefs := []struct {
		Key     string
		Caption string
		Ratio   float64
	}{
		{PlotTHDBar, "THD_V e THD_I médios por faixa de carga", 0.5},
		{PlotCurrentSpectrum, "Espectro harmônico médio de corrente por faixa", 0.5},
		{PlotVoltageSpectrum, "Espectro harmônico médio de tensão por faixa", 0.5},
		{PlotCurrentHeatmap, "Mapa de calor do espectro de corrente", 0.4},
	}

	imgWidth := pdfContentWidth * 0.8
	first := true
	for _, pDef := range plotDefs {
		imgBytes, ok := plotImages[pDef.Key]
		if !ok || len(imgBytes) == 0 {
			continue
		}
		if first {
			styler.pdf.AddPage()
			styler.currentY = styler.contentTopY
			styler.writeParagraph("Análise Gráfica", "h1", "C")
			styler.addSpacer(3)
			first = false
		}
		styler.addImage(imgBytes, pDef.Key, imgWidth, imgWidth*pDef.Ratio, pDef.Caption)
	}

	return pdf
}
