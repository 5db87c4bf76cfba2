package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/user/pq_analyzer_go/internal/analysis"
)

// Sheet and section texts of the generated report.
const (
	ReportSheet     = "Relatório"
	TitleText       = "Relatório de Qualidade de Energia - Harmônicos"
	ObjectiveText   = "Objetivo:"
	SummaryHeading  = "Resumo por Faixa de Carga"
	CompliantHeader = "Comparação com IEEE 519-2014"
	CrossHeading    = "Tabela Resumida: THD_V e THD_I por Faixa"
	ConclusionText  = "Conclusão:"
)

// SummaryColumns is the header of the load-band table.
var SummaryColumns = []string{
	"Faixa (kW)", "Medições", "Duração (min)", "I_fund médio (A)", "V_fund médio (V)",
	"THD_V médio (%)", "THD_I médio (%)", "TDD médio (%)", "Top 3 Harm I (%)", "Top 3 Harm V (%)",
}

// ComplianceColumns is the header of the IEEE 519 comparison table.
var ComplianceColumns = []string{"Métrica", "Valor médio", "Limite IEEE 519", "Conforme?"}

// BlockKind says how a block is rendered.
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockTable
	BlockBlank
)

// Cell is one table value. Value is a string, int, float64 or nil (blank).
type Cell struct {
	Value interface{}
	Alert bool // rendered in red, e.g. a failed verdict
}

// String formats the cell for text outputs.
func (c Cell) String() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// TableBlock is a header plus rows.
type TableBlock struct {
	Header []string
	Rows   [][]Cell
	// Widths are relative column widths for fixed-layout outputs.
	Widths []float64
}

// Block is one element of the report, in order.
type Block struct {
	Kind  BlockKind
	Text  string
	Table *TableBlock
}

// Document is the ordered list of report blocks.
type Document struct {
	Blocks []Block
}

func (d *Document) add(kind BlockKind, text string) {
	d.Blocks = append(d.Blocks, Block{Kind: kind, Text: text})
}

func (d *Document) addTable(t *TableBlock) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockTable, Table: t})
}

// Instrument identifies the measured instrument in the objective line.
type Instrument struct {
	Label string
	Value string
}

// BuildDocument lays out the analysis results. instrument may be nil, in
// which case the objective line is omitted.
func BuildDocument(results *analysis.AnalysisResults, instrument *Instrument) *Document {
	doc := &Document{}
	doc.add(BlockTitle, TitleText)
	doc.add(BlockBlank, "")
	doc.add(BlockHeading, ObjectiveText)
	if instrument != nil {
		doc.add(BlockParagraph, fmt.Sprintf("Analisar medições com %s: %s", instrument.Label, instrument.Value))
	}
	doc.add(BlockBlank, "")

	doc.add(BlockHeading, SummaryHeading)
	doc.addTable(summaryTable(results.Summaries))
	doc.add(BlockBlank, "")

	doc.add(BlockHeading, CompliantHeader)
	doc.addTable(complianceTable(results.Compliance))
	doc.add(BlockBlank, "")

	doc.add(BlockHeading, CrossHeading)
	doc.addTable(crossTable(results.Summaries))
	doc.add(BlockBlank, "")

	doc.add(BlockHeading, ConclusionText)
	for _, line := range conclusion(results.Compliance) {
		doc.add(BlockParagraph, line)
	}
	return doc
}

func number(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{Value: v}
}

func minutes(d time.Duration) Cell {
	if d%time.Minute == 0 {
		return Cell{Value: int(d / time.Minute)}
	}
	return Cell{Value: d.Minutes()}
}

func summaryTable(summaries []analysis.BandSummary) *TableBlock {
	t := &TableBlock{
		Header: SummaryColumns,
		Widths: []float64{0.09, 0.06, 0.06, 0.08, 0.08, 0.07, 0.07, 0.07, 0.21, 0.21},
	}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []Cell{
			{Value: s.Band.Label},
			{Value: s.Count},
			minutes(s.Duration),
			number(s.MeanIAvg),
			number(s.MeanVAvg),
			number(s.MeanTHDV),
			number(s.MeanTHDI),
			number(s.MeanTDD),
			{Value: s.CurrentLabel},
			{Value: s.VoltageLabel},
		})
	}
	return t
}

// LimitText renders a limit the way the comparison table shows it.
func LimitText(limit float64) string {
	return fmt.Sprintf("≤ %s %%", strconv.FormatFloat(limit, 'f', -1, 64))
}

// Verdict renders a pass/fail flag.
func Verdict(pass bool) string {
	if pass {
		return "Sim"
	}
	return "Não"
}

func complianceTable(rows []analysis.ComplianceRow) *TableBlock {
	t := &TableBlock{Header: ComplianceColumns, Widths: []float64{0.3, 0.2, 0.3, 0.2}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []Cell{
			{Value: r.Metric},
			number(r.Observed),
			{Value: LimitText(r.Limit)},
			{Value: Verdict(r.Pass), Alert: !r.Pass},
		})
	}
	return t
}

func crossTable(summaries []analysis.BandSummary) *TableBlock {
	header := []string{"Faixa"}
	thdv := []Cell{{Value: "THD_V médio (%)"}}
	thdi := []Cell{{Value: "THD_I médio (%)"}}
	for _, s := range summaries {
		header = append(header, s.Band.Label)
		thdv = append(thdv, number(s.MeanTHDV))
		thdi = append(thdi, number(s.MeanTHDI))
	}
	widths := make([]float64, len(header))
	for i := range widths {
		widths[i] = 1 / float64(len(header))
	}
	return &TableBlock{Header: header, Rows: [][]Cell{thdv, thdi}, Widths: widths}
}

func conclusion(rows []analysis.ComplianceRow) []string {
	failed := make([]string, 0)
	for _, r := range rows {
		if !r.Pass {
			failed = append(failed, fmt.Sprintf("- %s médio de %.2f%% excede o limite IEEE 519-2014 (%s).",
				strings.TrimSuffix(r.Metric, " (%)"), r.Observed, LimitText(r.Limit)))
		}
	}
	if len(failed) == 0 {
		return []string{"- Todos os níveis de carga apresentaram THD_V e TDD dentro dos limites IEEE 519-2014."}
	}
	return failed
}
