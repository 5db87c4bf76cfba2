package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/user/pq_analyzer_go/internal/parser"
	"github.com/user/pq_analyzer_go/internal/testutil"
)

func TestWriteWorkbookReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "export.xlsx")
	output := filepath.Join(dir, "report.xlsx")
	require.NoError(t, testutil.WriteWorkbook(input, testSamples(), testOrders, "PEL 8336"))

	results := analyzedResults(t)
	doc := BuildDocument(results, &Instrument{Label: "Model", Value: "PEL 8336"})
	require.NoError(t, WriteWorkbookReport(input, output, doc))

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.NotEmpty(t, sheets)
	assert.Equal(t, ReportSheet, sheets[0])
	assert.Contains(t, sheets, parser.SheetCurrentRMS)
	assert.Contains(t, sheets, parser.SheetConfigInfo)
	assert.Equal(t, 0, f.GetActiveSheetIndex())

	title, err := f.GetCellValue(ReportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, TitleText, title)

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	header := -1
	for i, row := range rows {
		if len(row) > 0 && row[0] == SummaryColumns[0] {
			header = i
			break
		}
	}
	require.GreaterOrEqual(t, header, 0, "summary header not written")
	assert.Equal(t, SummaryColumns, rows[header])
	first := rows[header+1]
	assert.Equal(t, results.Bands[0].Label, first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "2", first[2])

	var verdicts []string
	for _, row := range rows {
		if len(row) == 4 && (row[3] == "Sim" || row[3] == "Não") {
			verdicts = append(verdicts, row[3])
		}
	}
	assert.Equal(t, []string{"Sim", "Sim"}, verdicts)

	// The source workbook is untouched.
	src, err := excelize.OpenFile(input)
	require.NoError(t, err)
	defer src.Close()
	assert.NotContains(t, src.GetSheetList(), ReportSheet)
}

func TestWriteWorkbookReportReplacesExistingSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "export.xlsx")
	once := filepath.Join(dir, "once.xlsx")
	twice := filepath.Join(dir, "twice.xlsx")
	require.NoError(t, testutil.WriteWorkbook(input, testSamples(), testOrders, ""))

	doc := BuildDocument(failingResults(), nil)
	require.NoError(t, WriteWorkbookReport(input, once, doc))
	require.NoError(t, WriteWorkbookReport(once, twice, doc))

	f, err := excelize.OpenFile(twice)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	for _, name := range f.GetSheetList() {
		if name == ReportSheet {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, ReportSheet, f.GetSheetList()[0])
}

func TestWriteWorkbookReportMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := WriteWorkbookReport(filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.xlsx"), &Document{})
	assert.Error(t, err)
}
