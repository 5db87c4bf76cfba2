package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbookReport copies the input workbook to outputPath with the report
// inserted as the first, active sheet. The input file is not modified.
func WriteWorkbookReport(inputPath, outputPath string, doc *Document) error {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if err := writeReportSheet(f, doc); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save report workbook: %w", err)
	}
	return nil
}

func writeReportSheet(f *excelize.File, doc *Document) error {
	if idx, _ := f.GetSheetIndex(ReportSheet); idx >= 0 {
		if err := f.DeleteSheet(ReportSheet); err != nil {
			return fmt.Errorf("failed to replace existing report sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(ReportSheet); err != nil {
		return fmt.Errorf("failed to create report sheet: %w", err)
	}
	if first := f.GetSheetName(0); first != ReportSheet {
		if err := f.MoveSheet(ReportSheet, first); err != nil {
			return fmt.Errorf("failed to move report sheet: %w", err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	headingStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C8C8C8"}},
	})
	if err != nil {
		return err
	}
	alertStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "C80000"}})
	if err != nil {
		return err
	}

	row := 1
	writeRow := func(values []interface{}, style int) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReportSheet, cell, &values); err != nil {
			return err
		}
		if style != 0 && len(values) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(ReportSheet, cell, last, style); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	for _, b := range doc.Blocks {
		var err error
		switch b.Kind {
		case BlockTitle:
			err = writeRow([]interface{}{b.Text}, titleStyle)
		case BlockHeading:
			err = writeRow([]interface{}{b.Text}, headingStyle)
		case BlockParagraph:
			err = writeRow([]interface{}{b.Text}, 0)
		case BlockBlank:
			row++
		case BlockTable:
			err = writeTable(f, b.Table, &row, headerStyle, alertStyle, writeRow)
		}
		if err != nil {
			return fmt.Errorf("failed to write report row %d: %w", row, err)
		}
	}

	if err := f.SetColWidth(ReportSheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(ReportSheet, "B", "H", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(ReportSheet, "I", "J", 40); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(ReportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func writeTable(f *excelize.File, t *TableBlock, row *int, headerStyle, alertStyle int, writeRow func([]interface{}, int) error) error {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := writeRow(header, headerStyle); err != nil {
		return err
	}
	for _, r := range t.Rows {
		values := make([]interface{}, len(r))
		for i, c := range r {
			values[i] = c.Value
		}
		current := *row
		if err := writeRow(values, 0); err != nil {
			return err
		}
		for i, c := range r {
			if !c.Alert {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, current)
			if err := f.SetCellStyle(ReportSheet, cell, cell, alertStyle); err != nil {
				return err
			}
		}
	}
	return nil
}
