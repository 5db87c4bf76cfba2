package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	pqerrors "github.com/user/pq_analyzer_go/internal/errors"
)

// ParseWorkbook reads the five measurement sheets and the Config Info sheet
// from an instrument export. Rows are returned as stored; the unit row under
// each header is left in place for the aligner to drop.
func ParseWorkbook(filepath string) (*TableSet, error) {
	f, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseFile(f)
}

// ParseFile does the work of ParseWorkbook on an already opened file.
func ParseFile(f *excelize.File) (*TableSet, error) {
	set := &TableSet{ParseWarnings: make([]string, 0)}

	var err error
	if set.Current, err = readTable(f, SheetCurrentRMS); err != nil {
		return nil, err
	}
	if set.Voltage, err = readTable(f, SheetVoltageRMS); err != nil {
		return nil, err
	}
	if set.Recording, err = readTable(f, SheetRecording); err != nil {
		return nil, err
	}
	if set.CurrentPct, err = readGroupedTable(f, SheetCurrentPercent); err != nil {
		return nil, err
	}
	if set.VoltagePct, err = readGroupedTable(f, SheetVoltagePercent); err != nil {
		return nil, err
	}

	// Config Info only feeds the objective line, so its absence is a warning.
	if rows, ok := sheetRows(f, SheetConfigInfo); ok {
		set.ConfigInfo = rows
	} else {
		set.ParseWarnings = append(set.ParseWarnings, fmt.Sprintf("sheet %q not found, instrument model unknown", SheetConfigInfo))
	}

	for _, t := range []*Table{set.Current, set.Voltage, set.Recording, set.CurrentPct.Table, set.VoltagePct.Table} {
		if t.Len() == 0 {
			set.ParseWarnings = append(set.ParseWarnings, fmt.Sprintf("sheet %q has a header but no rows", t.Name))
		}
	}

	return set, nil
}

// readTable reads a sheet whose first row is a title and second row the
// column header.
func readTable(f *excelize.File, sheet string) (*Table, error) {
	rows, ok := sheetRows(f, sheet)
	if !ok {
		return nil, &pqerrors.SchemaError{Table: sheet}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q: header row missing: %w", sheet, &pqerrors.SchemaError{Table: sheet})
	}
	return NewTable(sheet, trimAll(rows[1]), trimTrailingEmpty(rows[2:])), nil
}

// readGroupedTable reads a sheet with a two-row header: group labels on the
// first row, column labels on the second.
func readGroupedTable(f *excelize.File, sheet string) (*GroupedTable, error) {
	rows, ok := sheetRows(f, sheet)
	if !ok {
		return nil, &pqerrors.SchemaError{Table: sheet}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q: two-row header missing: %w", sheet, &pqerrors.SchemaError{Table: sheet})
	}
	return NewGroupedTable(sheet, trimAll(rows[0]), trimAll(rows[1]), trimTrailingEmpty(rows[2:])), nil
}

// sheetRows returns the raw (unformatted) cell values of a sheet.
func sheetRows(f *excelize.File, sheet string) ([][]string, bool) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, false
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false
	}
	return rows, true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// trimTrailingEmpty drops blank rows at the end of a sheet, which excelize
// reports when cells below the data carry formatting only.
func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isBlank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
