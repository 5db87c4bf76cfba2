// Package testutil builds instrument exports for tests, either in memory or
// as .xlsx files.
package testutil

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/user/pq_analyzer_go/internal/parser"
)

// PercentGroup is the group label the instrument writes above the harmonic
// percent columns.
const PercentGroup = "Harmonic %"

// Sample is one recorded row across the five sheets. Cells are strings so
// tests can inject non-numeric values.
type Sample struct {
	Current [3]string
	Voltage [3]string
	THDV    [3]string
	THDI    [3]string
	// CurrentPct and VoltagePct map harmonic order to the value written on
	// all three channels. Orders not in the map are left blank.
	CurrentPct map[int]float64
	VoltagePct map[int]float64
}

// Balanced returns a sample whose three phases carry identical values.
func Balanced(iAvg, vAvg, thdv, thdi float64) Sample {
	f := func(v float64) [3]string {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return [3]string{s, s, s}
	}
	return Sample{
		Current:    f(iAvg),
		Voltage:    f(vAvg),
		THDV:       f(thdv),
		THDI:       f(thdi),
		CurrentPct: map[int]float64{},
		VoltagePct: map[int]float64{},
	}
}

var (
	currentChannels = []string{"A1", "A2", "A3"}
	voltageChannels = []string{"V1-2", "V2-3", "V3-1"}
)

func fmtPct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// sheetData is header (+ optional group row), unit row and data rows.
type sheetData struct {
	name    string
	groups  []string
	columns []string
	rows    [][]string // unit row first
}

func buildSheets(samples []Sample, orders []int) []sheetData {
	current := sheetData{name: parser.SheetCurrentRMS, columns: []string{"Date", "Time", "A1 H1", "A2 H1", "A3 H1"}}
	current.rows = append(current.rows, []string{"", "", "A", "A", "A"})
	voltage := sheetData{name: parser.SheetVoltageRMS, columns: []string{"Date", "Time", "V1-2 H1", "V2-3 H1", "V3-1 H1"}}
	voltage.rows = append(voltage.rows, []string{"", "", "V", "V", "V"})
	recording := sheetData{name: parser.SheetRecording, columns: []string{"Date", "Time", "V1-2 THDf", "V2-3 THDf", "V3-1 THDf", "A1 THDf", "A2 THDf", "A3 THDf"}}
	recording.rows = append(recording.rows, []string{"", "", "%", "%", "%", "%", "%", "%"})

	currentPct := percentSheet(parser.SheetCurrentPercent, currentChannels, orders)
	voltagePct := percentSheet(parser.SheetVoltagePercent, voltageChannels, orders)

	for i, s := range samples {
		ts := []string{"2025-04-17", fmt.Sprintf("00:%02d", (2*i)%60)}
		current.rows = append(current.rows, append(append([]string{}, ts...), s.Current[:]...))
		voltage.rows = append(voltage.rows, append(append([]string{}, ts...), s.Voltage[:]...))
		rec := append(append([]string{}, ts...), s.THDV[:]...)
		recording.rows = append(recording.rows, append(rec, s.THDI[:]...))
		currentPct.rows = append(currentPct.rows, percentRow(ts, currentChannels, orders, s.CurrentPct))
		voltagePct.rows = append(voltagePct.rows, percentRow(ts, voltageChannels, orders, s.VoltagePct))
	}
	return []sheetData{current, voltage, recording, currentPct, voltagePct}
}

func percentSheet(name string, channels []string, orders []int) sheetData {
	sd := sheetData{name: name, groups: []string{"", "", PercentGroup}, columns: []string{"Date", "Time"}}
	units := []string{"", ""}
	for _, h := range orders {
		for _, ch := range channels {
			sd.columns = append(sd.columns, fmt.Sprintf("%s H%d", ch, h))
			units = append(units, "%")
		}
	}
	sd.rows = append(sd.rows, units)
	return sd
}

func percentRow(ts, channels []string, orders []int, values map[int]float64) []string {
	row := append([]string{}, ts...)
	for _, h := range orders {
		for range channels {
			if v, ok := values[h]; ok {
				row = append(row, fmtPct(v))
			} else {
				row = append(row, "")
			}
		}
	}
	return row
}

// NewTableSet builds the in-memory equivalent of an instrument export with
// percent columns for the given orders.
func NewTableSet(samples []Sample, orders []int) *parser.TableSet {
	sheets := buildSheets(samples, orders)
	set := &parser.TableSet{
		Current:   parser.NewTable(sheets[0].name, sheets[0].columns, sheets[0].rows),
		Voltage:   parser.NewTable(sheets[1].name, sheets[1].columns, sheets[1].rows),
		Recording: parser.NewTable(sheets[2].name, sheets[2].columns, sheets[2].rows),
		CurrentPct: parser.NewGroupedTable(sheets[3].name, sheets[3].groups, sheets[3].columns,
			sheets[3].rows),
		VoltagePct: parser.NewGroupedTable(sheets[4].name, sheets[4].groups, sheets[4].columns,
			sheets[4].rows),
		ConfigInfo:    [][]string{{"Model", "PEL 8336"}},
		ParseWarnings: []string{},
	}
	return set
}

// WriteWorkbook saves the export as an .xlsx file laid out like the
// instrument's: a title row above single-header sheets, a group row above
// the percent sheets, and a Config Info sheet without header.
func WriteWorkbook(path string, samples []Sample, orders []int, model string) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, sd := range buildSheets(samples, orders) {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), sd.name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(sd.name); err != nil {
			return err
		}

		top := []string{sd.name}
		if sd.groups != nil {
			top = sd.groups
		}
		all := append([][]string{top, sd.columns}, sd.rows...)
		for i, row := range all {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sd.name, cell, toCells(row)); err != nil {
				return err
			}
		}
	}

	if model != "" {
		if _, err := f.NewSheet(parser.SheetConfigInfo); err != nil {
			return err
		}
		rows := [][]string{{"Recording", "INTDH1A"}, {"Model", model}, {"Serial", "222794WKH"}}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(parser.SheetConfigInfo, cell, toCells(row)); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// toCells writes numeric strings as numbers, like the instrument does.
func toCells(row []string) *[]interface{} {
	cells := make([]interface{}, len(row))
	for i, c := range row {
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			cells[i] = v
		} else {
			cells[i] = c
		}
	}
	return &cells
}
