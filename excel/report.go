// Package excel renders temperature summaries as a workbook.
package excel

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"
	"kastelo.dev/sheetwork/config"
	"kastelo.dev/sheetwork/temperature"
)

var reportHeader = []string{"Room_Day", "Avg_Temperature", "Max_Temperature", "Time_Range", "Record_Count"}

// Columns are padded this much beyond their longest value.
const widthPad = 2

// ReportXLSX returns a workbook with one row per summary, in the given
// order. Rows are filled with the color configured for their room; rooms
// without a color stay unfilled.
func ReportXLSX(summaries []temperature.Summary, cfg config.Temperature) ([]byte, error) {
	if err := mergo.Merge(&cfg, config.Default().Temperature); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "kastelo.dev/sheetwork",
		DocSecurity: 2,
	})

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(sheet, cfg.ReportTab); err != nil {
		return nil, err
	}
	sheet = cfg.ReportTab

	widths := make([]int, len(reportHeader))
	measure := func(col int, s string) {
		widths[col] = max(widths[col], utf8.RuneCountInString(s))
	}

	for i, h := range reportHeader {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), 1), h)
		measure(i, h)
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell('A', 1), cell('E', 1), style)

	for i, s := range summaries {
		row := i + 2
		writeSummary(xlsx, sheet, row, s, cfg.Colors[s.Key.Room])

		measure(0, s.Key.String())
		measure(1, strconv.FormatFloat(s.Stats.Average, 'f', 2, 64))
		measure(2, strconv.FormatFloat(s.Stats.Max, 'f', 2, 64))
		measure(3, s.Stats.TimeRange)
		measure(4, strconv.Itoa(s.Stats.Count))
	}

	for i, w := range widths {
		col := string('A' + rune(i))
		_ = xlsx.SetColWidth(sheet, col, col, float64(w+widthPad))
	}

	_ = xlsx.SetPanes(sheet, &excelize.Panes{
		ActivePane:  "bottomLeft",
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(xlsx *excelize.File, sheet string, row int, s temperature.Summary, color string) {
	_ = xlsx.SetCellValue(sheet, cell('A', row), s.Key.String())
	_ = xlsx.SetCellValue(sheet, cell('B', row), s.Stats.Average)
	_ = xlsx.SetCellValue(sheet, cell('C', row), s.Stats.Max)
	_ = xlsx.SetCellValue(sheet, cell('D', row), s.Stats.TimeRange)
	_ = xlsx.SetCellInt(sheet, cell('E', row), s.Stats.Count)

	fill := func() *excelize.Style {
		if color == "" {
			return &excelize.Style{}
		}
		return solidFill(color)
	}

	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fill()))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), style)
	_ = xlsx.SetCellStyle(sheet, cell('D', row), cell('D', row), style)
	style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), fill(), twoDecimals()))
	_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('C', row), style)
	style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), fill(), textAlignment("right")))
	_ = xlsx.SetCellStyle(sheet, cell('E', row), cell('E', row), style)
}
