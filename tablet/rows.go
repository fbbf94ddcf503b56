// Package tablet turns the rows of a registration spreadsheet into one filled
// memorial document per person.
package tablet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
	"kastelo.dev/sheetwork/config"
)

// SourceRow is one usable row of the input spreadsheet.
type SourceRow struct {
	// Line is the one-based spreadsheet row number.
	Line      int
	Name      string
	Ancestors []string
	Address   string
}

// ValidationError reports an input file that lacks required columns.
type ValidationError struct {
	File    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// ReadRowsFile reads the first sheet of the workbook at path.
func ReadRowsFile(path string, cols config.Columns, headerRow int) ([]SourceRow, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	rows, err := ReadRows(fd, cols, headerRow)
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.File = path
	}
	return rows, err
}

// ReadRows reads the first sheet of a workbook. Headers are taken from
// headerRow (one-based); rows below it with an empty name are skipped.
func ReadRows(r io.Reader, cols config.Columns, headerRow int) ([]SourceRow, error) {
	if headerRow < 1 {
		return nil, fmt.Errorf("header row %d out of range", headerRow)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	required := []string{cols.Name, cols.Ancestors, cols.Address}
	var header []string
	if headerRow <= len(grid) {
		header = grid[headerRow-1]
	}
	idx := headerIndex(header)

	var missing []string
	for _, c := range required {
		if _, ok := idx[normalizeHeader(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{File: "<input>", Missing: missing}
	}

	nameCol := idx[normalizeHeader(cols.Name)]
	ancCol := idx[normalizeHeader(cols.Ancestors)]
	addrCol := idx[normalizeHeader(cols.Address)]

	var res []SourceRow
	for i := headerRow; i < len(grid); i++ {
		row := grid[i]
		name := strings.TrimSpace(cellAt(row, nameCol))
		if name == "" {
			continue
		}
		res = append(res, SourceRow{
			Line:      i + 1,
			Name:      name,
			Ancestors: splitLines(cellAt(row, ancCol)),
			Address:   strings.TrimSpace(cellAt(row, addrCol)),
		})
	}
	return res, nil
}

// headerIndex maps normalized header text to its column. The first of
// duplicate headers wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		k := normalizeHeader(h)
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = i
		}
	}
	return idx
}

// normalizeHeader folds full-width ASCII and composes Unicode so that headers
// typed with a CJK input method still match.
func normalizeHeader(s string) string {
	return norm.NFC.String(width.Fold.String(strings.TrimSpace(s)))
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// splitLines splits a multi-line cell, dropping blank lines.
func splitLines(s string) []string {
	var res []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}
