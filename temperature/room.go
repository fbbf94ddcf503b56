package temperature

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoData is returned when a file has no usable rows for the room.
var ErrNoData = errors.New("no data for room")

const (
	colRoom        = "Room"
	colTemperature = "Temperature"
	colTime        = "Time"
)

// SummarizeFile computes the statistics of room in the given sheet of the
// workbook at path.
func SummarizeFile(path, room, sheet string) (Stats, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer fd.Close()
	return Summarize(fd, room, sheet)
}

// Summarize computes the statistics of the rows whose Room cell equals room
// exactly. The first row of the sheet is the header.
func Summarize(r io.Reader, room, sheet string) (Stats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Stats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Stats{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return Stats{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var header []string
	if len(raw) > 0 {
		header = raw[0]
	}
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	var missing []string
	for _, c := range []string{colRoom, colTemperature, colTime} {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Stats{}, &ValidationError{Item: sheet, Reason: "missing columns " + strings.Join(missing, ", ")}
	}

	acc := newAccumulator()
	for i := 1; i < len(raw); i++ {
		row := raw[i]
		if cellAt(row, cols[colRoom]) != room {
			continue
		}

		tv := strings.TrimSpace(cellAt(row, cols[colTemperature]))
		var temp float64
		if tv != "" {
			temp, err = strconv.ParseFloat(tv, 64)
			if err != nil {
				return Stats{}, &ValidationError{Item: fmt.Sprintf("%s row %d", sheet, i+1), Reason: fmt.Sprintf("temperature %q is not a number", tv)}
			}
		}

		var shownTime string
		if i < len(shown) {
			shownTime = cellAt(shown[i], cols[colTime])
		}
		acc.add(temp, tv != "", cellAt(row, cols[colTime]), shownTime)
	}

	st, ok := acc.stats()
	if !ok {
		return Stats{}, ErrNoData
	}
	return st, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
