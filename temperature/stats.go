package temperature

import (
	"math"
	"strconv"
	"strings"
)

// accumulator collects the readings of one room.
type accumulator struct {
	count int

	n   int
	sum float64
	max float64

	haveTime           bool
	minRaw, maxRaw     string
	minShown, maxShown string
}

func newAccumulator() *accumulator {
	return &accumulator{max: math.Inf(-1)}
}

// add records one matching row. A row without a temperature still counts.
// Times are compared on their raw cell value and reported as displayed.
func (a *accumulator) add(temp float64, hasTemp bool, rawTime, shownTime string) {
	a.count++
	if hasTemp {
		a.n++
		a.sum += temp
		a.max = max(a.max, temp)
	}

	if strings.TrimSpace(rawTime) == "" {
		return
	}
	if shownTime == "" {
		shownTime = rawTime
	}
	if !a.haveTime || timeLess(rawTime, a.minRaw) {
		a.minRaw, a.minShown = rawTime, shownTime
	}
	if !a.haveTime || timeLess(a.maxRaw, rawTime) {
		a.maxRaw, a.maxShown = rawTime, shownTime
	}
	a.haveTime = true
}

// stats returns false when no row carried a temperature.
func (a *accumulator) stats() (Stats, bool) {
	if a.n == 0 {
		return Stats{}, false
	}
	st := Stats{
		Average: a.sum / float64(a.n),
		Max:     a.max,
		Count:   a.count,
	}
	if a.haveTime {
		st.TimeRange = a.minShown + " - " + a.maxShown
	}
	return st, true
}

// timeLess compares numerically when both values are numbers (Excel date
// serials), otherwise as strings.
func timeLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
