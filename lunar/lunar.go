// Package lunar renders Gregorian dates as traditional lunisolar date labels
// of the form "乙巳年 二月 廿五日".
package lunar

import (
	"fmt"
	"time"

	"github.com/6tail/lunar-go/calendar"
)

// Placeholder is what callers print instead of a date that failed to convert.
const Placeholder = "無效日期"

const dateLayout = "2006-01-02"

var monthNames = [12]string{
	"正", "二", "三", "四", "五", "六", "七", "八", "九", "十", "十一", "十二",
}

var dayNames = [31]string{
	"初一", "初二", "初三", "初四", "初五", "初六", "初七", "初八", "初九", "初十",
	"十一", "十二", "十三", "十四", "十五", "十六", "十七", "十八", "十九", "二十",
	"廿一", "廿二", "廿三", "廿四", "廿五", "廿六", "廿七", "廿八", "廿九", "三十",
	"卅一",
}

// InvalidDateError is returned for input that is not a YYYY-MM-DD date.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// Convert parses a YYYY-MM-DD date and returns its lunisolar label.
func Convert(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", &InvalidDateError{Input: date, Err: err}
	}
	return FromTime(t), nil
}

// FromTime returns the lunisolar label of the calendar day of t.
func FromTime(t time.Time) string {
	y, m, d := t.Date()
	l := calendar.NewSolarFromYmd(y, int(m), d).GetLunar()
	return fmt.Sprintf("%s年 %s月 %s日", l.GetYearInGanZhi(), MonthName(l.GetMonth()), DayName(l.GetDay()))
}

// MonthName returns the ordinal name of a lunar month. Leap months, which
// the calendar reports as negative numbers, share the name of their month.
func MonthName(month int) string {
	if month < 0 {
		month = -month
	}
	if month < 1 || month > len(monthNames) {
		return ""
	}
	return monthNames[month-1]
}

// DayName returns the ordinal name of a lunar day; 31 maps to the fallback
// entry.
func DayName(day int) string {
	if day < 1 || day > len(dayNames) {
		return ""
	}
	return dayNames[day-1]
}
