// Package temperature summarizes per-room temperature logs. Each input
// workbook holds one day of readings and is named after the room and day it
// covers, e.g. Kitchen_Day3.xlsx.
package temperature

import (
	"fmt"
	"sort"
)

// Key identifies one room on one day.
type Key struct {
	Room string
	Day  int
}

func (k Key) String() string {
	return fmt.Sprintf("%s_Day%d", k.Room, k.Day)
}

// Less orders keys by room label, then day.
func (k Key) Less(other Key) bool {
	if k.Room != other.Room {
		return k.Room < other.Room
	}
	return k.Day < other.Day
}

// Stats are the figures computed for one room from one file.
type Stats struct {
	Average float64
	Max     float64
	// TimeRange is "<earliest> - <latest>" as shown in the source file.
	TimeRange string
	Count     int
}

type Summary struct {
	Key   Key
	Stats Stats
}

// SortSummaries sorts in report order.
func SortSummaries(s []Summary) {
	sort.Slice(s, func(a, b int) bool {
		return s[a].Key.Less(s[b].Key)
	})
}
