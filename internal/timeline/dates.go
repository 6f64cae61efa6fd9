// Package timeline buckets log records into the hours of one local calendar
// day and tracks which day is being shown.
package timeline

import (
	"fmt"
	"time"
)

// DayMillis is the fixed step between days, in milliseconds. Day navigation
// always moves by exactly this much, including across DST transitions.
const DayMillis int64 = 86_400_000

// DayStart returns local midnight of the day containing ts (epoch ms).
func DayStart(ts int64) int64 {
	return DayStartIn(ts, time.Local)
}

// DayStartIn returns midnight in loc of the day containing ts. It is
// idempotent: DayStartIn(DayStartIn(t, loc), loc) == DayStartIn(t, loc).
func DayStartIn(ts int64, loc *time.Location) int64 {
	t := time.UnixMilli(ts).In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UnixMilli()
}

// HourIn returns the hour of day (0-23) of ts in loc.
func HourIn(ts int64, loc *time.Location) int {
	return time.UnixMilli(ts).In(loc).Hour()
}

// FormatTime renders an hour and optional minute as HH:MM.
func FormatTime(hour int, minute ...int) string {
	m := 0
	if len(minute) > 0 {
		m = minute[0]
	}
	return fmt.Sprintf("%02d:%02d", hour, m)
}

// FormatDate renders ts as YYYY-MM-DD in local time.
func FormatDate(ts int64) string {
	return FormatDateIn(ts, time.Local)
}

// FormatDateIn renders ts as YYYY-MM-DD in loc.
func FormatDateIn(ts int64, loc *time.Location) string {
	return time.UnixMilli(ts).In(loc).Format(time.DateOnly)
}
