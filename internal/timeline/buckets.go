package timeline

import (
	"math"
	"time"

	"github.com/tinytelemetry/logview/internal/model"
)

// HoursPerDay is the number of buckets in a Summary.
const HoursPerDay = 24

// yTicks is the number of intervals on the count axis.
const yTicks = 5

// Bucket is the number of records whose local hour equals Hour.
type Bucket struct {
	Hour  int
	Count int
}

// Summary is the derived view of one day of records.
type Summary struct {
	Buckets   [HoursPerDay]Bucket
	MaxCount  int
	Total     int    // records inside the day
	FirstDate string // date of the first record in the collection, "" if empty
	LastDate  string // date of the last record in the collection, "" if empty
}

// InDay reports whether ts falls in [day, day+DayMillis).
func InDay(ts, day int64) bool {
	return ts >= day && ts < day+DayMillis
}

// Compute buckets the records that fall on the day starting at cursor by
// their hour in loc. Records outside the day only contribute to the
// collection-wide first and last dates.
func Compute(records []model.LogRecord, cursor int64, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}

	var s Summary
	for h := range s.Buckets {
		s.Buckets[h].Hour = h
	}

	for _, r := range records {
		if !InDay(r.Time, cursor) {
			continue
		}
		s.Buckets[HourIn(r.Time, loc)].Count++
		s.Total++
	}

	for _, b := range s.Buckets {
		if b.Count > s.MaxCount {
			s.MaxCount = b.Count
		}
	}

	if len(records) > 0 {
		s.FirstDate = FormatDateIn(records[0].Time, loc)
		s.LastDate = FormatDateIn(records[len(records)-1].Time, loc)
	}
	return s
}

// YAxisTicks returns the six count-axis labels round(i/5*max) for i = 0..5,
// highest first.
func YAxisTicks(max int) []int {
	ticks := make([]int, yTicks+1)
	for i := 0; i <= yTicks; i++ {
		ticks[yTicks-i] = int(math.Round(float64(i) / yTicks * float64(max)))
	}
	return ticks
}

// BarFraction returns count/max in [0, 1]. A zero max yields 0.
func BarFraction(count, max int) float64 {
	if max <= 0 || count <= 0 {
		return 0
	}
	f := float64(count) / float64(max)
	if f > 1 {
		return 1
	}
	return f
}
