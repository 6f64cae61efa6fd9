package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/logview/internal/model"
)

var (
	utc       = time.UTC
	plusTwo   = time.FixedZone("UTC+2", 2*60*60)
	minusFive = time.FixedZone("UTC-5", -5*60*60)
)

func ms(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UnixMilli()
}

func records(times ...int64) []model.LogRecord {
	out := make([]model.LogRecord, len(times))
	for i, t := range times {
		out[i] = model.LogRecord{Time: t}
	}
	return out
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "09:00", FormatTime(9))
	assert.Equal(t, "14:05", FormatTime(14, 5))
	assert.Equal(t, "00:00", FormatTime(0, 0))
	assert.Equal(t, "23:59", FormatTime(23, 59))
}

func TestFormatDateIn(t *testing.T) {
	ts := ms("2023-12-31T23:59:59Z")
	assert.Equal(t, "2023-12-31", FormatDateIn(ts, utc))
	assert.Equal(t, "2023-12-31", FormatDateIn(ts, minusFive))
	assert.Equal(t, "2024-01-01", FormatDateIn(ts, plusTwo))

	assert.Equal(t, "2022-12-31", FormatDateIn(ms("2023-01-01T00:00:00Z"), minusFive))
	assert.Equal(t, "2024-02-29", FormatDateIn(ms("2024-02-29T12:00:00Z"), utc))
}

func TestDayStartIsIdempotent(t *testing.T) {
	for _, loc := range []*time.Location{utc, plusTwo, minusFive, time.Local} {
		for _, ts := range []int64{0, 1724323612592, ms("2024-03-10T07:30:00Z"), ms("2023-12-31T23:59:59Z")} {
			once := DayStartIn(ts, loc)
			assert.Equal(t, once, DayStartIn(once, loc), "loc %s ts %d", loc, ts)
			assert.LessOrEqual(t, once, ts)
		}
	}
	assert.Equal(t, DayStart(1724323612592), DayStart(DayStart(1724323612592)))
}

func TestDayStartIn(t *testing.T) {
	ts := ms("2024-08-22T10:46:52Z")
	assert.Equal(t, ms("2024-08-22T00:00:00Z"), DayStartIn(ts, utc))
	assert.Equal(t, ms("2024-08-21T22:00:00Z"), DayStartIn(ts, plusTwo))
	assert.Equal(t, ms("2024-08-22T05:00:00Z"), DayStartIn(ts, minusFive))
}

func TestComputeBucketsRecordIntoHour(t *testing.T) {
	recs := records(1724323612592)

	s := Compute(recs, DayStartIn(1724323612592, utc), utc)
	assert.Equal(t, 1, s.Buckets[10].Count)
	assert.Equal(t, 1, s.MaxCount)
	assert.Equal(t, 1, s.Total)

	s = Compute(recs, DayStartIn(1724323612592, plusTwo), plusTwo)
	assert.Equal(t, 1, s.Buckets[12].Count)
}

func TestComputeSumMatchesDayCount(t *testing.T) {
	day := ms("2024-08-22T00:00:00Z")
	recs := records(
		day-1, // previous day
		day,
		day+1,
		day+3*60*60*1000,
		day+3*60*60*1000+5,
		day+DayMillis-1,
		day+DayMillis, // next day
	)
	s := Compute(recs, day, utc)

	sum := 0
	for h, b := range s.Buckets {
		assert.Equal(t, h, b.Hour)
		sum += b.Count
	}
	inDay := 0
	for _, r := range recs {
		if DayStartIn(r.Time, utc) == day {
			inDay++
		}
	}
	assert.Equal(t, inDay, sum)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Buckets[0].Count)
	assert.Equal(t, 2, s.Buckets[3].Count)
	assert.Equal(t, 1, s.Buckets[23].Count)
	assert.Equal(t, 2, s.MaxCount)
	assert.Equal(t, "2024-08-21", s.FirstDate)
	assert.Equal(t, "2024-08-23", s.LastDate)
}

func TestComputeFirstLastFollowArrivalOrder(t *testing.T) {
	recs := records(ms("2024-08-23T01:00:00Z"), ms("2024-08-20T01:00:00Z"), ms("2024-08-22T01:00:00Z"))
	s := Compute(recs, ms("2024-08-23T00:00:00Z"), utc)
	assert.Equal(t, "2024-08-23", s.FirstDate)
	assert.Equal(t, "2024-08-22", s.LastDate)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, 0, utc)
	assert.Zero(t, s.MaxCount)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.FirstDate)
	for _, b := range s.Buckets {
		assert.Zero(t, b.Count)
		frac := BarFraction(b.Count, s.MaxCount)
		assert.False(t, math.IsNaN(frac))
		assert.Zero(t, frac)
	}
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, YAxisTicks(s.MaxCount))
}

func TestYAxisTicks(t *testing.T) {
	assert.Equal(t, []int{10, 8, 6, 4, 2, 0}, YAxisTicks(10))
	assert.Equal(t, []int{7, 6, 4, 3, 1, 0}, YAxisTicks(7))
	assert.Equal(t, []int{1, 1, 1, 0, 0, 0}, YAxisTicks(1))
}

func TestBarFraction(t *testing.T) {
	assert.Equal(t, 0.5, BarFraction(5, 10))
	assert.Equal(t, 1.0, BarFraction(10, 10))
	assert.Zero(t, BarFraction(3, 0))
}

func TestCursorInitOnlyOnce(t *testing.T) {
	c := NewCursor(utc)
	_, set := c.Day()
	require.False(t, set)
	assert.False(t, c.Init(nil))

	recs := records(ms("2024-08-22T10:00:00Z"), ms("2024-08-23T10:00:00Z"))
	require.True(t, c.Init(recs))
	day, set := c.Day()
	require.True(t, set)
	assert.Equal(t, ms("2024-08-22T00:00:00Z"), day)

	require.True(t, c.Next(recs))
	assert.False(t, c.Init(recs), "a navigated cursor is not reset by new data")
	day, _ = c.Day()
	assert.Equal(t, ms("2024-08-23T00:00:00Z"), day)
}

func TestCursorNavigationGuards(t *testing.T) {
	c := NewCursor(utc)
	recs := records(ms("2024-08-22T10:00:00Z"))
	c.Init(recs)

	assert.False(t, c.HasPrev(recs))
	assert.False(t, c.HasNext(recs))
	before, _ := c.Day()
	assert.False(t, c.Prev(recs), "disabled action is a no-op")
	assert.False(t, c.Next(recs))
	after, _ := c.Day()
	assert.Equal(t, before, after)
}

func TestCursorMovesByExactlyOneDay(t *testing.T) {
	c := NewCursor(utc)
	recs := records(
		ms("2024-08-22T10:00:00Z"),
		ms("2024-08-20T10:00:00Z"),
		ms("2024-08-24T10:00:00Z"),
	)
	c.Init(recs)
	start, _ := c.Day()

	require.True(t, c.HasPrev(recs))
	require.True(t, c.Prev(recs))
	day, _ := c.Day()
	assert.Equal(t, start-DayMillis, day)

	// 2024-08-21 is empty, but older data still exists.
	require.True(t, c.Prev(recs))
	require.False(t, c.Prev(recs))
	day, _ = c.Day()
	assert.Equal(t, ms("2024-08-20T00:00:00Z"), day)

	for c.Next(recs) {
	}
	day, _ = c.Day()
	assert.Equal(t, ms("2024-08-24T00:00:00Z"), day)
}

func TestCursorUnsetHasNoNeighbours(t *testing.T) {
	var c Cursor
	recs := records(1, 2)
	assert.False(t, c.HasPrev(recs))
	assert.False(t, c.HasNext(recs))
	assert.False(t, c.Prev(recs))
}
