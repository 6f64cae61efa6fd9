package timeline

import (
	"time"

	"github.com/tinytelemetry/logview/internal/model"
)

// Cursor is the start of the day being displayed. The zero value is unset.
type Cursor struct {
	day int64
	set bool
	loc *time.Location
}

// NewCursor returns an unset cursor that computes midnights in loc.
func NewCursor(loc *time.Location) *Cursor {
	if loc == nil {
		loc = time.Local
	}
	return &Cursor{loc: loc}
}

// Init points the cursor at the day of the first record. It only acts once:
// later calls leave a navigated cursor alone. Reports whether it moved.
func (c *Cursor) Init(records []model.LogRecord) bool {
	if c.set || len(records) == 0 {
		return false
	}
	c.Set(records[0].Time)
	return true
}

// Set points the cursor at the day containing ts.
func (c *Cursor) Set(ts int64) {
	c.day = DayStartIn(ts, c.location())
	c.set = true
}

// Day returns the cursor's epoch ms and whether it has been set.
func (c *Cursor) Day() (int64, bool) {
	return c.day, c.set
}

// Location returns the zone midnights are computed in.
func (c *Cursor) Location() *time.Location {
	return c.location()
}

// HasPrev reports whether any record lies before the current day.
func (c *Cursor) HasPrev(records []model.LogRecord) bool {
	if !c.set {
		return false
	}
	for _, r := range records {
		if r.Time < c.day {
			return true
		}
	}
	return false
}

// HasNext reports whether any record lies at or after the next day.
func (c *Cursor) HasNext(records []model.LogRecord) bool {
	if !c.set {
		return false
	}
	next := c.day + DayMillis
	for _, r := range records {
		if r.Time >= next {
			return true
		}
	}
	return false
}

// Prev moves back one day if HasPrev, otherwise does nothing.
func (c *Cursor) Prev(records []model.LogRecord) bool {
	if !c.HasPrev(records) {
		return false
	}
	c.day -= DayMillis
	return true
}

// Next moves forward one day if HasNext, otherwise does nothing.
func (c *Cursor) Next(records []model.LogRecord) bool {
	if !c.HasNext(records) {
		return false
	}
	c.day += DayMillis
	return true
}

func (c *Cursor) location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}
