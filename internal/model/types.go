package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field names every log line is expected to carry.
const (
	FieldTime    = "_time"
	FieldMessage = "message"
)

// ISOTimeLayout renders timestamps the way the log table shows them.
const ISOTimeLayout = "2006-01-02T15:04:05.000Z"

// Attribute is one top-level field of a log line other than the known ones.
// Value holds the field's raw JSON text.
type Attribute struct {
	Key   string
	Value json.RawMessage
}

// LogRecord is a single decoded log line. Records are immutable once the
// decoder has produced them.
type LogRecord struct {
	Time       int64 // epoch milliseconds from _time
	Message    string
	Attributes []Attribute // remaining fields, in source order
	Raw        []byte      // the original line, trimmed
}

// Attr returns the raw JSON value of an extra attribute.
func (r LogRecord) Attr(key string) (json.RawMessage, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// StringAttr returns an attribute decoded as a string, if it is one.
func (r LogRecord) StringAttr(key string) (string, bool) {
	raw, ok := r.Attr(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Timestamp converts Time to a time.Time in UTC.
func (r LogRecord) Timestamp() time.Time {
	return time.UnixMilli(r.Time).UTC()
}

// ISOTime formats Time as an ISO-8601 UTC string with millisecond precision.
func (r LogRecord) ISOTime() string {
	return r.Timestamp().Format(ISOTimeLayout)
}

// CompactJSON returns the record as single-line JSON.
func (r LogRecord) CompactJSON() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, r.Raw); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}

// PrettyJSON returns the record as JSON indented by two spaces.
func (r LogRecord) PrettyJSON() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}
