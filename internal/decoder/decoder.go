// Package decoder turns a byte stream of newline-delimited JSON into log
// records, tolerating chunk boundaries that split lines or UTF-8 sequences.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/tinytelemetry/logview/internal/model"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

var (
	// ErrNotObject is returned for lines that are valid JSON but not an object.
	ErrNotObject = errors.New("line is not a JSON object")
	// ErrMissingTime is returned for objects without a numeric _time field.
	ErrMissingTime = errors.New("line has no numeric _time")
)

var parserPool fastjson.ParserPool

// Stats counts what the decoder has seen so far.
type Stats struct {
	Lines   int // non-empty lines handed to the parser
	Decoded int
	Dropped int
}

// Decoder holds the incomplete tail of the stream between writes.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	leftover []byte
	logger   *zap.Logger
	stats    Stats
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger that receives dropped-line diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Decoder with an empty leftover buffer.
func New(opts ...Option) *Decoder {
	d := &Decoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Write consumes one chunk and returns the records completed by it, in
// stream order. The final unterminated segment is kept for the next call.
func (d *Decoder) Write(chunk []byte) []model.LogRecord {
	if len(chunk) == 0 {
		return nil
	}

	buf := chunk
	if len(d.leftover) > 0 {
		buf = make([]byte, 0, len(d.leftover)+len(chunk))
		buf = append(buf, d.leftover...)
		buf = append(buf, chunk...)
	}

	last := bytes.LastIndexByte(buf, '\n')
	if last < 0 {
		d.leftover = append(d.leftover[:0], buf...)
		return nil
	}

	var records []model.LogRecord
	complete := buf[:last]
	for len(complete) > 0 {
		var line []byte
		if i := bytes.IndexByte(complete, '\n'); i >= 0 {
			line, complete = complete[:i], complete[i+1:]
		} else {
			line, complete = complete, nil
		}
		if rec, ok := d.parse(line); ok {
			records = append(records, rec)
		}
	}

	// Copy: buf may alias the caller's chunk.
	d.leftover = append(d.leftover[:0:0], buf[last+1:]...)
	return records
}

// Close parses whatever remains in the leftover buffer. It is called once,
// when the stream ends.
func (d *Decoder) Close() []model.LogRecord {
	line := d.leftover
	d.leftover = nil
	if rec, ok := d.parse(line); ok {
		return []model.LogRecord{rec}
	}
	return nil
}

// Pending reports how many bytes are buffered waiting for a newline.
func (d *Decoder) Pending() int { return len(d.leftover) }

// Stats returns the decoder's counters.
func (d *Decoder) Stats() Stats { return d.stats }

func (d *Decoder) parse(line []byte) (model.LogRecord, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return model.LogRecord{}, false
	}
	d.stats.Lines++

	rec, err := ParseLine(line)
	if err != nil {
		d.stats.Dropped++
		d.logger.Debug("dropping log line",
			zap.Error(err),
			zap.ByteString("line", truncate(line, 256)),
		)
		return model.LogRecord{}, false
	}
	d.stats.Decoded++
	return rec, true
}

// ParseLine decodes a single JSON object line into a LogRecord. The returned
// record owns its memory.
func ParseLine(line []byte) (model.LogRecord, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(line)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("parsing log line: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return model.LogRecord{}, ErrNotObject
	}

	rec := model.LogRecord{Raw: append([]byte(nil), line...)}
	hasTime := false
	obj.Visit(func(key []byte, fv *fastjson.Value) {
		switch string(key) {
		case model.FieldTime:
			if ms, ok := millis(fv); ok {
				rec.Time = ms
				hasTime = true
			}
		case model.FieldMessage:
			if fv.Type() == fastjson.TypeString {
				rec.Message = string(fv.GetStringBytes())
			} else {
				rec.Message = string(fv.MarshalTo(nil))
			}
		default:
			rec.Attributes = append(rec.Attributes, model.Attribute{
				Key:   string(key),
				Value: fv.MarshalTo(nil),
			})
		}
	})
	if !hasTime {
		return model.LogRecord{}, ErrMissingTime
	}
	return rec, nil
}

func millis(v *fastjson.Value) (int64, bool) {
	if v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	if ms, err := v.Int64(); err == nil {
		return ms, true
	}
	f, err := v.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Floor(f)), true
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
