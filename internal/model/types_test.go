package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecordJSONViews(t *testing.T) {
	r := LogRecord{
		Time:    1724323612592,
		Message: "hello",
		Attributes: []Attribute{
			{Key: "level", Value: []byte(`"warn"`)},
			{Key: "n", Value: []byte(`3`)},
		},
		Raw: []byte(`{"_time": 1724323612592, "message": "hello", "level": "warn", "n": 3}`),
	}

	assert.Equal(t, `{"_time":1724323612592,"message":"hello","level":"warn","n":3}`, r.CompactJSON())
	assert.Equal(t, "{\n  \"_time\": 1724323612592,\n  \"message\": \"hello\",\n  \"level\": \"warn\",\n  \"n\": 3\n}", r.PrettyJSON())
	assert.Equal(t, "2024-08-22T10:46:52.592Z", r.ISOTime())

	level, ok := r.StringAttr("level")
	require.True(t, ok)
	assert.Equal(t, "warn", level)

	_, ok = r.StringAttr("n")
	assert.False(t, ok, "numeric attribute is not a string")

	_, ok = r.Attr("missing")
	assert.False(t, ok)
}
