package decoder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/logview/internal/model"
)

const sampleStream = `{"_time":1724323612592,"message":"first","level":"info"}
{"_time":1724323612593,"message":"zweite Größe ✓","tags":["a","b"]}

{"_time":1724327212000,"message":"third","nested":{"k":1}}
{"_time":1724330812000,"message":"fourth"}`

func decodeAll(chunks ...[]byte) []model.LogRecord {
	d := New()
	var out []model.LogRecord
	for _, c := range chunks {
		out = append(out, d.Write(c)...)
	}
	return append(out, d.Close()...)
}

func messages(records []model.LogRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Message)
	}
	return out
}

func TestDecoderSingleChunk(t *testing.T) {
	records := decodeAll([]byte(sampleStream))
	require.Len(t, records, 4)
	assert.Equal(t, []string{"first", "zweite Größe ✓", "third", "fourth"}, messages(records))
	assert.Equal(t, int64(1724323612592), records[0].Time)

	level, ok := records[0].StringAttr("level")
	require.True(t, ok)
	assert.Equal(t, "info", level)

	nested, ok := records[2].Attr("nested")
	require.True(t, ok)
	assert.JSONEq(t, `{"k":1}`, string(nested))
}

func TestDecoderEveryTwoWaySplit(t *testing.T) {
	want := messages(decodeAll([]byte(sampleStream)))
	data := []byte(sampleStream)

	for i := 0; i <= len(data); i++ {
		got := messages(decodeAll(data[:i], data[i:]))
		require.Equal(t, want, got, "split at byte %d", i)
	}
}

func TestDecoderRandomChunking(t *testing.T) {
	want := decodeAll([]byte(sampleStream))
	data := []byte(sampleStream)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		var chunks [][]byte
		for rest := data; len(rest) > 0; {
			n := 1 + rng.Intn(17)
			if n > len(rest) {
				n = len(rest)
			}
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		got := decodeAll(chunks...)
		require.Equal(t, len(want), len(got), "round %d", round)
		for i := range want {
			assert.Equal(t, want[i].Time, got[i].Time)
			assert.Equal(t, want[i].Message, got[i].Message)
			assert.Equal(t, want[i].Raw, got[i].Raw)
		}
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	data := []byte(sampleStream)
	chunks := make([][]byte, len(data))
	for i := range data {
		chunks[i] = data[i : i+1]
	}
	assert.Equal(t, messages(decodeAll(data)), messages(decodeAll(chunks...)))
}

func TestDecoderMalformedLineDoesNotDropNext(t *testing.T) {
	d := New()
	records := d.Write([]byte("{not json\n{\"_time\":1,\"message\":\"ok\"}\n"))
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Message)

	stats := d.Stats()
	assert.Equal(t, 2, stats.Lines)
	assert.Equal(t, 1, stats.Decoded)
	assert.Equal(t, 1, stats.Dropped)
}

func TestDecoderLeftoverParsedOnClose(t *testing.T) {
	d := New()
	assert.Empty(t, d.Write([]byte(`{"_time":5,"message":"tail"`)))
	assert.Empty(t, d.Write([]byte(`}`)))
	assert.Equal(t, len(`{"_time":5,"message":"tail"}`), d.Pending())

	records := d.Close()
	require.Len(t, records, 1)
	assert.Equal(t, "tail", records[0].Message)
	assert.Zero(t, d.Pending())
}

func TestDecoderTruncatedTailIsDropped(t *testing.T) {
	records := decodeAll([]byte("{\"_time\":1}\n{\"_time\":2,\"mess"))
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].Time)
}

func TestDecoderSkipsBlankAndCRLFLines(t *testing.T) {
	records := decodeAll([]byte("\n\r\n{\"_time\":1}\r\n\n{\"_time\":2}\r\n"))
	require.Len(t, records, 2)
	assert.Equal(t, `{"_time":1}`, string(records[0].Raw))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
		time    int64
		message string
	}{
		{name: "basic", line: `{"_time":10,"message":"m"}`, time: 10, message: "m"},
		{name: "no message", line: `{"_time":10}`, time: 10},
		{name: "fractional time", line: `{"_time":10.9,"message":"m"}`, time: 10, message: "m"},
		{name: "numeric message", line: `{"_time":10,"message":42}`, time: 10, message: "42"},
		{name: "array", line: `[1,2]`, wantErr: ErrNotObject},
		{name: "string time", line: `{"_time":"10"}`, wantErr: ErrMissingTime},
		{name: "no time", line: `{"message":"m"}`, wantErr: ErrMissingTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseLine([]byte(tt.line))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.time, rec.Time)
			assert.Equal(t, tt.message, rec.Message)
		})
	}
}

func TestParseLineKeepsAttributeOrder(t *testing.T) {
	rec, err := ParseLine([]byte(`{"z":1,"_time":3,"a":"x","m":null}`))
	require.NoError(t, err)
	keys := make([]string, 0, len(rec.Attributes))
	for _, a := range rec.Attributes {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestParseLineInvalidJSON(t *testing.T) {
	_, err := ParseLine([]byte(`{not json`))
	assert.Error(t, err)
}
