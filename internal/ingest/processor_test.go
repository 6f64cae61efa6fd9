package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/logview/internal/logstore"
	"github.com/tinytelemetry/logview/internal/model"
)

// fakeSource replays a fixed list of chunks.
type fakeSource struct {
	ch      chan model.IngestChunk
	stopped chan struct{}
}

func newFakeSource(chunks ...model.IngestChunk) *fakeSource {
	s := &fakeSource{
		ch:      make(chan model.IngestChunk, len(chunks)),
		stopped: make(chan struct{}),
	}
	for _, c := range chunks {
		s.ch <- c
	}
	return s
}

func (s *fakeSource) Chunks() <-chan model.IngestChunk { return s.ch }
func (s *fakeSource) Name() string                     { return "fake" }
func (s *fakeSource) Stop() {
	select {
	case <-s.stopped:
	default:
		close(s.stopped)
	}
}

func data(s string) model.IngestChunk { return model.IngestChunk{Source: "fake", Data: []byte(s)} }

func TestProcessorAppendsAsChunksArrive(t *testing.T) {
	store := logstore.New()
	src := newFakeSource(
		data(`{"_time":1,"message":"a"}`+"\n"+`{"_time":2,`),
		data(`"message":"b"}`+"\n"+`{not json`+"\n"),
		data(`{"_time":3,"message":"c"}`),
	)
	close(src.ch)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	err := NewProcessor(store, WithMetrics(metrics)).Run(context.Background(), src)
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Records, 3)
	assert.Equal(t, "a", snap.Records[0].Message)
	assert.Equal(t, "b", snap.Records[1].Message)
	assert.Equal(t, "c", snap.Records[2].Message, "leftover parsed at end of stream")
	assert.True(t, snap.Done)
	assert.Empty(t, snap.Err)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DroppedLines))
	assert.Zero(t, testutil.ToFloat64(metrics.Errors))
	assert.Greater(t, testutil.ToFloat64(metrics.Bytes), 0.0)

	select {
	case <-src.stopped:
	default:
		t.Fatal("source was not stopped")
	}
}

func TestProcessorErrorKeepsRecords(t *testing.T) {
	store := logstore.New()
	boom := errors.New("Failed to fetch logs: Internal Server Error")
	src := newFakeSource(
		data(`{"_time":1,"message":"kept"}`+"\n"+`{"_time":2`),
		model.IngestChunk{Source: "fake", Err: boom},
	)
	close(src.ch)

	metrics := NewMetrics(nil)
	err := NewProcessor(store, WithMetrics(metrics)).Run(context.Background(), src)
	assert.ErrorIs(t, err, boom)

	snap := store.Snapshot()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "kept", snap.Records[0].Message)
	assert.Equal(t, "Failed to fetch logs: Internal Server Error", snap.Err)
	assert.True(t, snap.Done)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors))
}

func TestProcessorCancellationPublishesNothing(t *testing.T) {
	store := logstore.New()
	src := newFakeSource() // never closes
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewProcessor(store).Run(ctx, src) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	snap := store.Snapshot()
	assert.False(t, snap.Done)
	assert.Empty(t, snap.Err)
}

func TestProcessorEmptyStream(t *testing.T) {
	store := logstore.New()
	src := newFakeSource()
	close(src.ch)

	require.NoError(t, NewProcessor(store).Run(context.Background(), src))
	snap := store.Snapshot()
	assert.Empty(t, snap.Records)
	assert.True(t, snap.Done)
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"logview_ingest_bytes_total",
		"logview_ingest_records_total",
		"logview_ingest_dropped_lines_total",
		"logview_ingest_errors_total",
	}, names)
}
