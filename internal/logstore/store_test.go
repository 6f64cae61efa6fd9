package logstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/logview/internal/model"
)

func rec(ms int64) model.LogRecord {
	return model.LogRecord{Time: ms}
}

func TestStoreAppendPublishesNewSnapshot(t *testing.T) {
	s := New()
	empty := s.Snapshot()
	require.NotNil(t, empty)
	assert.Empty(t, empty.Records)

	s.Append([]model.LogRecord{rec(1), rec(2)})
	first := s.Snapshot()
	s.Append([]model.LogRecord{rec(3)})
	second := s.Snapshot()

	assert.Len(t, first.Records, 2, "earlier snapshot is immutable")
	assert.Len(t, second.Records, 3)
	assert.Equal(t, int64(3), second.Records[2].Time)
	assert.Greater(t, second.Version, first.Version)
}

func TestStoreAppendEmptyBatchIsNoop(t *testing.T) {
	s := New()
	before := s.Snapshot()
	s.Append(nil)
	assert.Same(t, before, s.Snapshot())
}

func TestStoreFailKeepsRecords(t *testing.T) {
	s := New()
	s.Append([]model.LogRecord{rec(1)})
	s.Fail("Failed to fetch logs: boom")
	s.Fail("second failure")
	s.Append([]model.LogRecord{rec(2)})

	snap := s.Snapshot()
	assert.Len(t, snap.Records, 1)
	assert.Equal(t, "Failed to fetch logs: boom", snap.Err)
	assert.True(t, snap.Done)
}

func TestStoreFinish(t *testing.T) {
	s := New()
	s.Finish()
	snap := s.Snapshot()
	assert.True(t, snap.Done)
	assert.Empty(t, snap.Err)
}

func TestStoreSubscribeCoalesces(t *testing.T) {
	s := New()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Append([]model.LogRecord{rec(1)})
	s.Append([]model.LogRecord{rec(2)})
	s.Append([]model.LogRecord{rec(3)})

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced notification")
	default:
	}
	assert.Len(t, s.Snapshot().Records, 3)
}

func TestStoreUnsubscribeClosesChannel(t *testing.T) {
	s := New()
	ch, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	s.Append([]model.LogRecord{rec(1)})
}

func TestStoreCloseStopsWrites(t *testing.T) {
	s := New()
	ch, unsubscribe := s.Subscribe()
	s.Close()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	s.Append([]model.LogRecord{rec(1)})
	s.Fail("late")
	assert.Empty(t, s.Snapshot().Records)
	assert.Empty(t, s.Snapshot().Err)

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestStoreConcurrentReadersNeverSeeTornState(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				for j, r := range snap.Records {
					if r.Time != int64(j) {
						t.Errorf("record %d has time %d", j, r.Time)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 500; i += 5 {
		batch := make([]model.LogRecord, 5)
		for j := range batch {
			batch[j] = rec(int64(i + j))
		}
		s.Append(batch)
	}
	close(stop)
	wg.Wait()
	assert.Len(t, s.Snapshot().Records, 500)
}
