// Package logstore holds the shared, append-only log collection. One writer
// publishes immutable snapshots; any number of readers load them without
// locking.
package logstore

import (
	"sync"
	"sync/atomic"

	"github.com/tinytelemetry/logview/internal/model"
)

// Snapshot is an immutable view of the collection. Records must not be
// modified by readers.
type Snapshot struct {
	Records []model.LogRecord
	Err     string // set once when ingestion fails
	Done    bool   // no more records will arrive
	Version uint64
}

// Reader is the read-only handle handed to views.
type Reader interface {
	Snapshot() *Snapshot
	Subscribe() (<-chan struct{}, func())
}

// Store publishes snapshots of the log collection.
type Store struct {
	current atomic.Pointer[Snapshot]

	// records is the writer's backing slice. Snapshots hold length-capped
	// views of it, so appends never touch elements a reader can see.
	records []model.LogRecord

	mu     sync.Mutex // serialises writers and subscriber bookkeeping
	subs   map[int]chan struct{}
	nextID int
	closed bool
}

// New creates an empty store.
func New() *Store {
	s := &Store{subs: make(map[int]chan struct{})}
	s.current.Store(&Snapshot{})
	return s
}

// Snapshot returns the latest published snapshot. It never returns nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Append publishes a new snapshot with batch added after the existing
// records. Existing snapshots are left untouched.
func (s *Store) Append(batch []model.LogRecord) {
	if len(batch) == 0 {
		return
	}
	s.publish(func(prev *Snapshot) *Snapshot {
		if prev.Done {
			return nil
		}
		s.records = append(s.records, batch...)
		n := len(s.records)
		return &Snapshot{Records: s.records[:n:n], Err: prev.Err, Version: prev.Version + 1}
	})
}

// Fail records an ingestion error and marks the collection done. Records
// already appended stay visible. Only the first failure is kept.
func (s *Store) Fail(msg string) {
	s.publish(func(prev *Snapshot) *Snapshot {
		if prev.Done {
			return nil
		}
		return &Snapshot{Records: prev.Records, Err: msg, Done: true, Version: prev.Version + 1}
	})
}

// Finish marks the collection done without an error.
func (s *Store) Finish() {
	s.publish(func(prev *Snapshot) *Snapshot {
		if prev.Done {
			return nil
		}
		return &Snapshot{Records: prev.Records, Err: prev.Err, Done: true, Version: prev.Version + 1}
	})
}

// Subscribe returns a channel that receives a value whenever a new snapshot
// is published. Notifications coalesce: a slow reader sees one pending
// signal and should load the latest snapshot. The returned function
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close releases all subscribers. Writes after Close are no-ops.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) publish(next func(prev *Snapshot) *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	snap := next(s.current.Load())
	if snap == nil {
		return
	}
	s.current.Store(snap)
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
