package logsource

import (
	"context"
	"io"
	"os"

	"github.com/tinytelemetry/logview/internal/model"
)

// StdinSource reads a log stream piped into the process.
type StdinSource struct {
	ch     chan model.IngestChunk
	cancel context.CancelFunc
}

// NewStdinSource creates a StdinSource that reads from stdin in a background goroutine.
func NewStdinSource(ctx context.Context, conf ...Config) *StdinSource {
	return newStdinSourceWithReader(ctx, os.Stdin, conf...)
}

func newStdinSourceWithReader(ctx context.Context, r io.Reader, conf ...Config) *StdinSource {
	cfg := configOf(conf)
	ctx, cancel := context.WithCancel(ctx)
	s := &StdinSource{
		ch:     make(chan model.IngestChunk, cfg.BufferSize),
		cancel: cancel,
	}
	go func() {
		defer close(s.ch)
		pump(ctx, r, s.Name(), cfg.ChunkSize, s.ch)
	}()
	return s
}

func (s *StdinSource) Chunks() <-chan model.IngestChunk { return s.ch }
func (s *StdinSource) Stop()                            { s.cancel() }
func (s *StdinSource) Name() string                     { return "stdin" }
