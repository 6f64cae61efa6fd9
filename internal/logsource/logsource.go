package logsource

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tinytelemetry/logview/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the default size of a single read, in bytes.
	DefaultChunkSize = model.DefaultChunkSize

	// DefaultBuffer is the default channel buffer size, in chunks.
	DefaultBuffer = 64
)

// LogSource is a unified interface for all log input sources (http, file, stdin).
// A source sends raw chunks with no regard for line boundaries. The channel
// is closed when the source is exhausted or stopped; a chunk carrying Err is
// always the last one.
type LogSource interface {
	Chunks() <-chan model.IngestChunk // read-only channel of raw chunks
	Stop()                            // abandon outstanding reads
	Name() string                     // "http", "file", "stdin"
}

// Config holds tunable parameters shared by all sources.
type Config struct {
	ChunkSize  int
	BufferSize int
	Follow     bool // file sources keep reading appended data
	Logger     *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBuffer
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func configOf(conf []Config) Config {
	if len(conf) > 0 {
		return conf[0].withDefaults()
	}
	return Config{}.withDefaults()
}

// New picks a source for location: an http(s) URL, "-" for stdin, or a
// file path.
func New(ctx context.Context, location string, conf ...Config) LogSource {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(ctx, location, conf...)
	case location == "-":
		return NewStdinSource(ctx, conf...)
	default:
		return NewFileSource(ctx, location, conf...)
	}
}

// pump copies r to ch in chunks until EOF, a read error, or cancellation.
// Reads happen on their own goroutine so a blocked Read (stdin, a stalled
// body) cannot delay Stop. Errors caused by cancellation are not reported.
func pump(ctx context.Context, r io.Reader, name string, chunkSize int, ch chan<- model.IngestChunk) {
	reads := make(chan model.IngestChunk)
	go func() {
		defer close(reads)
		buf := make([]byte, chunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := append([]byte(nil), buf[:n]...)
				select {
				case reads <- model.IngestChunk{Source: name, Data: data}:
				case <-ctx.Done():
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				send(ctx, reads, model.IngestChunk{Source: name, Err: err})
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-reads:
			if !ok {
				return
			}
			if c.Err != nil && ctx.Err() != nil {
				return
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
			if c.Err != nil {
				return
			}
		}
	}
}

func send(ctx context.Context, ch chan<- model.IngestChunk, c model.IngestChunk) {
	select {
	case ch <- c:
	case <-ctx.Done():
	}
}
