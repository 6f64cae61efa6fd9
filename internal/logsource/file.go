package logsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/nxadm/tail"
	"github.com/tinytelemetry/logview/internal/model"
	"go.uber.org/zap"
)

// FileSource reads a local log file, optionally following appended data.
type FileSource struct {
	path   string
	ch     chan model.IngestChunk
	cancel context.CancelFunc
}

// NewFileSource starts reading path in a background goroutine. Files ending
// in .gz are decompressed; follow mode does not apply to them.
func NewFileSource(ctx context.Context, path string, conf ...Config) *FileSource {
	cfg := configOf(conf)
	ctx, cancel := context.WithCancel(ctx)
	s := &FileSource{
		path:   path,
		ch:     make(chan model.IngestChunk, cfg.BufferSize),
		cancel: cancel,
	}
	go func() {
		defer close(s.ch)
		if cfg.Follow && !strings.HasSuffix(path, ".gz") {
			s.follow(ctx, cfg)
			return
		}
		s.readOnce(ctx, cfg)
	}()
	return s
}

func (s *FileSource) readOnce(ctx context.Context, cfg Config) {
	f, err := os.Open(s.path)
	if err != nil {
		send(ctx, s.ch, model.IngestChunk{Source: s.Name(), Err: fmt.Errorf("opening log file: %w", err)})
		return
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			send(ctx, s.ch, model.IngestChunk{Source: s.Name(), Err: fmt.Errorf("opening gzip file: %w", err)})
			return
		}
		defer zr.Close()
		r = zr
	}
	pump(ctx, r, s.Name(), cfg.ChunkSize, s.ch)
}

// follow streams the file from the start and then every appended line until
// ctx is cancelled. Each line is sent as its own newline-terminated chunk.
func (s *FileSource) follow(ctx context.Context, cfg Config) {
	t, err := tail.TailFile(s.path, tail.Config{
		Follow:    true,
		ReOpen:    true, // survive log rotation
		MustExist: true,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		send(ctx, s.ch, model.IngestChunk{Source: s.Name(), Err: fmt.Errorf("tailing log file: %w", err)})
		return
	}
	defer t.Cleanup()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Err(); err != nil && ctx.Err() == nil {
					send(ctx, s.ch, model.IngestChunk{Source: s.Name(), Err: err})
				}
				return
			}
			if line.Err != nil {
				cfg.Logger.Warn("tail read error", zap.String("path", s.path), zap.Error(line.Err))
				continue
			}
			select {
			case s.ch <- model.IngestChunk{Source: s.Name(), Data: []byte(line.Text + "\n")}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *FileSource) Chunks() <-chan model.IngestChunk { return s.ch }
func (s *FileSource) Stop()                            { s.cancel() }
func (s *FileSource) Name() string                     { return "file" }

// Path returns the file being read.
func (s *FileSource) Path() string { return s.path }
