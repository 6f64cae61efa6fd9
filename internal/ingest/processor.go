package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/logview/internal/decoder"
	"github.com/tinytelemetry/logview/internal/logsource"
	"github.com/tinytelemetry/logview/internal/model"
	"go.uber.org/zap"
)

// Sink receives decoded records. logstore.Store satisfies it.
type Sink interface {
	Append(batch []model.LogRecord)
	Fail(msg string)
	Finish()
}

// Processor drives one ingestion: chunks from a source go through the
// stream decoder and every completed batch is appended to the sink as soon
// as it is available.
type Processor struct {
	sink    Sink
	metrics *Metrics
	logger  *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics records ingestion counters.
func WithMetrics(m *Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithLogger sets the processor's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a processor that publishes to sink.
func NewProcessor(sink Sink, opts ...Option) *Processor {
	p := &Processor{
		sink:    sink,
		metrics: NewMetrics(nil),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consumes src until it is exhausted, fails, or ctx is cancelled, and
// always stops src before returning.
//
// A transport failure is published to the sink as a single error string;
// records appended before it stay. Cancellation publishes nothing.
func (p *Processor) Run(ctx context.Context, src logsource.LogSource) error {
	defer src.Stop()

	logger := p.logger.With(
		zap.String("session", uuid.NewString()),
		zap.String("source", src.Name()),
	)
	dec := decoder.New(decoder.WithLogger(logger))
	started := time.Now()
	logger.Info("ingestion started")

	var dropped int
	publish := func(batch []model.LogRecord) {
		if n := dec.Stats().Dropped; n > dropped {
			p.metrics.DroppedLines.Add(float64(n - dropped))
			dropped = n
		}
		if len(batch) == 0 {
			return
		}
		p.metrics.Records.Add(float64(len(batch)))
		p.sink.Append(batch)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("ingestion cancelled", zap.Int("pending_bytes", dec.Pending()))
			return nil

		case chunk, ok := <-src.Chunks():
			if !ok {
				publish(dec.Close())
				p.sink.Finish()
				stats := dec.Stats()
				logger.Info("ingestion finished",
					zap.Int("decoded", stats.Decoded),
					zap.Int("dropped", stats.Dropped),
					zap.Duration("elapsed", time.Since(started)),
				)
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			if chunk.Err != nil {
				p.metrics.Errors.Inc()
				p.sink.Fail(chunk.Err.Error())
				logger.Warn("ingestion failed", zap.Error(chunk.Err))
				return chunk.Err
			}
			p.metrics.Bytes.Add(float64(len(chunk.Data)))
			publish(dec.Write(chunk.Data))
		}
	}
}
