package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ingestion counters.
type Metrics struct {
	Bytes        prometheus.Counter
	Records      prometheus.Counter
	DroppedLines prometheus.Counter
	Errors       prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Bytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Bytes read from the log source.",
		}),
		Records: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Log records decoded and published.",
		}),
		DroppedLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "ingest",
			Name:      "dropped_lines_total",
			Help:      "Lines that could not be decoded into a record.",
		}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Ingestions that ended with a transport error.",
		}),
	}
}
