package logsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/tinytelemetry/logview/internal/model"
	"go.uber.org/zap"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "Failed to fetch logs: " + e.Status
}

// HTTPSource streams a log file from a fixed URL with a single GET.
type HTTPSource struct {
	url    string
	client *http.Client
	ch     chan model.IngestChunk
	cancel context.CancelFunc
}

// NewHTTPSource starts fetching url in a background goroutine. No timeout is
// applied; the request lives until the body ends or ctx is cancelled.
func NewHTTPSource(ctx context.Context, rawURL string, conf ...Config) *HTTPSource {
	return newHTTPSource(ctx, rawURL, http.DefaultClient, configOf(conf))
}

func newHTTPSource(ctx context.Context, rawURL string, client *http.Client, cfg Config) *HTTPSource {
	ctx, cancel := context.WithCancel(ctx)
	s := &HTTPSource{
		url:    rawURL,
		client: client,
		ch:     make(chan model.IngestChunk, cfg.BufferSize),
		cancel: cancel,
	}
	go s.read(ctx, cfg)
	return s
}

func (s *HTTPSource) read(ctx context.Context, cfg Config) {
	defer close(s.ch)

	body, err := s.open(ctx)
	if err != nil {
		if ctx.Err() == nil {
			cfg.Logger.Warn("log fetch failed", zap.String("url", s.url), zap.Error(err))
			send(ctx, s.ch, model.IngestChunk{Source: s.Name(), Err: err})
		}
		return
	}
	defer body.Close()

	pump(ctx, body, s.Name(), cfg.ChunkSize, s.ch)
}

func (s *HTTPSource) open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	// Asking explicitly turns off net/http's transparent decoding, so the
	// body is unwrapped below with klauspost's faster reader.
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "application/x-ndjson, application/json, text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		status := http.StatusText(resp.StatusCode)
		if status == "" {
			status = resp.Status
		}
		return nil, &StatusError{Code: resp.StatusCode, Status: status}
	}

	if !isGzip(resp, s.url) {
		return resp.Body, nil
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("opening gzip body: %w", err)
	}
	return &gzipBody{Reader: zr, body: resp.Body}, nil
}

func isGzip(resp *http.Response, rawURL string) bool {
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return true
	}
	u, err := url.Parse(rawURL)
	return err == nil && strings.HasSuffix(u.Path, ".gz")
}

type gzipBody struct {
	*gzip.Reader
	body io.ReadCloser
}

func (g *gzipBody) Close() error {
	g.Reader.Close()
	return g.body.Close()
}

func (s *HTTPSource) Chunks() <-chan model.IngestChunk { return s.ch }
func (s *HTTPSource) Stop()                            { s.cancel() }
func (s *HTTPSource) Name() string                     { return "http" }
