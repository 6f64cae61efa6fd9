package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tinytelemetry/logview/internal/logsource"
	"github.com/tinytelemetry/logview/internal/model"
	"go.uber.org/zap"
)

// Config holds the serve command's tunables.
type Config struct {
	Addr       string
	Path       string        // log file to stream
	ChunkSize  int           // bytes per write
	ChunkDelay time.Duration // pause between writes
	Follow     bool          // keep streaming appended lines
	Gzip       bool
	Registry   *prometheus.Registry
	Logger     *zap.Logger
}

// Server streams a newline-delimited JSON log file over HTTP.
type Server struct {
	cfg       Config
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	logger    *zap.Logger

	requests prometheus.Counter
	written  prometheus.Counter
}

// NewServer creates a new HTTP log server.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = model.DefaultServeAddr
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = model.DefaultServeChunkSize
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(cfg.Registry)
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "serve",
			Name:      "streams_total",
			Help:      "Log streams started.",
		}),
		written: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "logview",
			Subsystem: "serve",
			Name:      "bytes_total",
			Help:      "Log bytes written to clients.",
		}),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/logs", s.handleLogs)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{})))

	if s.cfg.Gzip {
		return gzhttp.GzipHandler(r)
	}
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: a followed stream stays open indefinitely.
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "log file not readable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
		"file":   s.cfg.Path,
		"bytes":  info.Size(),
		"follow": s.cfg.Follow,
	})
}

// recovery turns handler panics into a 500, except http.ErrAbortHandler,
// which is passed on to net/http to abort the connection.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		if err == http.ErrAbortHandler {
			panic(err)
		}
		s.logger.Error("handler panic", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// handleLogs streams the file chunk by chunk, flushing after each write so
// clients see partial lines cross chunk boundaries.
func (s *Server) handleLogs(c *gin.Context) {
	ctx := c.Request.Context()
	src := logsource.NewFileSource(ctx, s.cfg.Path, logsource.Config{
		ChunkSize: s.cfg.ChunkSize,
		Follow:    s.cfg.Follow,
		Logger:    s.logger,
	})
	defer src.Stop()

	// Read the first chunk before committing to a status code.
	first, ok := <-src.Chunks()
	if ok && first.Err != nil {
		status := http.StatusInternalServerError
		if errors.Is(first.Err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		s.logger.Warn("log stream failed", zap.String("file", src.Path()), zap.Error(first.Err))
		c.JSON(status, gin.H{"error": "log file unavailable"})
		return
	}

	s.requests.Inc()
	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	if !ok {
		return
	}

	pending := &first
	c.Stream(func(w io.Writer) bool {
		chunk := pending
		if chunk == nil {
			next, ok := <-src.Chunks()
			if !ok {
				return false
			}
			chunk = &next
		}
		pending = nil

		if chunk.Err != nil {
			s.logger.Warn("log stream interrupted", zap.String("file", src.Path()), zap.Error(chunk.Err))
			// The status is already sent; drop the connection so the client
			// sees a truncated body instead of a clean end of stream.
			panic(http.ErrAbortHandler)
		}
		n, err := w.Write(chunk.Data)
		s.written.Add(float64(n))
		if err != nil {
			return false
		}
		if s.cfg.ChunkDelay > 0 {
			select {
			case <-time.After(s.cfg.ChunkDelay):
			case <-ctx.Done():
				return false
			}
		}
		return true
	})
}
