package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logview/internal/ingest"
	"github.com/tinytelemetry/logview/internal/logging"
	"github.com/tinytelemetry/logview/internal/logsource"
	"github.com/tinytelemetry/logview/internal/logstore"
	"github.com/tinytelemetry/logview/internal/tui"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newViewCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [url|file|-]",
		Short: "Open the log viewer",
		Long: `Open the log viewer on an NDJSON stream. The source is an http(s) URL,
a file path (.gz is decompressed) or "-" for stdin. Without an argument the
configured source-url is fetched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := st.cfg.SourceURL
			if len(args) == 1 {
				location = args[0]
			}
			return runView(cmd.Context(), st.cfg, location)
		},
	}

	cmd.Flags().Int("chunk-size", 0, fmt.Sprintf("bytes per read (default %d)", defaultChunkSize))
	cmd.Flags().Int("overscan", 0, fmt.Sprintf("rows rendered outside the viewport (default %d)", defaultOverscan))
	cmd.Flags().Int("summary-lines", 0, fmt.Sprintf("lines shown per collapsed row (default %d)", defaultSummaryLines))
	cmd.Flags().String("timezone", "", "IANA zone for day and hour bucketing (default Local)")
	cmd.Flags().String("skin", "", "skin name under <config dir>/skins")
	cmd.Flags().Bool("reverse-scroll", false, "reverse the mouse wheel")
	cmd.Flags().String("metrics-addr", "", "serve ingestion metrics on this address")
	return cmd
}

func runView(ctx context.Context, cfg appConfig, location string) error {
	logger := logging.FromContext(ctx)

	loc, err := cfg.location()
	if err != nil {
		return err
	}
	if err := tui.InitializeSkin(cfg.Skin, cfg.configDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load skin '%s': %v (using default)\n", cfg.Skin, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := ingest.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		stop, err := startMetricsServer(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer stop()
	}

	store := logstore.New()
	defer store.Close()

	src := logsource.New(ctx, location, logsource.Config{
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
	})
	processor := ingest.NewProcessor(store, ingest.WithMetrics(metrics), ingest.WithLogger(logger))

	viewer := tui.NewViewerModel(tui.Options{
		Store:              store,
		Location:           loc,
		Overscan:           cfg.Overscan,
		SummaryLines:       cfg.SummaryLines,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
		SourceName:         location,
		Logger:             logger,
	})
	app := tui.NewApp(viewer)
	defer app.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	if location == "-" {
		// stdin carries the logs; keys come from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(app, opts...)

	g, gctx := errgroup.WithContext(ctx)

	// Ingestion failures are published to the store and shown in the UI.
	g.Go(func() error {
		if err := processor.Run(gctx, src); err != nil {
			logger.Warn("ingestion stopped", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
				return fmt.Errorf("TUI requires a real terminal")
			}
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// startMetricsServer exposes reg on addr/metrics and returns its shutdown.
func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", listener.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
