package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logview/internal/httpserver"
	"github.com/tinytelemetry/logview/internal/logging"
	"go.uber.org/zap"
)

func newServeCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Stream an NDJSON file over HTTP",
		Long: `Serve a newline-delimited JSON file at /logs with chunked transfer, the
way the viewer expects to fetch it. Use --delay and --serve-chunk to make
records arrive split across chunks, and --follow to keep streaming lines
appended to the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), st.cfg, args[0])
		},
	}

	cmd.Flags().String("addr", "", fmt.Sprintf("listen address (default %s)", defaultServeAddr))
	cmd.Flags().Int("serve-chunk", 0, fmt.Sprintf("bytes per written chunk (default %d)", defaultServeChunkSize))
	cmd.Flags().Duration("delay", 0, "pause between chunks")
	cmd.Flags().Bool("follow", false, "keep streaming lines appended to the file")
	cmd.Flags().Bool("gzip", false, "gzip responses for clients that accept it")
	return cmd
}

func runServe(ctx context.Context, cfg appConfig, path string) error {
	logger := logging.FromContext(ctx)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot serve %s: %w", path, err)
	}

	srv := httpserver.NewServer(httpserver.Config{
		Addr:       cfg.ServeAddr,
		Path:       path,
		ChunkSize:  cfg.ServeChunkSize,
		ChunkDelay: cfg.ServeChunkDelay,
		Follow:     cfg.ServeFollow,
		Gzip:       cfg.ServeGzip,
		Logger:     logger,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	logger.Info("serving logs", zap.String("addr", srv.Addr()), zap.String("file", path))

	printStartupBanner(bannerInfo{cfg: cfg, addr: srv.Addr(), path: path})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Println("\nShutting down gracefully...")
	return srv.Stop()
}

type bannerInfo struct {
	cfg  appConfig
	addr string
	path string
}

func printStartupBanner(c bannerInfo) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	option := func(label string, on bool, value string) string {
		if on {
			return fmt.Sprintf("    %s  %-14s %s", check, label, cyan.Render(value))
		}
		return fmt.Sprintf("    %s  %-14s %s", dot, label, dim.Render("disabled"))
	}

	logo := cyan.Bold(true).Render(`
    ╦  ╔═╗╔═╗╦  ╦╦╔═╗╦ ╦
    ║  ║ ║║ ╦╚╗╔╝║║╣ ║║║
    ╩═╝╚═╝╚═╝ ╚╝ ╩╚═╝╚╩╝`)

	separator := dim.Render("    ─────────────────────────────────")

	lines := []string{
		"",
		logo,
		"    " + dim.Render("v"+version),
		"",
		separator,
		"",
		bold.Render("    Endpoints"),
		"",
		fmt.Sprintf("    %s  Logs           %s", check, cyan.Render("http://"+c.addr+"/logs")),
		fmt.Sprintf("    %s  Health         %s", check, cyan.Render("http://"+c.addr+"/api/health")),
		fmt.Sprintf("    %s  Metrics        %s", check, cyan.Render("http://"+c.addr+"/metrics")),
		"",
		bold.Render("    Stream"),
		"",
		fmt.Sprintf("    %s  File           %s", check, dim.Render(shortenPath(c.path))),
		fmt.Sprintf("    %s  Chunk          %s", check, dim.Render(fmt.Sprintf("%d bytes", c.cfg.ServeChunkSize))),
		option("Delay", c.cfg.ServeChunkDelay > 0, c.cfg.ServeChunkDelay.String()),
		option("Follow", c.cfg.ServeFollow, "tail -f"),
		option("Gzip", c.cfg.ServeGzip, "on"),
		"",
		bold.Render("    Config"),
		"",
	}
	if c.cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(c.cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	lines = append(lines,
		"",
		separator,
		"",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"),
		"",
	)

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
