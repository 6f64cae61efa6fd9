package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logview/internal/logging"
	"go.uber.org/zap"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

// cliState is filled by the root command before any subcommand runs.
type cliState struct {
	configPath string
	cfg        appConfig
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:   "logview",
		Short: "Stream newline-delimited JSON logs into a terminal viewer",
		Long: `logview fetches a newline-delimited JSON log stream, decodes it as it
arrives and shows it as an expandable table next to a per-hour timeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(st.configPath, cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			st.cfg = cfg

			logger, err := logging.New(logging.Config{Path: cfg.LogPath, Level: cfg.LogLevel})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
				logger = zap.NewNop()
			}
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.FromContext(cmd.Context()).Sync()
		},
	}

	root.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default is $HOME/.config/logview/config.yml)")

	root.AddCommand(newViewCmd(st))
	root.AddCommand(newServeCmd(st))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
