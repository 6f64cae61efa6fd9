package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tinytelemetry/logview/internal/logging"
	"github.com/tinytelemetry/logview/internal/model"
)

const (
	defaultSourceURL      = model.DefaultSourceURL
	defaultChunkSize      = model.DefaultChunkSize
	defaultOverscan       = model.DefaultOverscan
	defaultSummaryLines   = model.DefaultSummaryLines
	defaultSkin           = model.DefaultSkin
	defaultServeAddr      = model.DefaultServeAddr
	defaultServeChunkSize = model.DefaultServeChunkSize
	defaultServeDelay     = model.DefaultServeDelay
	defaultLogLevel       = "info"
)

// appConfig is internal runtime configuration.
type appConfig struct {
	SourceURL          string        `mapstructure:"source-url"`
	ChunkSize          int           `mapstructure:"chunk-size"`
	Overscan           int           `mapstructure:"overscan"`
	SummaryLines       int           `mapstructure:"summary-lines"`
	Timezone           string        `mapstructure:"timezone"`
	Skin               string        `mapstructure:"skin"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	LogLevel           string        `mapstructure:"log-level"`
	LogPath            string        `mapstructure:"log-path"`
	ServeAddr          string        `mapstructure:"serve-addr"`
	ServeChunkSize     int           `mapstructure:"serve-chunk-size"`
	ServeChunkDelay    time.Duration `mapstructure:"serve-chunk-delay"`
	ServeFollow        bool          `mapstructure:"serve-follow"`
	ServeGzip          bool          `mapstructure:"serve-gzip"`
	MetricsAddr        string        `mapstructure:"metrics-addr"`
	ConfigPath         string        `mapstructure:"-"` // not from config file
}

// flagKeys maps command-line flag names to config keys. Flags only take
// effect when set explicitly.
var flagKeys = map[string]string{
	"chunk-size":     "chunk-size",
	"overscan":       "overscan",
	"summary-lines":  "summary-lines",
	"timezone":       "timezone",
	"skin":           "skin",
	"metrics-addr":   "metrics-addr",
	"log-level":      "log-level",
	"addr":           "serve-addr",
	"serve-chunk":    "serve-chunk-size",
	"delay":          "serve-chunk-delay",
	"follow":         "serve-follow",
	"gzip":           "serve-gzip",
	"reverse-scroll": "reverse-scroll-wheel",
}

func loadConfig(configPath string, cmd *cobra.Command) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LOGVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("source-url", defaultSourceURL)
	v.SetDefault("chunk-size", defaultChunkSize)
	v.SetDefault("overscan", defaultOverscan)
	v.SetDefault("summary-lines", defaultSummaryLines)
	v.SetDefault("timezone", "Local")
	v.SetDefault("skin", defaultSkin)
	v.SetDefault("reverse-scroll-wheel", false)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-path", logging.DefaultPath())
	v.SetDefault("serve-addr", defaultServeAddr)
	v.SetDefault("serve-chunk-size", defaultServeChunkSize)
	v.SetDefault("serve-chunk-delay", defaultServeDelay)
	v.SetDefault("serve-follow", false)
	v.SetDefault("serve-gzip", false)
	v.SetDefault("metrics-addr", "")

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "logview", "config.yml"))
	}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
		found = false
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if found {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	if cfg.ChunkSize <= 0 {
		return cfg, fmt.Errorf("invalid chunk-size: %d", cfg.ChunkSize)
	}
	if cfg.SummaryLines <= 0 {
		return cfg, fmt.Errorf("invalid summary-lines: %d", cfg.SummaryLines)
	}
	if cfg.Overscan < 0 {
		return cfg, fmt.Errorf("invalid overscan: %d", cfg.Overscan)
	}
	if _, err := cfg.location(); err != nil {
		return cfg, err
	}

	// Expand ~ in log-path
	if strings.HasPrefix(cfg.LogPath, "~/") {
		cfg.LogPath = filepath.Join(home, cfg.LogPath[2:])
	}

	return cfg, nil
}

// location resolves the timezone used to bucket records into days and
// hours. Empty and "Local" mean the system zone.
func (c appConfig) location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// configDir is where skins are looked up.
func (c appConfig) configDir() string {
	if c.ConfigPath != "" {
		return filepath.Dir(c.ConfigPath)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "logview")
}
