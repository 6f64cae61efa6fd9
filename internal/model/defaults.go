package model

import "time"

// Shared defaults used by the viewer and the serve command.
const (
	DefaultSourceURL      = "http://127.0.0.1:3000/logs"
	DefaultChunkSize      = 32 * 1024
	DefaultOverscan       = 5
	DefaultSummaryLines   = 2
	DefaultSkin           = "default"
	DefaultServeAddr      = "127.0.0.1:3000"
	DefaultServeChunkSize = 4 * 1024

	DefaultServeDelay time.Duration = 0
)
