package guidance

import (
	"log/slog"
	"time"
)

// Config holds all tunable parameters for the guidance loop.
type Config struct {
	// Endpoint is the websocket URL of the guidance backend,
	// e.g. ws://host:8000/ws/guide.
	Endpoint string

	// CaptureInterval is the fixed wall-clock cadence between capture
	// attempts. A slow server never delays the next tick.
	CaptureInterval time.Duration

	// Cooldown is the minimum interval between spoken instructions.
	Cooldown time.Duration

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// MaxFrameBytes bounds the base64-encoded frame payload.
	MaxFrameBytes int

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		CaptureInterval:  400 * time.Millisecond,
		Cooldown:         1500 * time.Millisecond,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		MaxFrameBytes:    512 * 1024, // matches server-side message limit
	}
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	if c.CaptureInterval <= 0 {
		return ErrBadCaptureInterval
	}
	if c.Cooldown < 0 {
		return ErrBadCooldown
	}
	return nil
}

// logger returns the configured logger or the process default.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
