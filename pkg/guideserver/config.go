package guideserver

import (
	"errors"
	"log/slog"
	"time"
)

// ErrNoAnalyzer is returned when a server is created without an analyzer.
var ErrNoAnalyzer = errors.New("guideserver: no analyzer configured")

// Config holds the server's tunable parameters.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// ThrottleWindow is the minimum interval between analyzed frames per
	// connection. Frames arriving sooner get a throttled acknowledgement
	// instead of a full analysis.
	ThrottleWindow time.Duration

	// InstructionRepeat is how long an unchanged instruction is blanked
	// in replies before being repeated.
	InstructionRepeat time.Duration

	// MaxFrameBytes bounds the inbound message size.
	MaxFrameBytes int

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8000",
		ThrottleWindow:    300 * time.Millisecond,
		InstructionRepeat: 2 * time.Second,
		MaxFrameBytes:     512 * 1024,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
