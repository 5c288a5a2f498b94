package haptics

import (
	"context"
	"log/slog"
	"time"
)

// ConsolePlayer is a development Player that logs patterns instead of
// driving a motor. It sleeps through the pattern so timing behavior
// matches a real device.
type ConsolePlayer struct {
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger

	// NoSleep skips pulse timing. Useful in tests.
	NoSleep bool
}

// Play logs the pattern and waits out its duration.
func (c *ConsolePlayer) Play(ctx context.Context, pattern Pattern) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("haptic", "pattern", pattern.Name, "pulses", len(pattern.Pulses))

	if c.NoSleep || pattern.Zero() {
		return nil
	}

	t := time.NewTimer(pattern.Duration())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Player = (*ConsolePlayer)(nil)
