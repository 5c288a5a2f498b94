package guidance

import "errors"

// Sentinel errors for session and channel lifecycle.
var (
	// ErrSessionActive is returned by Start when a session is already
	// running. The existing session is left untouched.
	ErrSessionActive = errors.New("guidance: session already active")

	// ErrNoEndpoint is returned when the config has no backend URL.
	ErrNoEndpoint = errors.New("guidance: endpoint required")

	// ErrBadCaptureInterval is returned when the capture interval is not
	// positive. The capture ticker cannot run on a zero period.
	ErrBadCaptureInterval = errors.New("guidance: capture interval must be positive")

	// ErrBadCooldown is returned when the instruction cooldown is negative.
	ErrBadCooldown = errors.New("guidance: cooldown must not be negative")

	// ErrNoSource is returned when the loop has no frame source.
	ErrNoSource = errors.New("guidance: frame source required")

	// ErrChannelClosed is returned when sending on a closed channel.
	ErrChannelClosed = errors.New("guidance: channel closed")

	// ErrFrameTooLarge is returned when an encoded frame exceeds the
	// configured payload bound.
	ErrFrameTooLarge = errors.New("guidance: frame exceeds max payload size")
)
