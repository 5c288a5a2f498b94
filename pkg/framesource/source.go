// Package framesource provides camera abstractions producing encoded JPEG
// frames for the guidance loop.
//
// A Source is exclusively owned by one active guidance session; callers must
// not capture from the same source concurrently. Transient capture failures
// are reported per call and are expected: the guidance loop skips the tick
// and tries again on the next one.
package framesource

import (
	"context"
	"errors"
)

// Sentinel errors.
var (
	// ErrNoFrame is returned when no frame is currently available.
	// Callers should treat this as a transient condition.
	ErrNoFrame = errors.New("framesource: no frame available")

	// ErrClosed is returned when capturing from a closed source.
	ErrClosed = errors.New("framesource: source closed")
)

// Source produces JPEG-encoded frames on demand.
type Source interface {
	// CaptureJPEG returns the next frame as JPEG bytes.
	// Returns ErrNoFrame for transient capture failures.
	CaptureJPEG(ctx context.Context) ([]byte, error)

	// Close releases the underlying device. Idempotent.
	Close() error
}
