package framesource

import (
	"context"
	"sync"
	"sync/atomic"
)

// Mock implements Source for testing.
type Mock struct {
	// CaptureFunc is called when CaptureJPEG is invoked.
	// If nil, a small placeholder frame is returned.
	CaptureFunc func(ctx context.Context) ([]byte, error)

	captures atomic.Int64

	mu     sync.Mutex
	closed bool
}

// CaptureJPEG counts the call and delegates to CaptureFunc.
func (m *Mock) CaptureJPEG(ctx context.Context) ([]byte, error) {
	m.captures.Add(1)

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx)
	}
	return []byte("\xff\xd8mock-frame\xff\xd9"), nil
}

// Captures returns the number of CaptureJPEG calls.
func (m *Mock) Captures() int {
	return int(m.captures.Load())
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Source = (*Mock)(nil)
