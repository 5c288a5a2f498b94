package haptics

import (
	"context"
	"sync"
	"time"
)

// Mock implements Player for testing. It records every pattern played.
type Mock struct {
	// PlayFunc is called when Play is invoked. If nil, Play returns nil.
	PlayFunc func(ctx context.Context, pattern Pattern) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Play invocation.
type MockCall struct {
	Pattern Pattern
	Time    time.Time
}

// Play records the call and delegates to PlayFunc if set.
func (m *Mock) Play(ctx context.Context, pattern Pattern) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Pattern: pattern, Time: time.Now()})
	m.mu.Unlock()

	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, pattern)
	}
	return nil
}

// Calls returns all recorded Play invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// PatternNames returns the names of all played patterns, in order.
func (m *Mock) PatternNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.calls))
	for i, c := range m.calls {
		names[i] = c.Pattern.Name
	}
	return names
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

var _ Player = (*Mock)(nil)
