package speech

import (
	"context"
	"sync"
	"time"
)

// MockAnnouncer implements Announcer for testing. It records every
// announcement instead of voicing it.
type MockAnnouncer struct {
	// SpeakFunc is called when Speak is invoked. If nil, Speak returns nil.
	SpeakFunc func(ctx context.Context, text string, priority Priority) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Speak invocation.
type MockCall struct {
	Text     string
	Priority Priority
	Time     time.Time
}

// Speak records the call and delegates to SpeakFunc if set.
func (m *MockAnnouncer) Speak(ctx context.Context, text string, priority Priority) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, Priority: priority, Time: time.Now()})
	m.mu.Unlock()

	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text, priority)
	}
	return nil
}

// Calls returns all recorded announcements.
func (m *MockAnnouncer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Texts returns the announced texts in order.
func (m *MockAnnouncer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.calls))
	for i, c := range m.calls {
		texts[i] = c.Text
	}
	return texts
}

// Reset clears recorded calls.
func (m *MockAnnouncer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// MockSpeaker implements Speaker for testing the queue.
type MockSpeaker struct {
	// SayFunc is called when Say is invoked. If nil, Say returns nil.
	SayFunc func(ctx context.Context, text string) error

	mu    sync.Mutex
	texts []string
}

// Say records the utterance and delegates to SayFunc if set.
func (m *MockSpeaker) Say(ctx context.Context, text string) error {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.SayFunc != nil {
		return m.SayFunc(ctx, text)
	}
	return nil
}

// Texts returns all voiced utterances in order.
func (m *MockSpeaker) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

var (
	_ Announcer = (*MockAnnouncer)(nil)
	_ Speaker   = (*MockSpeaker)(nil)
)
