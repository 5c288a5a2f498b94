package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, server *httptest.Server) *OpenAI {
	t.Helper()
	p, err := NewOpenAI(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithRetry(2, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI(); err != ErrNoAPIKey {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

func TestOpenAI_Synthesize(t *testing.T) {
	audio := []byte("mp3-audio-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: got %q", got)
		}
		w.Write(audio)
	}))
	defer server.Close()

	p := newTestProvider(t, server)
	defer p.Close()

	result, err := p.Synthesize(context.Background(), "Move slightly left.")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(result.Audio) != string(audio) {
		t.Errorf("audio: got %q", result.Audio)
	}
	if result.Format != FormatMP3 {
		t.Errorf("format: got %q", result.Format)
	}
	if result.CharCount != len("Move slightly left.") {
		t.Errorf("char count: got %d", result.CharCount)
	}
}

func TestOpenAI_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	p := newTestProvider(t, server)
	defer p.Close()

	if _, err := p.Synthesize(context.Background(), "hello"); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls: got %d, want 2", got)
	}
}

func TestOpenAI_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server)
	defer p.Close()

	_, err := p.Synthesize(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsUnauthorized() || apiErr.IsRetryable() {
		t.Errorf("classification wrong: %+v", apiErr)
	}
	if apiErr.Message != "Incorrect API key provided" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestOpenAI_EmptyTextAndClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	p := newTestProvider(t, server)

	if _, err := p.Synthesize(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text: got %v", err)
	}

	p.Close()
	if _, err := p.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrProviderClosed) {
		t.Errorf("closed: got %v", err)
	}
}
