// Package tts provides text-to-speech synthesis for spoken guidance.
//
// The guidance client only needs short utterances, so the interface is a
// single blocking Synthesize call. The OpenAI provider implements it over
// the speech HTTP API; the Mock serves tests and audio-less environments.
//
//	provider, _ := tts.NewOpenAI(tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Move slightly left.")
//	// result.Audio contains MP3 audio bytes
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding.
	Format Format

	// CharCount is the number of characters synthesized.
	CharCount int

	// Latency is the total request time.
	Latency time.Duration
}

// Format identifies the audio container/codec of a result.
type Format string

// Output formats supported by the OpenAI speech endpoint.
const (
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm"
)
