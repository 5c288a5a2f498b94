package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/visionmate/go-guide/pkg/tts"
)

// PlayFunc plays a synthesized audio buffer, blocking until done.
type PlayFunc func(ctx context.Context, result *tts.AudioResult) error

// SynthSpeaker voices text by synthesizing it with a TTS provider and
// handing the audio to a player.
type SynthSpeaker struct {
	provider tts.Provider
	play     PlayFunc
}

// NewSynthSpeaker creates a Speaker from a TTS provider and a player.
// If play is nil, CommandPlayer with a platform default is used.
func NewSynthSpeaker(provider tts.Provider, play PlayFunc) *SynthSpeaker {
	if play == nil {
		play = defaultPlayer()
	}
	return &SynthSpeaker{provider: provider, play: play}
}

// Say synthesizes and plays one utterance.
func (s *SynthSpeaker) Say(ctx context.Context, text string) error {
	result, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := s.play(ctx, result); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// CommandPlayer returns a PlayFunc that pipes audio to an external player
// command via stdin (e.g. "mpg123 -", "ffplay -nodisp -autoexit -").
func CommandPlayer(command string, args ...string) PlayFunc {
	return func(ctx context.Context, result *tts.AudioResult) error {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Stdin = bytes.NewReader(result.Audio)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}
		return nil
	}
}

// defaultPlayer picks an audio player that reads from stdin.
func defaultPlayer() PlayFunc {
	if runtime.GOOS == "darwin" {
		// afplay cannot read stdin; ffplay ships with ffmpeg
		return CommandPlayer("ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-")
	}
	return CommandPlayer("mpg123", "-q", "-")
}

// NewLogSpeaker returns a Speaker that logs utterances instead of playing
// audio. Useful for development machines without a TTS key.
func NewLogSpeaker(logger *slog.Logger) Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return SpeakerFunc(func(ctx context.Context, text string) error {
		logger.Info("speak", "text", text)
		return nil
	})
}

var _ Speaker = (*SynthSpeaker)(nil)
