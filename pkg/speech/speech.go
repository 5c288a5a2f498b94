// Package speech provides the spoken-output sink for the guidance client.
//
// Speaker is the raw voice: it blocks until an utterance has been played.
// Announcer is what the rest of the system talks to: a serializing queue in
// front of a Speaker that guarantees utterances never overlap and that
// important announcements are not starved by ambient guidance chatter.
package speech

import "context"

// Priority classifies an announcement.
type Priority int

const (
	// PriorityNormal is ambient guidance output. It queues behind whatever
	// is already pending.
	PriorityNormal Priority = iota

	// PriorityHigh is an explicit, user-visible announcement (session
	// started/stopped, disconnected). It jumps ahead of pending normal
	// announcements but never cuts off the utterance in progress.
	PriorityHigh
)

// Speaker voices a single utterance, blocking until playback completes.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Announcer accepts announcements for serialized playback.
// Speak returns once the announcement is enqueued, not once it is voiced.
type Announcer interface {
	Speak(ctx context.Context, text string, priority Priority) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string) error

// Say calls f.
func (f SpeakerFunc) Say(ctx context.Context, text string) error {
	return f(ctx, text)
}
