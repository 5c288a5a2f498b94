// Package haptics provides named vibration patterns and playback for
// directional guidance cues.
//
// Patterns are short pulse trains. Each direction the guidance loop can emit
// maps to a distinct pattern so a user can distinguish "slight left" from
// "hard turn" without audio.
package haptics

import (
	"context"
	"time"
)

// Pulse is a single vibration burst followed by a pause.
type Pulse struct {
	// On is how long the motor vibrates.
	On time.Duration

	// Off is the pause before the next pulse.
	Off time.Duration
}

// Pattern is a named sequence of pulses.
type Pattern struct {
	Name   string
	Pulses []Pulse
}

// Duration returns the total playback time of the pattern.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, pulse := range p.Pulses {
		d += pulse.On + pulse.Off
	}
	return d
}

// Zero reports whether the pattern is empty (nothing to play).
func (p Pattern) Zero() bool {
	return len(p.Pulses) == 0
}

// Predefined guidance patterns. Short single pulses for small corrections,
// doubled pulses for full turns, a long triple for hard turns.
var (
	// Center is one short confirmation pulse.
	Center = Pattern{Name: "center", Pulses: []Pulse{
		{On: 60 * time.Millisecond},
	}}

	// SlightLeft is one short then one very short pulse.
	SlightLeft = Pattern{Name: "slight-left", Pulses: []Pulse{
		{On: 80 * time.Millisecond, Off: 60 * time.Millisecond},
		{On: 40 * time.Millisecond},
	}}

	// SlightRight mirrors SlightLeft with the short pulse first.
	SlightRight = Pattern{Name: "slight-right", Pulses: []Pulse{
		{On: 40 * time.Millisecond, Off: 60 * time.Millisecond},
		{On: 80 * time.Millisecond},
	}}

	// Left is two medium pulses.
	Left = Pattern{Name: "left", Pulses: []Pulse{
		{On: 120 * time.Millisecond, Off: 80 * time.Millisecond},
		{On: 120 * time.Millisecond},
	}}

	// Right is three short pulses.
	Right = Pattern{Name: "right", Pulses: []Pulse{
		{On: 70 * time.Millisecond, Off: 60 * time.Millisecond},
		{On: 70 * time.Millisecond, Off: 60 * time.Millisecond},
		{On: 70 * time.Millisecond},
	}}

	// HardTurn is a long urgent triple pulse, shared by hard left and hard right.
	HardTurn = Pattern{Name: "hard-turn", Pulses: []Pulse{
		{On: 200 * time.Millisecond, Off: 100 * time.Millisecond},
		{On: 200 * time.Millisecond, Off: 100 * time.Millisecond},
		{On: 300 * time.Millisecond},
	}}
)

// Player plays a haptic pattern on a vibration device.
type Player interface {
	// Play runs the pattern to completion or until ctx is cancelled.
	Play(ctx context.Context, pattern Pattern) error
}
