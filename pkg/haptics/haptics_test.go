package haptics

import (
	"context"
	"testing"
	"time"
)

func TestPattern_Duration(t *testing.T) {
	p := Pattern{Name: "test", Pulses: []Pulse{
		{On: 100 * time.Millisecond, Off: 50 * time.Millisecond},
		{On: 200 * time.Millisecond},
	}}
	if got, want := p.Duration(), 350*time.Millisecond; got != want {
		t.Errorf("duration: got %v, want %v", got, want)
	}

	if !(Pattern{}).Zero() {
		t.Error("empty pattern should be zero")
	}
	if p.Zero() {
		t.Error("non-empty pattern should not be zero")
	}
}

func TestPredefinedPatterns_Distinct(t *testing.T) {
	patterns := []Pattern{Center, SlightLeft, SlightRight, Left, Right, HardTurn}
	seen := map[string]bool{}
	for _, p := range patterns {
		if p.Zero() {
			t.Errorf("pattern %q has no pulses", p.Name)
		}
		if seen[p.Name] {
			t.Errorf("duplicate pattern name %q", p.Name)
		}
		seen[p.Name] = true
	}

	// The urgent cue must read as clearly longer than a slight correction.
	if HardTurn.Duration() <= SlightLeft.Duration() {
		t.Error("hard turn should be longer than a slight correction")
	}
}

func TestConsolePlayer_ContextCancel(t *testing.T) {
	player := &ConsolePlayer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := player.Play(ctx, HardTurn)
	if err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestConsolePlayer_NoSleep(t *testing.T) {
	player := &ConsolePlayer{NoSleep: true}

	start := time.Now()
	if err := player.Play(context.Background(), HardTurn); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("NoSleep player took %v", elapsed)
	}
}
