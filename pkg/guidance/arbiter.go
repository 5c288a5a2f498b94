package guidance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/visionmate/go-guide/pkg/haptics"
	"github.com/visionmate/go-guide/pkg/speech"
)

// Arbiter converts the stream of guidance updates into at most one coherent
// spoken instruction and haptic cue at a time.
//
// An instruction is voiced only if it differs from the last spoken
// instruction and the cooldown has elapsed since the last utterance.
// Everything else only refreshes the displayed scene state.
type Arbiter struct {
	cooldown time.Duration
	announce speech.Announcer
	haptic   haptics.Player
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	mu              sync.Mutex
	lastInstruction string
	lastSpokenAt    time.Time
	scene           *Update
}

// NewArbiter creates an arbiter with the given cooldown and output sinks.
// Either sink may be nil, disabling that output.
func NewArbiter(cooldown time.Duration, announce speech.Announcer, haptic haptics.Player, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{
		cooldown: cooldown,
		announce: announce,
		haptic:   haptic,
		logger:   logger.With("component", "guidance.arbiter"),
		now:      time.Now,
	}
}

// Process consumes one update and reports whether it produced an utterance.
// It is called from the single message-listener goroutine; updates are
// handled to completion in arrival order, so the sinks never see
// overlapping requests from the arbiter.
func (a *Arbiter) Process(ctx context.Context, u *Update) bool {
	if u == nil {
		return false
	}

	a.mu.Lock()
	a.scene = u

	instr := u.Instruction
	if instr == "" || instr == a.lastInstruction {
		a.mu.Unlock()
		return false
	}

	now := a.now()
	if !a.lastSpokenAt.IsZero() && now.Sub(a.lastSpokenAt) < a.cooldown {
		// Too soon after the previous utterance. The instruction is not
		// recorded, so it can still be spoken once the window opens.
		a.mu.Unlock()
		return false
	}

	a.lastInstruction = instr
	a.lastSpokenAt = now
	a.mu.Unlock()

	if a.announce != nil {
		// Normal priority: ambient guidance must never preempt explicit
		// user-requested announcements.
		if err := a.announce.Speak(ctx, instr, speech.PriorityNormal); err != nil {
			a.logger.Warn("speech sink rejected instruction", "error", err)
		}
	}

	if a.haptic != nil {
		if pattern, ok := PatternFor(u.Direction); ok {
			if err := a.haptic.Play(ctx, pattern); err != nil {
				a.logger.Warn("haptic playback failed", "error", err)
			}
		}
	}

	a.logger.Debug("spoke instruction",
		"instruction", instr,
		"direction", string(u.Direction),
		"distance", string(u.Distance),
	)
	return true
}

// Scene returns the most recent update, spoken or not, for display refresh.
func (a *Arbiter) Scene() *Update {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene
}

// LastInstruction returns the last spoken instruction and when it was voiced.
func (a *Arbiter) LastInstruction() (string, time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastInstruction, a.lastSpokenAt
}

// Reset clears the arbitration state. Called at session start so a new
// session is never muted by the previous session's cooldown.
func (a *Arbiter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastInstruction = ""
	a.lastSpokenAt = time.Time{}
	a.scene = nil
}

// PatternFor maps a direction to its haptic pattern. Unknown directions
// have no pattern; hard left and hard right share the urgent hard-turn cue.
func PatternFor(d Direction) (haptics.Pattern, bool) {
	switch d {
	case DirectionCenter:
		return haptics.Center, true
	case DirectionSlightlyLeft:
		return haptics.SlightLeft, true
	case DirectionSlightlyRight:
		return haptics.SlightRight, true
	case DirectionLeft:
		return haptics.Left, true
	case DirectionRight:
		return haptics.Right, true
	case DirectionHardLeft, DirectionHardRight:
		return haptics.HardTurn, true
	default:
		return haptics.Pattern{}, false
	}
}
