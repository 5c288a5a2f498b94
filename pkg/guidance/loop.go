package guidance

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/visionmate/go-guide/pkg/framesource"
	"github.com/visionmate/go-guide/pkg/haptics"
	"github.com/visionmate/go-guide/pkg/speech"
)

// Session announcements voiced through the speech sink.
const (
	announceStarted      = "Guidance started."
	announceStopped      = "Guidance stopped."
	announceDisconnected = "Guidance disconnected."
)

// session is one active guidance run, bounded by Start and Stop.
type session struct {
	id      uuid.UUID
	query   string
	conn    Conn
	arbiter *Arbiter
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// inFlight enforces single-flight capture: a tick is skipped while
	// the previous capture+send has not completed.
	inFlight atomic.Bool
}

// Loop drives the capture-send cadence and owns session state.
//
// One periodic ticker captures and submits frames; one listener consumes
// inbound messages. They share only the connection and the arbiter state.
// At most one session is active; Start while running is rejected.
type Loop struct {
	cfg      Config
	source   framesource.Source
	announce speech.Announcer
	haptic   haptics.Player
	logger   *slog.Logger

	// dial is swappable for tests.
	dial func(ctx context.Context, cfg Config) (Conn, error)

	// OnDisconnect, if set, is invoked when the channel closes
	// unexpectedly and the session auto-stops. Called from the listener
	// goroutine after the session is already torn down.
	OnDisconnect func(err error)

	mu   sync.Mutex
	sess *session
}

// NewLoop creates a guidance loop. The frame source is required; either
// output sink may be nil.
func NewLoop(cfg Config, source framesource.Source, announce speech.Announcer, haptic haptics.Player) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNoSource
	}

	return &Loop{
		cfg:      cfg,
		source:   source,
		announce: announce,
		haptic:   haptic,
		logger:   cfg.logger().With("component", "guidance.loop"),
		dial: func(ctx context.Context, cfg Config) (Conn, error) {
			return Dial(ctx, cfg)
		},
	}, nil
}

// Start opens a connection and begins a guidance session for the target
// query. Returns ErrSessionActive if a session is already running; the
// existing session is left untouched.
func (l *Loop) Start(ctx context.Context, targetQuery string) error {
	l.mu.Lock()
	if l.sess != nil {
		l.mu.Unlock()
		return ErrSessionActive
	}

	conn, err := l.dial(ctx, l.cfg)
	if err != nil {
		l.mu.Unlock()
		return err
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:      uuid.New(),
		query:   targetQuery,
		conn:    conn,
		arbiter: NewArbiter(l.cfg.Cooldown, l.announce, l.haptic, l.cfg.Logger),
		cancel:  cancel,
	}
	l.sess = s

	s.wg.Add(2)
	go l.captureLoop(sctx, s)
	go l.listen(s)
	l.mu.Unlock()

	l.logger.Info("session started", "session", s.id, "target", targetQuery)
	l.say(announceStarted)
	return nil
}

// Stop ends the active session: cancels the capture ticker, closes the
// connection, and waits until both session goroutines have exited, so no
// further capture or message handling occurs after it returns. Safe to call
// when no session is active.
func (l *Loop) Stop() {
	l.mu.Lock()
	s := l.sess
	l.sess = nil
	l.mu.Unlock()

	if s == nil {
		return
	}

	s.cancel()
	s.conn.Close()
	s.wg.Wait()

	l.logger.Info("session stopped", "session", s.id)
	l.say(announceStopped)
}

// Running reports whether a session is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sess != nil
}

// Scene returns the most recent update of the active session for display,
// or nil when no session is running or nothing was received yet.
func (l *Loop) Scene() *Update {
	l.mu.Lock()
	s := l.sess
	l.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.arbiter.Scene()
}

// captureLoop submits one frame per tick, strictly periodic by wall clock.
// A slow or absent server response never delays the next tick.
func (l *Loop) captureLoop(ctx context.Context, s *session) {
	defer s.wg.Done()

	ticker := time.NewTicker(l.cfg.CaptureInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.inFlight.CompareAndSwap(false, true) {
				// Previous submission still running; skip this tick
				// rather than queue unboundedly.
				continue
			}
			go l.captureAndSend(ctx, s)
		}
	}
}

// captureAndSend grabs one frame and hands it to the transport.
// Capture failures are transient: the tick is skipped, never fatal.
func (l *Loop) captureAndSend(ctx context.Context, s *session) {
	defer s.inFlight.Store(false)

	frame, err := l.source.CaptureJPEG(ctx)
	if err != nil {
		l.logger.Debug("capture skipped", "error", err)
		return
	}

	if err := s.conn.Send(frame, s.query); err != nil {
		// Send errors surface through the listener when the connection
		// is actually gone; a lone write failure is one missed frame.
		l.logger.Debug("frame send failed", "error", err)
	}
}

// listen consumes inbound messages until the connection closes. An
// unexpected close auto-stops the session; there is no automatic reconnect,
// so a stale session never resumes with a stale target.
func (l *Loop) listen(s *session) {
	defer s.wg.Done()

	err := s.conn.Listen(func(msg *Message) {
		l.handleMessage(s, msg)
	})
	if err == nil {
		// Clean close initiated by Stop.
		return
	}

	if !l.clearSession(s) {
		// Stop already tore the session down.
		return
	}

	s.cancel()
	s.conn.Close()
	l.logger.Warn("guidance disconnected", "session", s.id, "error", err)
	l.say(announceDisconnected)

	if l.OnDisconnect != nil {
		l.OnDisconnect(err)
	}
}

// handleMessage processes one inbound message to completion before the
// next is handled (the listener is single-threaded per session).
func (l *Loop) handleMessage(s *session, msg *Message) {
	switch msg.Kind {
	case KindThrottled:
		// Server dropped the frame per its rate policy. Expected; never
		// touches arbitration state.
	case KindError:
		// One missed frame, not fatal.
		l.logger.Warn("server reported error", "error", msg.Err)
	case KindUpdate:
		if !l.isCurrent(s) {
			// Message was in flight when the session stopped; output
			// must not resurrect after Stop.
			return
		}
		s.arbiter.Process(context.Background(), msg.Update)
	}
}

// isCurrent reports whether s is still the active session.
func (l *Loop) isCurrent(s *session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sess == s
}

// clearSession removes s if it is still current, returning whether it was.
func (l *Loop) clearSession(s *session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess != s {
		return false
	}
	l.sess = nil
	return true
}

// say voices a session announcement at high priority so it is never starved
// by queued guidance chatter.
func (l *Loop) say(text string) {
	if l.announce == nil {
		return
	}
	if err := l.announce.Speak(context.Background(), text, speech.PriorityHigh); err != nil {
		l.logger.Warn("announcement failed", "text", text, "error", err)
	}
}
