package guidance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/visionmate/go-guide/pkg/framesource"
	"github.com/visionmate/go-guide/pkg/haptics"
	"github.com/visionmate/go-guide/pkg/speech"
)

// fakeConn is an in-memory Conn for loop tests.
type fakeConn struct {
	mu      sync.Mutex
	sent    [][]byte
	queries []string
	handler func(*Message)
	err     error

	closed chan struct{}
	once   sync.Once
	ready  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		closed: make(chan struct{}),
		ready:  make(chan struct{}),
	}
}

func (f *fakeConn) Send(frame []byte, query string) error {
	select {
	case <-f.closed:
		return ErrChannelClosed
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, frame)
	f.queries = append(f.queries, query)
	return nil
}

func (f *fakeConn) Listen(h func(*Message)) error {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
	close(f.ready)

	<-f.closed
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// push invokes the registered handler, simulating an inbound message. It
// keeps working after Close to model messages already in flight at stop.
func (f *fakeConn) push(m *Message) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(m)
	}
}

// fail closes the connection with an error, simulating an unexpected drop.
func (f *fakeConn) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.Close()
}

func (f *fakeConn) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeConn) firstQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[0]
}

type loopFixture struct {
	loop      *Loop
	conn      *fakeConn
	source    *framesource.Mock
	announcer *speech.MockAnnouncer
	player    *haptics.Mock
	dials     *atomic.Int32
}

func newLoopFixture(t *testing.T, interval time.Duration) *loopFixture {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Endpoint = "ws://guide.test/ws/guide"
	cfg.CaptureInterval = interval
	cfg.Cooldown = 1500 * time.Millisecond

	conn := newFakeConn()
	source := &framesource.Mock{}
	announcer := &speech.MockAnnouncer{}
	player := &haptics.Mock{}

	loop, err := NewLoop(cfg, source, announcer, player)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	dials := &atomic.Int32{}
	loop.dial = func(ctx context.Context, cfg Config) (Conn, error) {
		dials.Add(1)
		return conn, nil
	}

	return &loopFixture{loop: loop, conn: conn, source: source, announcer: announcer, player: player, dials: dials}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestNewLoop_RejectsTickerlessConfig(t *testing.T) {
	// A hand-built config with only the endpoint set must be rejected up
	// front: the capture ticker cannot run on a zero interval.
	cfg := Config{Endpoint: "ws://guide.test/ws/guide"}
	if _, err := NewLoop(cfg, &framesource.Mock{}, nil, nil); err != ErrBadCaptureInterval {
		t.Errorf("got %v, want ErrBadCaptureInterval", err)
	}
}

func TestLoop_StartTwice(t *testing.T) {
	fx := newLoopFixture(t, 50*time.Millisecond)
	defer fx.loop.Stop()
	ctx := context.Background()

	if err := fx.loop.Start(ctx, "door"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := fx.loop.Start(ctx, "exit"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second start: got %v, want ErrSessionActive", err)
	}

	if !fx.loop.Running() {
		t.Error("loop should still be running")
	}
	if n := fx.dials.Load(); n != 1 {
		t.Errorf("dials: got %d, want 1", n)
	}
}

func TestLoop_StopWithoutSession(t *testing.T) {
	fx := newLoopFixture(t, 50*time.Millisecond)

	fx.loop.Stop() // no-op
	fx.loop.Stop()

	if fx.loop.Running() {
		t.Error("loop should not be running")
	}
	if n := len(fx.announcer.Calls()); n != 0 {
		t.Errorf("announcements: got %d, want 0", n)
	}
}

func TestLoop_StartStopAnnouncements(t *testing.T) {
	fx := newLoopFixture(t, time.Hour) // no ticks during this test

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-fx.conn.ready
	fx.loop.Stop()

	calls := fx.announcer.Calls()
	if len(calls) != 2 {
		t.Fatalf("announcements: got %v", fx.announcer.Texts())
	}
	if calls[0].Text != announceStarted || calls[1].Text != announceStopped {
		t.Errorf("texts: got %v", fx.announcer.Texts())
	}
	for _, c := range calls {
		if c.Priority != speech.PriorityHigh {
			t.Errorf("announcement %q priority: got %v, want high", c.Text, c.Priority)
		}
	}
	if fx.loop.Running() {
		t.Error("loop should be stopped")
	}
}

func TestLoop_CapturesAndSends(t *testing.T) {
	fx := newLoopFixture(t, 5*time.Millisecond)

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer fx.loop.Stop()

	waitFor(t, time.Second, func() bool { return fx.conn.sentCount() >= 2 },
		"expected at least two frames sent")

	if q := fx.conn.firstQuery(); q != "door" {
		t.Errorf("query: got %q, want door", q)
	}
}

func TestLoop_SingleFlight(t *testing.T) {
	fx := newLoopFixture(t, 5*time.Millisecond)

	gate := make(chan struct{})
	fx.source.CaptureFunc = func(ctx context.Context) ([]byte, error) {
		select {
		case <-gate:
			return []byte("frame"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer fx.loop.Stop()

	// Many ticks elapse while the first capture is blocked; all of them
	// must be skipped, not queued.
	time.Sleep(60 * time.Millisecond)
	if n := fx.source.Captures(); n != 1 {
		t.Errorf("captures while blocked: got %d, want 1", n)
	}

	close(gate)
	waitFor(t, time.Second, func() bool { return fx.conn.sentCount() >= 1 },
		"expected frame sent after capture unblocked")
}

func TestLoop_TransientCaptureFailure(t *testing.T) {
	fx := newLoopFixture(t, 5*time.Millisecond)

	var calls atomic.Int32
	fx.source.CaptureFunc = func(ctx context.Context) ([]byte, error) {
		// First few ticks fail; the loop must skip and retry.
		if calls.Add(1) <= 3 {
			return nil, framesource.ErrNoFrame
		}
		return []byte("frame"), nil
	}

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer fx.loop.Stop()

	waitFor(t, time.Second, func() bool { return fx.conn.sentCount() >= 1 },
		"expected a frame after transient failures")

	if !fx.loop.Running() {
		t.Error("transient capture failure must not end the session")
	}
}

func TestLoop_UpdateSpeaksAndVibrates(t *testing.T) {
	fx := newLoopFixture(t, time.Hour)

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer fx.loop.Stop()
	<-fx.conn.ready

	instruction := "Move slightly left. Door is close ahead."
	fx.conn.push(&Message{Kind: KindUpdate, Update: &Update{
		Direction:        DirectionSlightlyLeft,
		Distance:         DistanceClose,
		Instruction:      instruction,
		SceneDescription: "1 door left",
		Objects:          []DetectedObject{},
		Obstacles:        []Obstacle{},
		Timestamp:        1.0,
	}})

	texts := fx.announcer.Texts()
	if len(texts) != 2 || texts[1] != instruction {
		t.Fatalf("utterances: got %v", texts)
	}
	if patterns := fx.player.PatternNames(); len(patterns) != 1 || patterns[0] != "slight-left" {
		t.Errorf("haptics: got %v, want [slight-left]", patterns)
	}
	if scene := fx.loop.Scene(); scene == nil || scene.SceneDescription != "1 door left" {
		t.Errorf("scene: got %+v", scene)
	}
}

func TestLoop_ThrottledAndErrorIgnored(t *testing.T) {
	fx := newLoopFixture(t, time.Hour)

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer fx.loop.Stop()
	<-fx.conn.ready

	fx.conn.push(&Message{Kind: KindThrottled})
	fx.conn.push(&Message{Kind: KindError, Err: "frame_processing_failed"})

	// Only the session-start announcement; no haptics; session alive.
	if texts := fx.announcer.Texts(); len(texts) != 1 {
		t.Errorf("utterances: got %v", texts)
	}
	if n := len(fx.player.Calls()); n != 0 {
		t.Errorf("haptic calls: got %d, want 0", n)
	}
	if !fx.loop.Running() {
		t.Error("session must survive throttled and error messages")
	}
}

func TestLoop_PostStopGuard(t *testing.T) {
	fx := newLoopFixture(t, time.Hour)

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-fx.conn.ready
	fx.loop.Stop()

	before := len(fx.announcer.Calls())

	// A message that was in flight at the moment of Stop must not
	// resurrect output for the dead session.
	fx.conn.push(&Message{Kind: KindUpdate, Update: &Update{
		Direction:   DirectionLeft,
		Instruction: "Turn left now.",
	}})

	if n := len(fx.announcer.Calls()); n != before {
		t.Errorf("post-stop utterances: got %v", fx.announcer.Texts())
	}
	if n := len(fx.player.Calls()); n != 0 {
		t.Errorf("post-stop haptics: got %d, want 0", n)
	}
}

func TestLoop_DisconnectEndsSession(t *testing.T) {
	fx := newLoopFixture(t, time.Hour)

	disconnected := make(chan error, 1)
	fx.loop.OnDisconnect = func(err error) { disconnected <- err }

	if err := fx.loop.Start(context.Background(), "door"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-fx.conn.ready

	cause := errors.New("connection reset")
	fx.conn.fail(cause)

	select {
	case err := <-disconnected:
		if !errors.Is(err, cause) {
			t.Errorf("disconnect cause: got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for disconnect callback")
	}

	waitFor(t, time.Second, func() bool { return !fx.loop.Running() },
		"session should auto-stop on disconnect")

	texts := fx.announcer.Texts()
	if len(texts) != 2 || texts[1] != announceDisconnected {
		t.Errorf("announcements: got %v", texts)
	}

	// Stop after auto-stop is a no-op with no extra announcement.
	fx.loop.Stop()
	if n := len(fx.announcer.Texts()); n != 2 {
		t.Errorf("announcements after redundant stop: got %v", fx.announcer.Texts())
	}
}
