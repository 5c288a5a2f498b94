package guidance

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the transport used by the loop. Satisfied by *Channel; tests
// substitute an in-memory fake.
type Conn interface {
	// Send transmits one (frame, query) message. Fire-and-forget: it
	// returns once the message is handed to the transport.
	Send(frame []byte, query string) error

	// Listen invokes handler once per inbound message, in arrival order,
	// until the connection closes. Malformed messages are logged and
	// dropped without invoking the handler.
	Listen(handler func(*Message)) error

	// Close terminates the connection. Idempotent.
	Close() error
}

// frameEnvelope is the client-to-server message shape.
type frameEnvelope struct {
	Image    string `json:"image"`
	Question string `json:"question"`
}

// Stats counts channel activity. Throttled frames are counted but never
// retried out-of-band.
type Stats struct {
	FramesSent uint64
	Updates    uint64
	Throttled  uint64
	Errors     uint64
	Dropped    uint64 // malformed inbound messages
}

// Channel is a persistent websocket connection to the guidance backend.
//
// Reconnection is deliberately not automatic: the loop treats disconnection
// as session-ending, so a stale session never silently resumes with a stale
// target query.
type Channel struct {
	conn   *websocket.Conn
	cfg    Config
	logger *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	framesSent atomic.Uint64
	updates    atomic.Uint64
	throttled  atomic.Uint64
	errs       atomic.Uint64
	dropped    atomic.Uint64
}

// Dial connects to the backend's guidance endpoint.
func Dial(ctx context.Context, cfg Config) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("guidance: dial %s: %w", cfg.Endpoint, err)
	}

	return &Channel{
		conn:   conn,
		cfg:    cfg,
		logger: cfg.logger().With("component", "guidance.channel"),
	}, nil
}

// Send encodes the frame as base64 JPEG plus the target query into one JSON
// message and transmits it. No acknowledgement is awaited.
func (c *Channel) Send(frame []byte, query string) error {
	if c.closed.Load() {
		return ErrChannelClosed
	}

	encoded := base64.StdEncoding.EncodeToString(frame)
	if c.cfg.MaxFrameBytes > 0 && len(encoded) > c.cfg.MaxFrameBytes {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(encoded))
	}

	payload, err := json.Marshal(frameEnvelope{Image: encoded, Question: query})
	if err != nil {
		return fmt.Errorf("guidance: marshal frame: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("guidance: write frame: %w", err)
	}

	c.framesSent.Add(1)
	return nil
}

// Listen reads inbound messages until the connection closes, invoking
// handler once per decodable message in arrival order. It returns nil on a
// clean close initiated by Close, otherwise the read error.
func (c *Channel) Listen(handler func(*Message)) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return nil
			}
			return fmt.Errorf("guidance: read: %w", err)
		}

		msg, err := ParseMessage(data)
		if err != nil {
			c.dropped.Add(1)
			c.logger.Warn("dropping malformed message", "error", err)
			continue
		}

		switch msg.Kind {
		case KindThrottled:
			c.throttled.Add(1)
		case KindError:
			c.errs.Add(1)
		default:
			c.updates.Add(1)
		}

		handler(msg)
	}
}

// Close terminates the connection. Safe to call multiple times and from any
// goroutine; it unblocks a concurrent Listen.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		// Best-effort close handshake before dropping the socket.
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// Stats returns a snapshot of channel counters.
func (c *Channel) Stats() Stats {
	return Stats{
		FramesSent: c.framesSent.Load(),
		Updates:    c.updates.Load(),
		Throttled:  c.throttled.Load(),
		Errors:     c.errs.Load(),
		Dropped:    c.dropped.Load(),
	}
}

var _ Conn = (*Channel)(nil)
