package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueClosed is returned when speaking through a closed queue.
var ErrQueueClosed = errors.New("speech: queue closed")

// DefaultMaxPending bounds the number of queued announcements. When the
// queue is full the oldest normal-priority entry is dropped; guidance
// instructions go stale quickly, so playing them late is worse than not
// playing them at all.
const DefaultMaxPending = 8

type pending struct {
	text     string
	priority Priority
}

// Queue serializes announcements onto a Speaker.
//
// A single worker goroutine voices one announcement at a time, so the
// Speaker never sees overlapping requests. High-priority announcements are
// inserted ahead of pending normal ones.
type Queue struct {
	speaker    Speaker
	logger     *slog.Logger
	maxPending int

	mu     sync.Mutex
	cond   *sync.Cond
	items  []pending
	closed bool
	done   chan struct{}
}

// NewQueue creates a queue and starts its worker.
func NewQueue(speaker Speaker, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		speaker:    speaker,
		logger:     logger.With("component", "speech.queue"),
		maxPending: DefaultMaxPending,
		done:       make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Speak enqueues an announcement. It never blocks on playback.
func (q *Queue) Speak(ctx context.Context, text string, priority Priority) error {
	if text == "" {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	if len(q.items) >= q.maxPending {
		if i := q.oldestNormal(); i >= 0 {
			dropped := q.items[i]
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.logger.Debug("dropped stale announcement", "text", dropped.text)
		} else {
			// Queue full of high-priority items; drop the new one instead.
			q.logger.Warn("announcement queue full", "text", text)
			return nil
		}
	}

	item := pending{text: text, priority: priority}
	if priority == PriorityHigh {
		// Ahead of all pending normals, behind pending highs.
		i := 0
		for i < len(q.items) && q.items[i].priority == PriorityHigh {
			i++
		}
		q.items = append(q.items[:i], append([]pending{item}, q.items[i:]...)...)
	} else {
		q.items = append(q.items, item)
	}

	q.cond.Signal()
	return nil
}

// oldestNormal returns the index of the first normal-priority entry, or -1.
func (q *Queue) oldestNormal() int {
	for i, it := range q.items {
		if it.priority == PriorityNormal {
			return i
		}
	}
	return -1
}

// Pending returns the number of queued announcements not yet voiced.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the worker after the current utterance finishes.
// Pending announcements are discarded. Close blocks until the worker exits.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.items = nil
	q.cond.Signal()
	q.mu.Unlock()

	<-q.done
	return nil
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		if err := q.speaker.Say(context.Background(), item.text); err != nil {
			q.logger.Warn("utterance failed", "text", item.text, "error", err)
		}
	}
}

var _ Announcer = (*Queue)(nil)
