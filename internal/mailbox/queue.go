// Package mailbox delivers typed events from any number of producer
// goroutines to a single consumer goroutine.
//
// Producers Push payloads under a short critical section and raise a
// manual-reset signal. The consumer waits on that signal next to its own
// input source, then drains every pending event in one swap and runs the
// handlers in enqueue order on its own goroutine. Handlers never run while
// the queue lock is held, so a slow handler never blocks a producer.
package mailbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"folio/internal/errors"
	"folio/internal/log"
)

// TypeTag identifies one class of queued payload. Tags come from a
// process-wide monotonic allocator and are never reused.
type TypeTag uint32

// PendingEvent is a queued payload waiting to be drained.
type PendingEvent struct {
	Tag     TypeTag
	Payload any
	Seq     uint64
}

// WakeReason says why WaitAndDispatch returned.
type WakeReason int

const (
	WokeEvents WakeReason = iota
	WokeInput
	WokeTimeout
)

func (r WakeReason) String() string {
	switch r {
	case WokeEvents:
		return "events"
	case WokeInput:
		return "input"
	case WokeTimeout:
		return "timeout"
	}
	return fmt.Sprintf("wake(%d)", int(r))
}

// ErrSealed is returned when registering on a closed queue.
var ErrSealed = errors.New("mailbox is closed")

// Stats is a snapshot of queue counters.
type Stats struct {
	Pushed     uint64
	Dispatched uint64
	Dropped    uint64
	Batches    uint64
	Pending    int
}

type handler struct {
	name string
	fn   func(any)
}

// Queue is the consumer's mailbox.
type Queue struct {
	// Guards buffer, signal state, counters and closed.
	mu      sync.Mutex
	buffer  []PendingEvent
	signal  chan struct{}
	raised  bool
	nextSeq uint64
	closed  bool
	stats   Stats

	regMu    sync.RWMutex
	handlers map[TypeTag]handler

	input  <-chan struct{}
	logger *log.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithInputSource makes WaitAndDispatch also return when src is ready, so
// the consumer stays responsive to its own event loop while idle here.
func WithInputSource(src <-chan struct{}) Option {
	return func(q *Queue) { q.input = src }
}

// WithLogger sets the logger used for drop and dispatch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// New creates an empty queue with the signal lowered.
func New(opts ...Option) *Queue {
	q := &Queue{
		signal:   make(chan struct{}),
		handlers: make(map[TypeTag]handler),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With(log.F("component", "mailbox"))
	return q
}

// RegisterHandler records fn under a freshly allocated tag. Registration
// must finish before any producer pushes with the returned tag.
func (q *Queue) RegisterHandler(name string, fn func(any)) (TypeTag, error) {
	if fn == nil {
		return 0, errors.Newf("nil handler for %q", name)
	}

	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return 0, ErrSealed
	}

	tag := allocateTag()
	q.regMu.Lock()
	q.handlers[tag] = handler{name: name, fn: fn}
	q.regMu.Unlock()

	q.logger.With(log.F("tag", tag), log.F("name", name)).Debug("handler registered")
	return tag, nil
}

// Push appends payload and raises the signal. It is safe from any
// goroutine and never blocks beyond the critical section. Pushes after
// Close are dropped.
func (q *Queue) Push(tag TypeTag, payload any) {
	q.mu.Lock()
	if q.closed {
		q.stats.Dropped++
		q.mu.Unlock()
		return
	}
	q.nextSeq++
	q.buffer = append(q.buffer, PendingEvent{Tag: tag, Payload: payload, Seq: q.nextSeq})
	q.stats.Pushed++
	if !q.raised {
		close(q.signal)
		q.raised = true
	}
	q.mu.Unlock()
}

// Ready returns a channel that is closed while events are pending. Receiving
// from it does not lower the signal; only a drain does.
func (q *Queue) Ready() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.signal
}

// Dispatch drains all pending events and runs their handlers in enqueue
// order on the calling goroutine. It returns the number dispatched and
// panics if an event carries a tag with no registered handler.
func (q *Queue) Dispatch() int {
	batch := q.drain()
	if len(batch) == 0 {
		return 0
	}

	for _, ev := range batch {
		q.regMu.RLock()
		h, ok := q.handlers[ev.Tag]
		q.regMu.RUnlock()
		if !ok {
			panic(fmt.Sprintf("mailbox: no handler registered for tag %d (seq %d)", ev.Tag, ev.Seq))
		}
		h.fn(ev.Payload)
	}

	q.mu.Lock()
	q.stats.Dispatched += uint64(len(batch))
	q.mu.Unlock()
	return len(batch)
}

// drain swaps the buffer out and lowers the signal in one critical section.
func (q *Queue) drain() []PendingEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.buffer
	q.buffer = nil
	if q.raised {
		q.signal = make(chan struct{})
		q.raised = false
	}
	if len(batch) > 0 {
		q.stats.Batches++
	}
	return batch
}

// WaitAndDispatch blocks until events are pending, the input source is
// ready, timeout elapses (timeout <= 0 waits indefinitely) or ctx is done.
// Pending events are dispatched before it returns WokeEvents.
func (q *Queue) WaitAndDispatch(ctx context.Context, timeout time.Duration) (WakeReason, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-q.Ready():
		n := q.Dispatch()
		q.logger.With(log.F("count", n)).Debug("batch dispatched")
		return WokeEvents, nil
	case <-q.input:
		return WokeInput, nil
	case <-timer:
		return WokeTimeout, nil
	case <-ctx.Done():
		return WokeTimeout, ctx.Err()
	}
}

// Close stops accepting pushes. Already queued events remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.logger.With(log.F("pending", len(q.buffer))).Debug("queue closed")
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.stats
	s.Pending = len(q.buffer)
	return s
}
