package master

import (
	"fmt"
	"sync"
)

// eventQueue is an unbounded FIFO of sink events. Producers push while holding the session lock, so the
// queue order is the order in which events were decoded; one goroutine drains it.
type eventQueue struct {
	mu     sync.Mutex
	events []func(Sink)
	closed bool
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

// push appends ev. Events pushed after close are dropped.
func (q *eventQueue) push(ev func(Sink)) {
	q.mu.Lock()
	if !q.closed {
		q.events = append(q.events, ev)
	}
	q.mu.Unlock()

	q.signal()
}

// close lets the consumer return once the queued events are drained.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

func (q *eventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop blocks until events are queued and returns all of them. ok is false when the queue is closed and empty.
func (q *eventQueue) pop() (events []func(Sink), ok bool) {
	for {
		q.mu.Lock()
		events, q.events = q.events, nil
		closed := q.closed
		q.mu.Unlock()

		if len(events) > 0 {
			return events, true
		}
		if closed {
			return nil, false
		}

		<-q.ready
	}
}

// deliverTask hands queued events to the sink. It runs on its own goroutine, so a sink may block
// briefly or call any session method, including Open and Stop.
func (s *Session) deliverTask() bool {
	events, ok := s.eventQ.pop()
	if !ok {
		return false
	}

	for _, ev := range events {
		s.deliver(ev)
	}

	return true
}

// deliver calls ev and ends the current connection when the sink panics.
func (s *Session) deliver(ev func(Sink)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in sink", "panic", r)
			s.abort(fmt.Errorf("%w: %v", ErrSinkPanic, r))
		}
	}()

	ev(s.sink)
}

// guard wraps a connection task so that a panic ends the connection instead of leaving it without a reader.
func (s *Session) guard(name string, fn func() bool) func() bool {
	return func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in task", "name", name, "panic", r)
				s.abort(fmt.Errorf("%w: %s: %v", ErrTaskPanic, name, r))
				ok = false
			}
		}()

		return fn()
	}
}
