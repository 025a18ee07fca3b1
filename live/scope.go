// Package live tracks per-browser sessions, the view each one has mounted,
// and the events pushed to the browser over a websocket.
package live

import (
	"sync"
	"time"
)

// Scope owns the timers started on behalf of one view. Once closed, no
// callback registered through it will run.
type Scope struct {
	mu     sync.Mutex
	timers map[uint64]*time.Timer
	next   uint64
	closed bool
}

// NewScope returns an open scope.
func NewScope() *Scope {
	return &Scope{timers: make(map[uint64]*time.Timer)}
}

// AfterFunc runs f after d unless the returned stop function or Close is
// called first. stop reports whether it prevented f from running.
func (s *Scope) AfterFunc(d time.Duration, f func()) (stop func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() bool { return false }
	}

	id := s.next
	s.next++
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		if live {
			delete(s.timers, id)
		}
		s.mu.Unlock()
		if live {
			f()
		}
	})

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, ok := s.timers[id]
		if !ok {
			return false
		}
		delete(s.timers, id)
		t.Stop()
		return true
	}
}

// Pending reports how many callbacks are still waiting to fire.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops every pending timer. It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
