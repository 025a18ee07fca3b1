package live

import (
	"sync"
	"time"
)

// maxQueuedEvents bounds the events kept for a session with no socket.
const maxQueuedEvents = 32

// Session is one browser, identified by its cookie. It holds at most one
// mounted view.
type Session struct {
	ID string

	toastTTL time.Duration

	mu       sync.Mutex
	view     *View
	queue    []Event
	signal   chan struct{}
	lastSeen time.Time
	closed   bool
}

func newSession(id string, toastTTL time.Duration) *Session {
	return &Session{
		ID:       id,
		toastTTL: toastTTL,
		signal:   make(chan struct{}, 1),
		lastSeen: time.Now(),
	}
}

// Enter mounts a view named name. If a view with the same name is already
// mounted it is returned unchanged with fresh set to false; otherwise the
// previous view is torn down first.
func (s *Session) Enter(name string) (v *View, fresh bool) {
	s.mu.Lock()
	s.lastSeen = time.Now()
	if s.view != nil && s.view.Name == name && !s.view.Closed() {
		v = s.view
		s.mu.Unlock()
		return v, false
	}
	prev := s.view
	v = &View{Name: name, session: s, scope: NewScope(), toastTTL: s.toastTTL}
	s.view = v
	// events from the old page no longer apply
	s.queue = nil
	s.mu.Unlock()

	if prev != nil {
		prev.close()
	}
	return v, true
}

// Remount replaces the current view even when the name matches.
func (s *Session) Remount(name string) *View {
	s.mu.Lock()
	prev := s.view
	s.view = nil
	s.mu.Unlock()
	if prev != nil {
		prev.close()
	}
	v, _ := s.Enter(name)
	return v
}

// View returns the mounted view, or nil.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Touch marks the session as active.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) push(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.queue) >= maxQueuedEvents {
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Drain removes and returns the queued events.
func (s *Session) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

// Ready is signalled whenever an event is queued.
func (s *Session) Ready() <-chan struct{} {
	return s.signal
}

// Close tears down the mounted view and drops queued events.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	v := s.view
	s.view = nil
	s.queue = nil
	s.mu.Unlock()
	if v != nil {
		v.close()
	}
}
