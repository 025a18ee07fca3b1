package live

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/metrics"
)

// Hub keeps every live session and sweeps the idle ones.
type Hub struct {
	ttl      time.Duration
	toastTTL time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewHub starts a hub whose sessions expire after ttl of inactivity.
func NewHub(ttl, toastTTL time.Duration, logger *zap.Logger) *Hub {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if toastTTL <= 0 {
		toastTTL = 4 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		ttl:      ttl,
		toastTTL: toastTTL,
		log:      logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go h.sweepLoop()
	return h
}

// Session returns the session for id, creating it when needed.
func (h *Hub) Session(id string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		s = newSession(id, h.toastTTL)
		h.sessions[id] = s
		metrics.SetLiveSessions(len(h.sessions))
	}
	return s
}

// Lookup returns an existing session.
func (h *Hub) Lookup(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Len reports how many sessions are tracked.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Sweep closes sessions idle since before now minus the TTL and returns
// how many were removed.
func (h *Hub) Sweep(now time.Time) int {
	cutoff := now.Add(-h.ttl)
	var expired []*Session

	h.mu.Lock()
	for id, s := range h.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(h.sessions, id)
		}
	}
	metrics.SetLiveSessions(len(h.sessions))
	h.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		h.log.Debug("swept idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (h *Hub) sweepLoop() {
	interval := h.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-h.stop:
			return
		case now := <-t.C:
			h.Sweep(now)
		}
	}
}

// Close stops the sweeper and tears down every session.
func (h *Hub) Close() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.mu.Lock()
		all := h.sessions
		h.sessions = make(map[string]*Session)
		metrics.SetLiveSessions(0)
		h.mu.Unlock()
		for _, s := range all {
			s.Close()
		}
	})
}
