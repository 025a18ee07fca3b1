package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScopeAfterFuncRuns(t *testing.T) {
	s := NewScope()
	var n int32
	s.AfterFunc(5*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	waitFor(t, func() bool { return atomic.LoadInt32(&n) == 1 })
	if s.Pending() != 0 {
		t.Fatalf("pending = %d", s.Pending())
	}
}

func TestScopeStop(t *testing.T) {
	s := NewScope()
	var n int32
	stop := s.AfterFunc(20*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	if !stop() {
		t.Fatal("stop should report it cancelled the callback")
	}
	if stop() {
		t.Fatal("second stop must report false")
	}
	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&n) != 0 {
		t.Fatal("stopped callback ran")
	}
}

func TestScopeCloseCancelsEverything(t *testing.T) {
	s := NewScope()
	var n int32
	for i := 0; i < 3; i++ {
		s.AfterFunc(20*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	}
	s.Close()
	s.Close()
	s.AfterFunc(time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&n) != 0 {
		t.Fatalf("%d callbacks ran after close", n)
	}
}

type closeCounter struct{ n int32 }

func (c *closeCounter) Close() { atomic.AddInt32(&c.n, 1) }

func TestEnterSameViewKeepsState(t *testing.T) {
	s := newSession("a", time.Second)
	v1, fresh := s.Enter("list")
	if !fresh {
		t.Fatal("first enter should be fresh")
	}
	v1.SetState(42)
	v2, fresh := s.Enter("list")
	if fresh || v2 != v1 || v2.State() != 42 {
		t.Fatal("re-entering the same view should keep it")
	}
}

func TestEnterOtherViewTearsDownPrevious(t *testing.T) {
	s := newSession("a", time.Second)
	create, _ := s.Enter("create")
	cc := &closeCounter{}
	create.SetState(cc)
	var fired int32
	create.AfterFunc(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	create.Notify("success", "hi")

	list, fresh := s.Enter("list")
	if !fresh || list == create {
		t.Fatal("expected a new view")
	}
	if !create.Closed() || atomic.LoadInt32(&cc.n) != 1 {
		t.Fatal("previous view and its state should be closed")
	}
	if len(s.Drain()) != 0 {
		t.Fatal("events of the old view must be dropped")
	}
	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("timer of the old view fired")
	}

	// a late call from the torn down view is ignored
	create.Navigate("/")
	if len(s.Drain()) != 0 {
		t.Fatal("closed view pushed an event")
	}
}

func TestRemountReplacesView(t *testing.T) {
	s := newSession("a", time.Second)
	v1, _ := s.Enter("create")
	v2 := s.Remount("create")
	if v1 == v2 || !v1.Closed() || v2.Closed() {
		t.Fatal("remount should replace the view")
	}
}

func TestToastAutoDismiss(t *testing.T) {
	s := newSession("a", 20*time.Millisecond)
	v, _ := s.Enter("create")
	v.Notify("success", "first")
	v.Notify("success", "second")
	if got := v.Toast(); got == nil || got.Message != "second" {
		t.Fatalf("toast = %+v", got)
	}
	waitFor(t, func() bool { return v.Toast() == nil })

	events := s.Drain()
	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	if strings.Join(types, ",") != "toast,toast,dismiss" {
		t.Fatalf("events = %v", types)
	}
}

func TestQueueDropsOldest(t *testing.T) {
	s := newSession("a", time.Second)
	v, _ := s.Enter("list")
	for i := 0; i < maxQueuedEvents+5; i++ {
		v.Navigate("/" + string(rune('a'+i%26)))
	}
	events := s.Drain()
	if len(events) != maxQueuedEvents {
		t.Fatalf("queued = %d", len(events))
	}
	if events[0].Path != "/"+string(rune('a'+5)) {
		t.Fatalf("oldest kept = %q", events[0].Path)
	}
}

func TestHubSweep(t *testing.T) {
	h := NewHub(time.Minute, time.Second, nil)
	defer h.Close()

	old := h.Session("old")
	v, _ := old.Enter("create")
	h.Session("new")
	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Minute)
	old.mu.Unlock()

	if n := h.Sweep(time.Now()); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, ok := h.Lookup("old"); ok {
		t.Fatal("old session still tracked")
	}
	if !v.Closed() {
		t.Fatal("view of swept session should be closed")
	}
	if h.Len() != 1 {
		t.Fatalf("len = %d", h.Len())
	}
}

func TestHubCloseTearsDown(t *testing.T) {
	h := NewHub(time.Minute, time.Second, nil)
	v, _ := h.Session("a").Enter("list")
	h.Close()
	h.Close()
	if !v.Closed() || h.Len() != 0 {
		t.Fatal("close should tear every session down")
	}
}

func TestServeWSStreamsEvents(t *testing.T) {
	h := NewHub(time.Minute, time.Second, nil)
	defer h.Close()
	sess := h.Session("sid")
	view, _ := sess.Enter("create")
	// queued before the socket attaches
	view.Notify("success", "created")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, sess)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() Event {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return ev
	}

	if ev := read(); ev.Type != EventToast || ev.Message != "created" || ev.Kind != "success" {
		t.Fatalf("event = %+v", ev)
	}
	view.Navigate("/")
	if ev := read(); ev.Type != EventNavigate || ev.Path != "/" {
		t.Fatalf("event = %+v", ev)
	}

	conn.Close()
	time.Sleep(20 * time.Millisecond)
	if view.Closed() {
		t.Fatal("dropping the socket must not tear down the view")
	}
}

func TestSameOrigin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/live", nil)
	if !sameOrigin(r) {
		t.Fatal("no origin should pass")
	}
	r.Header.Set("Origin", "http://example.com")
	if !sameOrigin(r) {
		t.Fatal("same host should pass")
	}
	r.Header.Set("Origin", "http://evil.test")
	if sameOrigin(r) {
		t.Fatal("foreign origin should be rejected")
	}
}
