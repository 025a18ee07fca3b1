package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cppla/postboard/models"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Sentinel: DefaultSentinel})
}

func TestListPosts(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/posts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"userId":1,"id":1,"title":"a","body":"x"},{"userId":2,"id":2,"title":"b","body":"y"}]`))
	})
	posts, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 || posts[1].UserID != 2 || posts[0].Body != "x" {
		t.Fatalf("posts = %+v", posts)
	}
}

func TestListPostsFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		"decode": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`not json`)) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestServer(t, h)
			_, err := c.ListPosts(context.Background())
			if !errors.Is(err, ErrRequestFailed) {
				t.Fatalf("err = %v, want ErrRequestFailed", err)
			}
			if errors.Is(err, ErrNotFound) {
				t.Fatalf("list failure must not be NotFound")
			}
		})
	}
}

func TestTransportErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, Timeout: time.Second})
	if _, err := c.ListUsers(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
	if msg := Message(errors.New("plain")); msg != "" {
		t.Fatalf("Message(plain) = %q", msg)
	}
}

func TestGetPost(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts/1":
			_, _ = w.Write([]byte(`{"userId":1,"id":1,"title":"t","body":"b"}`))
		case "/posts/2":
			_, _ = w.Write([]byte(`{}`))
		case "/posts/3":
			_, _ = w.Write([]byte(``))
		case "/posts/4":
			_, _ = w.Write([]byte(`{"id":`))
		case "/posts/5":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	})

	post, err := c.GetPost(context.Background(), 1)
	if err != nil || post.ID != 1 || post.Title != "t" {
		t.Fatalf("GetPost(1) = %+v, %v", post, err)
	}

	for _, id := range []int{2, 3, 4, 999} {
		_, err := c.GetPost(context.Background(), id)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetPost(%d) err = %v, want ErrNotFound", id, err)
		}
	}

	_, err = c.GetPost(context.Background(), 5)
	if !errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrNotFound) {
		t.Fatalf("GetPost(5) err = %v, want ErrRequestFailed", err)
	}
}

func TestListUsers(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Leanne Graham","username":"Bret","email":"a@b.c"}]`))
	})
	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Leanne Graham" || users[0].Username != "Bret" {
		t.Fatalf("users = %+v", users)
	}
}

func TestCreatePost(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/posts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("content type = %q", ct)
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["userId"] != float64(3) {
			t.Errorf("userId = %#v, want number 3", in["userId"])
		}
		in["id"] = 101
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})

	post, err := c.CreatePost(context.Background(), models.NewPost{Title: "hi", Body: "there", UserID: 3})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ID != 101 || post.Title != "hi" || post.UserID != 3 {
		t.Fatalf("post = %+v", post)
	}
}

func TestCreatePostSentinel(t *testing.T) {
	var calls int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101,"title":"error","body":"b","userId":1}`))
	})

	_, err := c.CreatePost(context.Background(), models.NewPost{Title: "error", Body: "b", UserID: 1})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
	if Message(err) != "Internal Server Error" {
		t.Fatalf("message = %q", Message(err))
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("the request should still be issued, calls = %d", calls)
	}
}

func TestCreatePostSentinelDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":101,"title":"error","body":"b","userId":1}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL})
	if _, err := c.CreatePost(context.Background(), models.NewPost{Title: "error", Body: "b", UserID: 1}); err != nil {
		t.Fatalf("disabled sentinel should pass through, got %v", err)
	}
}

func TestCreatePostRejected(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.CreatePost(context.Background(), models.NewPost{Title: "ok", Body: "b", UserID: 1})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
	if Message(err) != "Bad Request" {
		t.Fatalf("message = %q", Message(err))
	}
	var re *RequestError
	if !errors.As(err, &re) || re.Status != http.StatusBadRequest || re.Op != "create_post" {
		t.Fatalf("request error = %+v", re)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	if _, err := c.ListPosts(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
}
