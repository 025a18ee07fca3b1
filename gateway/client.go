// Package gateway talks to the remote post/user API. Calls are single shot:
// no retries, no caching.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/metrics"
	"github.com/cppla/postboard/models"
)

// DefaultSentinel is the title that makes CreatePost fail on purpose.
const DefaultSentinel = "error"

// sentinelMessage is what a sentinel failure reports to the user.
const sentinelMessage = "Internal Server Error"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 4 << 20

// Gateway is the set of remote operations the pages depend on.
type Gateway interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id int) (models.Post, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreatePost(ctx context.Context, p models.NewPost) (models.Post, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Sentinel   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	base     string
	timeout  time.Duration
	sentinel string
	http     *http.Client
	log      *zap.Logger
}

// NewClient builds a Client. An empty Sentinel disables the forced failure.
func NewClient(opts Options) *Client {
	c := &Client{
		base:     opts.BaseURL,
		timeout:  opts.Timeout,
		sentinel: opts.Sentinel,
		http:     opts.HTTPClient,
		log:      opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	return c
}

// ListPosts fetches every post.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if _, err := c.do(ctx, "list_posts", http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost fetches one post. Missing, empty or malformed responses are ErrNotFound.
func (c *Client) GetPost(ctx context.Context, id int) (models.Post, error) {
	const op = "get_post"
	var post models.Post
	status, err := c.do(ctx, op, http.MethodGet, "/posts/"+strconv.Itoa(id), nil, &post)
	if err != nil {
		var syntaxErr *decodeError
		switch {
		case status == http.StatusNotFound, errors.As(err, &syntaxErr):
			return models.Post{}, notFound(op, status, err)
		}
		return models.Post{}, err
	}
	if post.ID == 0 {
		return models.Post{}, notFound(op, status, nil)
	}
	return post, nil
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// CreatePost submits a new post. A title equal to the sentinel fails with
// ErrRequestFailed once the request has been issued, whatever the backend said.
func (c *Client) CreatePost(ctx context.Context, p models.NewPost) (models.Post, error) {
	const op = "create_post"
	body, err := json.Marshal(p)
	if err != nil {
		return models.Post{}, failed(op, 0, "", err)
	}

	var created models.Post
	_, err = c.do(ctx, op, http.MethodPost, "/posts", body, &created)
	if c.sentinel != "" && p.Title == c.sentinel {
		c.log.Debug("sentinel title, forcing create failure", zap.String("title", p.Title))
		return models.Post{}, failed(op, 0, sentinelMessage, nil)
	}
	if err != nil {
		return models.Post{}, err
	}
	return created, nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// do issues one request and decodes a 2xx JSON body into out. It returns the
// HTTP status when a response was received.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.ObserveGateway(op, outcome, time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		outcome = "error"
		return 0, failed(op, 0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "error"
		c.log.Debug("gateway transport error", zap.String("op", op), zap.Error(err))
		return 0, failed(op, 0, "", err)
	}
	defer resp.Body.Close()

	c.log.Debug("gateway call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		if resp.StatusCode == http.StatusNotFound {
			outcome = "not_found"
		} else {
			outcome = "status"
		}
		return resp.StatusCode, failed(op, resp.StatusCode, http.StatusText(resp.StatusCode), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		outcome = "decode"
		return resp.StatusCode, failed(op, resp.StatusCode, "", &decodeError{err: fmt.Errorf("%s: %w", op, err)})
	}
	return resp.StatusCode, nil
}

var _ Gateway = (*Client)(nil)
