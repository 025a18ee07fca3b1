// Package form drives the create-post form: validation, a single in-flight
// submission, and the delayed return to the list after success.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/models"
)

// SuccessMessage is the toast shown after a post was created.
const SuccessMessage = "A new post has been successfully created!"

// FallbackError is shown when a failed submission carries no message.
const FallbackError = "Something went wrong"

var (
	// ErrSubmitInFlight is returned while a previous submission is still running.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrClosed is returned once the owning view has been torn down.
	ErrClosed = errors.New("form: controller closed")
)

// State is the lifecycle position of the draft.
type State int

const (
	Editing State = iota
	Validating
	Submitting
	Success
	Failed
	Reset
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Reset:
		return "reset"
	}
	return "unknown"
}

// Creator is the one gateway call the form needs.
type Creator interface {
	CreatePost(ctx context.Context, p models.NewPost) (models.Post, error)
}

// Scheduler runs f after d. The returned stop function cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a transient notification.
type Notifier interface {
	Notify(kind, message string)
}

// Options wires a Controller. Scheduler, Navigator and Notifier default to
// time.AfterFunc and no-ops.
type Options struct {
	Gateway       Creator
	Users         []models.User
	Scheduler     Scheduler
	Navigator     Navigator
	Notifier      Notifier
	NavigateDelay time.Duration
	ReturnPath    string
	Logger        *zap.Logger
}

// Snapshot is a copy of the controller's state for rendering.
type Snapshot struct {
	State          State
	Draft          models.Draft
	FieldErrors    map[string]string
	APIError       string
	SubmitDisabled bool
	Created        *models.Post
}

// Controller owns one draft for the lifetime of a create view.
// Callbacks into Scheduler, Navigator and Notifier must not call back into the controller.
type Controller struct {
	mu sync.Mutex

	gw         Creator
	users      []models.User
	sched      Scheduler
	nav        Navigator
	notify     Notifier
	delay      time.Duration
	returnPath string
	log        *zap.Logger

	state     State
	draft     models.Draft
	fieldErrs map[string]string
	apiErr    string
	created   *models.Post
	stopNav   func() bool
	closed    bool
}

// New creates a controller in the Editing state.
func New(opts Options) *Controller {
	c := &Controller{
		gw:         opts.Gateway,
		users:      opts.Users,
		sched:      opts.Scheduler,
		nav:        opts.Navigator,
		notify:     opts.Notifier,
		delay:      opts.NavigateDelay,
		returnPath: opts.ReturnPath,
		log:        opts.Logger,
	}
	if c.sched == nil {
		c.sched = timeScheduler{}
	}
	if c.nav == nil {
		c.nav = noopNavigator{}
	}
	if c.notify == nil {
		c.notify = noopNotifier{}
	}
	if c.delay <= 0 {
		c.delay = 2 * time.Second
	}
	if c.returnPath == "" {
		c.returnPath = "/"
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Users returns the authors the draft can be attributed to.
func (c *Controller) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users
}

// SetUsers replaces the known authors, for example after a failed load
// was retried.
func (c *Controller) SetUsers(users []models.User) {
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
}

// Edit replaces the draft. It is rejected while a submission is running.
func (c *Controller) Edit(d models.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state == Submitting {
		return ErrSubmitInFlight
	}
	c.draft = d
	c.state = Editing
	return nil
}

// DismissError hides the submission failure banner.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.apiErr = ""
	c.mu.Unlock()
}

// Submit validates the draft and, if it is valid, creates the post.
// Validation failures return a *ValidationError without touching the gateway.
func (c *Controller) Submit(ctx context.Context) (models.Post, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Post{}, ErrClosed
	}
	if c.state == Submitting {
		c.mu.Unlock()
		return models.Post{}, ErrSubmitInFlight
	}

	c.state = Validating
	c.apiErr = ""
	payload, err := Validate(c.draft, c.users)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			c.fieldErrs = copyFields(ve.Fields)
		}
		c.state = Editing
		c.mu.Unlock()
		return models.Post{}, err
	}
	c.fieldErrs = nil
	c.state = Submitting
	c.mu.Unlock()

	created, err := c.gw.CreatePost(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// the view is gone: nothing left to notify or navigate
		return created, err
	}
	if err != nil {
		c.state = Failed
		c.apiErr = gateway.Message(err)
		if c.apiErr == "" {
			c.apiErr = FallbackError
		}
		c.log.Warn("create post failed", zap.Error(err))
		return models.Post{}, err
	}

	c.state = Success
	c.notify.Notify("success", SuccessMessage)
	c.draft = models.Draft{}
	c.created = &created
	c.state = Reset
	if c.stopNav != nil {
		c.stopNav()
	}
	c.stopNav = c.sched.AfterFunc(c.delay, c.navigate)
	return created, nil
}

func (c *Controller) navigate() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopNav = nil
	nav, path := c.nav, c.returnPath
	c.mu.Unlock()
	nav.Navigate(path)
}

// Close tears the controller down and cancels a pending navigation.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.stopNav != nil {
		c.stopNav()
		c.stopNav = nil
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:          c.state,
		Draft:          c.draft,
		FieldErrors:    copyFields(c.fieldErrs),
		APIError:       c.apiErr,
		SubmitDisabled: c.state == Submitting,
	}
	if c.created != nil {
		p := *c.created
		s.Created = &p
	}
	return s
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string) {}
