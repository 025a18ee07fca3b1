package live

import (
	"sync"
	"time"
)

// Closer is implemented by view state that holds resources of its own.
type Closer interface {
	Close()
}

// View is the page a session currently has mounted. It implements the
// scheduler, navigator and notifier the form controller needs.
type View struct {
	Name string

	session  *Session
	scope    *Scope
	toastTTL time.Duration

	mu        sync.Mutex
	state     any
	toast     *Toast
	stopToast func() bool
}

// AfterFunc schedules f within the view's scope.
func (v *View) AfterFunc(d time.Duration, f func()) func() bool {
	return v.scope.AfterFunc(d, f)
}

// Navigate asks the browser to load path.
func (v *View) Navigate(path string) {
	if v.scope.Closed() {
		return
	}
	v.session.push(Event{Type: EventNavigate, Path: path})
}

// Notify shows a toast, replacing any current one, and dismisses it after
// the configured TTL.
func (v *View) Notify(kind, message string) {
	if v.scope.Closed() {
		return
	}
	v.mu.Lock()
	if v.stopToast != nil {
		v.stopToast()
	}
	v.toast = &Toast{Kind: kind, Message: message}
	v.stopToast = v.scope.AfterFunc(v.toastTTL, v.DismissToast)
	v.mu.Unlock()

	v.session.push(Event{Type: EventToast, Kind: kind, Message: message})
}

// DismissToast hides the current toast, if any.
func (v *View) DismissToast() {
	v.mu.Lock()
	had := v.toast != nil
	v.toast = nil
	if v.stopToast != nil {
		v.stopToast()
		v.stopToast = nil
	}
	v.mu.Unlock()

	if had && !v.scope.Closed() {
		v.session.push(Event{Type: EventDismiss})
	}
}

// Toast returns the toast being shown, or nil.
func (v *View) Toast() *Toast {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.toast == nil {
		return nil
	}
	t := *v.toast
	return &t
}

// State returns the value stored with SetState.
func (v *View) State() any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SetState stores page specific state, such as the list filters or the
// form controller.
func (v *View) SetState(s any) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// Update replaces the stored state with fn applied to it, atomically with
// respect to other Update and SetState calls, and returns the new state.
func (v *View) Update(fn func(any) any) any {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = fn(v.state)
	return v.state
}

// Closed reports whether the view has been torn down.
func (v *View) Closed() bool {
	return v.scope.Closed()
}

func (v *View) close() {
	v.scope.Close()
	v.mu.Lock()
	st := v.state
	v.toast = nil
	v.stopToast = nil
	v.mu.Unlock()
	if c, ok := st.(Closer); ok {
		c.Close()
	}
}
