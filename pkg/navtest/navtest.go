package navtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/outlet/pkg/nav"
)

// RecorderHost is a nav.Host that records every render request and commit
// notification it receives.
//
// Example:
//
//	host := navtest.NewRecorderHost()
//	n := nav.NewNode(nav.WithHost(host))
//	n.Routes().Add(&nav.Descriptor{Path: "/a", Render: navtest.NopRender})
//	n.Navigate(context.Background(), "/a", nil)
//	if host.RenderCount() != 1 { ... }
type RecorderHost struct {
	mu      sync.Mutex
	renders int
	commits []nav.Commit
	signal  chan struct{}
}

// NewRecorderHost creates an empty recorder.
func NewRecorderHost() *RecorderHost {
	return &RecorderHost{signal: make(chan struct{}, 64)}
}

// RequestRender implements nav.Host.
func (h *RecorderHost) RequestRender() {
	h.mu.Lock()
	h.renders++
	h.mu.Unlock()
}

// HandleCommit implements nav.Host.
func (h *RecorderHost) HandleCommit(c nav.Commit) {
	h.mu.Lock()
	h.commits = append(h.commits, c)
	h.mu.Unlock()
	select {
	case h.signal <- struct{}{}:
	default:
	}
}

// RenderCount returns the number of render requests received.
func (h *RecorderHost) RenderCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.renders
}

// Commits returns a copy of the received commit notifications in order.
func (h *RecorderHost) Commits() []nav.Commit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]nav.Commit(nil), h.commits...)
}

// LastCommit returns the most recent commit, if any.
func (h *RecorderHost) LastCommit() (nav.Commit, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commits) == 0 {
		return nav.Commit{}, false
	}
	return h.commits[len(h.commits)-1], true
}

// WaitCommit blocks until a commit arrives or the timeout expires.
func (h *RecorderHost) WaitCommit(t *testing.T, timeout time.Duration) nav.Commit {
	t.Helper()
	h.mu.Lock()
	if len(h.commits) > 0 {
		c := h.commits[len(h.commits)-1]
		h.mu.Unlock()
		return c
	}
	h.mu.Unlock()

	select {
	case <-h.signal:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a commit")
	}
	c, _ := h.LastCommit()
	return c
}

// NopRender is a render function that produces nothing. For tests that only
// exercise navigation semantics.
func NopRender(params map[string]any) nav.View { return nil }

// AllowGuard returns a guard that permits every transition.
func AllowGuard() nav.GuardFunc {
	return func(ctx context.Context, params map[string]any) (nav.Decision, error) {
		return nav.Allow, nil
	}
}

// DenyGuard returns a guard that vetoes every transition.
func DenyGuard() nav.GuardFunc {
	return func(ctx context.Context, params map[string]any) (nav.Decision, error) {
		return nav.Deny, nil
	}
}

// ErrGuard returns a guard that fails with err.
func ErrGuard(err error) nav.GuardFunc {
	return func(ctx context.Context, params map[string]any) (nav.Decision, error) {
		return nav.Allow, err
	}
}

// CountingGuard returns an allowing guard and a counter of its invocations.
func CountingGuard() (nav.GuardFunc, *Counter) {
	c := &Counter{}
	return func(ctx context.Context, params map[string]any) (nav.Decision, error) {
		c.inc()
		return nav.Allow, nil
	}, c
}

// BlockingGuard returns a guard that signals entry on entered and blocks
// until release is closed. For exercising in-flight navigations.
func BlockingGuard(entered chan<- struct{}, release <-chan struct{}) nav.GuardFunc {
	return func(ctx context.Context, params map[string]any) (nav.Decision, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nav.Allow, nil
	}
}

// Counter is a concurrency-safe invocation counter.
type Counter struct {
	mu sync.Mutex
	n  int
}

func (c *Counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

// Count returns the current value.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Settle polls until cond holds, failing the test after two seconds. Tail
// propagation to children is asynchronous; use this to wait for it.
func Settle(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
