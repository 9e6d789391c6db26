// Package outlet wires a navigation tree to its environment.
//
// The core state machine lives in pkg/nav and knows nothing about browser
// history, click capture, or rendering. Root wraps the top node by
// delegation: it canonicalizes incoming paths, runs the interceptor chain
// around Navigate and Recover, and fans commit notifications out to
// observers. Environment integrations subscribe with OnCommit and call
// Navigate/Recover; they never subclass the core.
package outlet

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/outlet/pkg/nav"
	"github.com/vango-dev/outlet/pkg/routepath"
)

// Config configures a Root.
type Config struct {
	// Logger is used by the root and its top node. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Host receives render requests and commit notifications, in addition
	// to any OnCommit observers. Optional.
	Host nav.Host

	// Interceptors are applied, in order, around every root-level
	// Navigate and Recover.
	Interceptors []nav.Interceptor
}

// Root is the environment-facing wrapper around the top navigation node.
type Root struct {
	logger *slog.Logger
	node   *nav.Node

	mu           sync.Mutex
	interceptors []nav.Interceptor
	observers    map[int]func(nav.Commit)
	nextObserver int
	host         nav.Host
}

// New creates a Root with a fresh top node. The root installs itself as the
// node's host, so commits from the whole registered tree bubble to it.
func New(cfg Config) *Root {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Root{
		logger:       logger,
		interceptors: append([]nav.Interceptor(nil), cfg.Interceptors...),
		observers:    make(map[int]func(nav.Commit)),
		host:         cfg.Host,
	}
	r.node = nav.NewNode(nav.WithLogger(logger), nav.WithHost(r))
	return r
}

// Node returns the top navigation node, for route registration and for
// mounting child subtrees via nav.WithNode/nav.Announce.
func (r *Root) Node() *nav.Node {
	return r.node
}

// Use appends interceptors to the chain.
func (r *Root) Use(interceptors ...nav.Interceptor) {
	r.mu.Lock()
	r.interceptors = append(r.interceptors, interceptors...)
	r.mu.Unlock()
}

// OnCommit subscribes an observer to commit notifications from the whole
// tree. The returned function unsubscribes it.
func (r *Root) OnCommit(fn func(nav.Commit)) func() {
	r.mu.Lock()
	id := r.nextObserver
	r.nextObserver++
	r.observers[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// Navigate canonicalizes the path and drives the top node through a guarded
// transition. The query string, if any, is split off and passed through
// opaquely on the Navigation seen by interceptors.
func (r *Root) Navigate(ctx context.Context, path string, passed map[string]any) (*nav.Result, error) {
	canonical, err := routepath.CanonicalizeNavPath(path)
	if err != nil {
		return nil, err
	}
	pathname, query := routepath.SplitPathAndQuery(canonical)

	nv := &nav.Navigation{Path: pathname, Query: query, Passed: passed}
	var res *nav.Result
	err = r.execute(ctx, nv, func() error {
		var navErr error
		res, navErr = r.node.Navigate(ctx, pathname, passed)
		nv.Result = res
		return navErr
	})
	return res, err
}

// Recover re-stabilizes the tree after an uncaught guard fault. Leave
// guards are not invoked.
func (r *Root) Recover(ctx context.Context, path string) (*nav.Result, error) {
	canonical, err := routepath.CanonicalizeNavPath(path)
	if err != nil {
		return nil, err
	}
	pathname, query := routepath.SplitPathAndQuery(canonical)

	nv := &nav.Navigation{Path: pathname, Query: query, Recovery: true}
	var res *nav.Result
	err = r.execute(ctx, nv, func() error {
		var navErr error
		res, navErr = r.node.Recover(ctx, pathname)
		nv.Result = res
		return navErr
	})
	return res, err
}

// execute runs the interceptor chain around final.
func (r *Root) execute(ctx context.Context, nv *nav.Navigation, final func() error) error {
	r.mu.Lock()
	chain := append([]nav.Interceptor(nil), r.interceptors...)
	r.mu.Unlock()

	next := final
	for i := len(chain) - 1; i >= 0; i-- {
		interceptor, inner := chain[i], next
		next = func() error { return interceptor.Handle(ctx, nv, inner) }
	}
	return next()
}

// Close tears down the top node. Mounted children are left to their own
// lifecycles.
func (r *Root) Close() error {
	return r.node.Close()
}

// RequestRender implements nav.Host by delegating to the configured host.
func (r *Root) RequestRender() {
	r.mu.Lock()
	h := r.host
	r.mu.Unlock()
	if h != nil {
		h.RequestRender()
	}
}

// HandleCommit implements nav.Host: fan the notification out to the
// configured host and every OnCommit observer.
func (r *Root) HandleCommit(c nav.Commit) {
	r.mu.Lock()
	h := r.host
	fns := make([]func(nav.Commit), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	if h != nil {
		h.HandleCommit(c)
	}
	for _, fn := range fns {
		fn(c)
	}
}
