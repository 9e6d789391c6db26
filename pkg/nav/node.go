package nav

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/outlet/pkg/pattern"
)

// Phase is a navigation state-machine state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLeavingSelf
	PhaseLeavingChildren
	PhaseMatching
	PhaseEnteringTarget
	PhaseCommitted
	PhaseCancelled
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLeavingSelf:
		return "leaving-self"
	case PhaseLeavingChildren:
		return "leaving-children"
	case PhaseMatching:
		return "matching"
	case PhaseEnteringTarget:
		return "entering-target"
	case PhaseCommitted:
		return "committed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes how a navigation settled.
type Result struct {
	// Phase is the terminal phase: PhaseCommitted, PhaseCancelled, or
	// PhaseFailed.
	Phase Phase

	// Path is the normalized pathname the navigation was asked for.
	Path string

	// LocalPath is the consumed portion committed to the node (full path
	// minus the trailing tail capture).
	LocalPath string

	// Route is the committed descriptor. Nil for implicit deep-wildcard
	// commits and for non-committed outcomes.
	Route *Descriptor

	// Params are the committed URL-derived params.
	Params pattern.Params

	// Tail is the unconsumed remainder forwarded to children.
	Tail string

	// HasTail reports whether a tail capture exists (it may be empty).
	HasTail bool

	// Superseded marks a navigation cancelled because a newer token was
	// issued, as opposed to a guard veto.
	Superseded bool
}

// Node is one element of the navigation tree. It owns a route table, a set
// of registered children, and the per-node navigation state machine.
type Node struct {
	id     string
	logger *slog.Logger

	// latest is the most recently issued navigation token. A navigation
	// is authoritative iff its token equals latest.
	latest atomic.Uint64

	mu       sync.Mutex
	table    *Table
	parent   *Node
	children []*Node
	host     Host

	currentPath string
	fullPath    string
	current     *Descriptor
	params      pattern.Params
	passed      map[string]any
	pendingTail string
	hasTail     bool
	committed   bool

	navigating bool
	activeTok  uint64
	settled    chan struct{}
	closed     bool
	unregister func()
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithLogger sets the node's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithHost attaches a host surface to the node.
func WithHost(h Host) NodeOption {
	return func(n *Node) {
		n.host = h
	}
}

// WithID overrides the generated node ID.
func WithID(id string) NodeOption {
	return func(n *Node) {
		if id != "" {
			n.id = id
		}
	}
}

// NewNode creates an idle node with an empty route table.
func NewNode(opts ...NodeOption) *Node {
	n := &Node{
		id:     generateNodeID(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("node_id", n.id)
	n.table = newTable(n)
	return n
}

// generateNodeID returns a random 16-hex-char node identifier.
func generateNodeID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ID returns the node identifier.
func (n *Node) ID() string { return n.id }

// Routes returns the node's route table.
func (n *Node) Routes() *Table { return n.table }

// Parent returns the claiming ancestor, or nil for an unregistered node.
// The reference is non-owning; teardown is driven by Close, not by the
// parent.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Children returns a snapshot of the registered children in claim order.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Node(nil), n.children...)
}

// CurrentPath returns the committed local pathname.
func (n *Node) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentPath
}

// CurrentRoute returns the committed descriptor, or nil.
func (n *Node) CurrentRoute() *Descriptor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// CurrentParams returns a copy of the committed URL-derived params.
func (n *Node) CurrentParams() pattern.Params {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.params.Clone()
}

// PendingTail returns the tail capture from the last commit, if one exists.
// Late-registering children are synchronized with it at claim time.
func (n *Node) PendingTail() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pendingTail, n.hasTail
}

// Active reports whether the node can participate in the tree (i.e. has
// not completed teardown).
func (n *Node) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.closed
}

// committedFull returns the full pathname of the last commit, for table
// mutations that trigger re-navigation.
func (n *Node) committedFull() (string, map[string]any, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fullPath, n.passed, n.committed
}

// pendingNavigation reports whether a navigation is currently in flight.
func (n *Node) pendingNavigation() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigating
}

// renavigate re-runs the committed pathname in the background after a table
// mutation. Failures are logged, not surfaced: there is no caller to return
// them to.
func (n *Node) renavigate(pathname string, passed map[string]any) {
	go func() {
		if _, err := n.Navigate(context.Background(), pathname, passed); err != nil {
			n.logger.Debug("re-navigation after table mutation failed",
				"path", pathname, "error", err)
		}
	}()
}

// guardNodeKey marks the guard context with the node whose navigation is
// invoking the guard, so a re-entrant Navigate call from inside the guard
// can skip the serialization wait.
type guardNodeKey struct{}

func guardNode(ctx context.Context) *Node {
	n, _ := ctx.Value(guardNodeKey{}).(*Node)
	return n
}

// Navigate resolves pathname against the node's table and drives the node
// through a guarded transition.
//
// The sequence: wait for any pending navigation to settle, run the current
// route's leave guard, run leave guards depth-first through the registered
// subtree, resolve the best-matching descriptor, run its enter guard,
// commit atomically, forward the tail capture (if any) to every registered
// child, and signal the host.
//
// A Deny from any guard cancels the navigation silently (nil error) and
// leaves committed state untouched. A navigation superseded by a newer call
// on the same node also stops silently. Guard errors and ErrNoMatch
// propagate to the caller; committed state remains as it was.
func (n *Node) Navigate(ctx context.Context, pathname string, passed map[string]any) (*Result, error) {
	return n.run(ctx, pathname, passed, true)
}

// Recover re-runs the navigation algorithm without invoking any leave
// guards. It exists for the top-level caller to re-stabilize the tree after
// an uncaught guard fault without double-firing leave side effects.
func (n *Node) Recover(ctx context.Context, pathname string) (*Result, error) {
	return n.run(ctx, pathname, nil, false)
}

func (n *Node) run(ctx context.Context, pathname string, passed map[string]any, runLeave bool) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	normalized := pattern.Normalize(pathname)
	res := &Result{Phase: PhaseIdle, Path: normalized}

	// Step 1: serialize against the pending navigation, unless this call
	// was issued from inside one of our own guards; its fresh token will
	// supersede the outer navigation instead.
	reentrant := guardNode(ctx) == n

	n.mu.Lock()
	if !reentrant {
		for n.navigating {
			ch := n.settled
			n.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			n.mu.Lock()
		}
	}
	if n.closed {
		n.mu.Unlock()
		return nil, ErrNodeClosed
	}

	// Step 2: a fresh token is the sole criterion for authority.
	token := n.latest.Add(1)
	n.navigating = true
	n.activeTok = token
	done := make(chan struct{})
	n.settled = done
	leaveRoute := n.current
	leaveParams := mergeGuardParams(n.params, n.passed)
	n.mu.Unlock()

	settledOnce := false
	settle := func() {
		if settledOnce {
			return
		}
		settledOnce = true
		close(done)
		n.mu.Lock()
		idle := false
		if n.activeTok == token {
			n.navigating = false
			idle = true
		}
		table := n.table
		n.mu.Unlock()
		if idle {
			table.replayDeferred()
		}
	}
	defer settle()

	gctx := context.WithValue(ctx, guardNodeKey{}, n)

	// Step 3: leave guard on self.
	if runLeave && leaveRoute != nil && leaveRoute.Leave != nil {
		res.Phase = PhaseLeavingSelf
		decision, err := leaveRoute.Leave(gctx, leaveParams)
		if err != nil {
			res.Phase = PhaseFailed
			return res, err
		}
		if decision == Deny {
			n.logger.Debug("navigation vetoed by leave guard", "path", normalized)
			res.Phase = PhaseCancelled
			return res, nil
		}
	}

	// Step 4: checkpoint.
	if n.superseded(token) {
		res.Phase = PhaseCancelled
		res.Superseded = true
		return res, nil
	}

	// Step 5: leave guards depth-first through the registered subtree.
	if runLeave {
		res.Phase = PhaseLeavingChildren
		allow, err := n.leaveSubtree(gctx)
		if err != nil {
			res.Phase = PhaseFailed
			return res, err
		}
		if !allow {
			n.logger.Debug("navigation vetoed by child leave guard", "path", normalized)
			res.Phase = PhaseCancelled
			return res, nil
		}
	}

	// Step 6: checkpoint.
	if n.superseded(token) {
		res.Phase = PhaseCancelled
		res.Superseded = true
		return res, nil
	}

	// Step 7: resolve against the sorted view.
	res.Phase = PhaseMatching
	target, params, err := n.table.resolve(normalized)
	if err != nil {
		res.Phase = PhaseFailed
		return res, err
	}

	// Step 8: enter guard. Nothing may be committed before it approves.
	if target != nil && target.Enter != nil {
		res.Phase = PhaseEnteringTarget
		decision, err := target.Enter(gctx, mergeGuardParams(params, passed))
		if err != nil {
			res.Phase = PhaseFailed
			return res, err
		}
		if decision == Deny {
			n.logger.Debug("navigation vetoed by enter guard", "path", normalized)
			res.Phase = PhaseCancelled
			return res, nil
		}
	}

	// Step 9: checkpoint.
	if n.superseded(token) {
		res.Phase = PhaseCancelled
		res.Superseded = true
		return res, nil
	}

	// Step 10: commit atomically.
	tail, hasTail := pattern.Tail(params)
	local := normalized
	if hasTail {
		local = strings.TrimSuffix(normalized[:len(normalized)-len(tail)], "/")
	}

	n.mu.Lock()
	if n.closed || n.latest.Load() != token {
		superseded := !n.closed
		n.mu.Unlock()
		res.Phase = PhaseCancelled
		res.Superseded = superseded
		return res, nil
	}
	n.currentPath = local
	n.fullPath = normalized
	n.current = target
	n.params = params
	n.passed = passed
	n.pendingTail = tail
	n.hasTail = hasTail
	n.committed = true
	kids := append([]*Node(nil), n.children...)
	n.mu.Unlock()

	res.Phase = PhaseCommitted
	res.Route = target
	res.Params = params
	res.LocalPath = local
	res.Tail = tail
	res.HasTail = hasTail

	n.logger.Debug("navigation committed",
		"path", normalized, "local", local, "tail", tail, "has_tail", hasTail)

	// Step 11: forward the tail to every registered child. Each child's
	// navigation is independent of this node's commit.
	if hasTail {
		fwd := forwardPath(tail)
		for _, child := range kids {
			go func(c *Node) {
				if _, err := c.Navigate(context.WithoutCancel(ctx), fwd, passed); err != nil {
					c.logger.Debug("tail navigation failed", "tail", fwd, "error", err)
				}
			}(child)
		}
	}

	// Step 12: host signal and commit notification, only while still
	// authoritative.
	if !n.superseded(token) {
		n.notifyCommit(Commit{
			NodeID:    n.id,
			LocalPath: local,
			FullPath:  normalized,
			Params:    params.Clone(),
			Passed:    passed,
			Route:     target,
		})
	}

	return res, nil
}

// superseded reports whether a newer token has been issued.
func (n *Node) superseded(token uint64) bool {
	return n.latest.Load() != token
}

// leaveSubtree asks every registered descendant, depth-first, whether its
// current route's leave guard permits leaving. Short-circuits on the first
// Deny or error.
func (n *Node) leaveSubtree(ctx context.Context) (bool, error) {
	n.mu.Lock()
	kids := append([]*Node(nil), n.children...)
	n.mu.Unlock()

	for _, child := range kids {
		child.mu.Lock()
		route := child.current
		params := mergeGuardParams(child.params, child.passed)
		child.mu.Unlock()

		if route != nil && route.Leave != nil {
			decision, err := route.Leave(ctx, params)
			if err != nil {
				return false, err
			}
			if decision == Deny {
				return false, nil
			}
		}

		allow, err := child.leaveSubtree(ctx)
		if err != nil || !allow {
			return allow, err
		}
	}
	return true, nil
}

// notifyCommit delivers the commit to the nearest host for re-rendering and
// bubbles the notification through every host up the ancestor chain.
func (n *Node) notifyCommit(c Commit) {
	rendered := false
	for p := n; p != nil; {
		p.mu.Lock()
		h := p.host
		parent := p.parent
		p.mu.Unlock()
		if h != nil {
			if !rendered {
				h.RequestRender()
				rendered = true
			}
			h.HandleCommit(c)
		}
		p = parent
	}
}

// Close tears the node down. It unregisters from its parent before any
// other teardown step, so the node can never receive a tail propagation
// meant for a structural replacement, then abandons any pending navigation
// by invalidating all outstanding tokens. Registered children are left to
// their own lifecycles.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	unreg := n.unregister
	n.unregister = nil
	n.mu.Unlock()

	if unreg != nil {
		unreg()
	}

	n.mu.Lock()
	n.closed = true
	n.latest.Add(1)
	n.mu.Unlock()

	n.logger.Debug("node closed")
	return nil
}

// forwardPath roots a tail capture so children resolve it as a pathname.
func forwardPath(tail string) string {
	if strings.HasPrefix(tail, "/") {
		return tail
	}
	return "/" + tail
}

// mergeGuardParams merges URL-derived params and caller-passed params into
// the single map handed to guards. Passed params win on key collision.
func mergeGuardParams(params pattern.Params, passed map[string]any) map[string]any {
	out := make(map[string]any, len(params)+len(passed))
	for k, v := range params {
		out[k] = v
	}
	for k, v := range passed {
		out[k] = v
	}
	return out
}
