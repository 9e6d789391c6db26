package nav

import "context"

// nodeCtxKey carries the mount chain through the host's context. Each
// mounted subtree wraps its children's context with WithNode; the chain
// remembers outer mounts so an announce can bubble past a torn-down node.
type nodeCtxKey struct{}

// nodeChain is one link of the mount chain, innermost first.
type nodeChain struct {
	node *Node
	prev *nodeChain
}

// WithNode returns a context carrying n as the nearest mounted node,
// chained in front of any outer mounts already on the context.
func WithNode(ctx context.Context, n *Node) context.Context {
	prev, _ := ctx.Value(nodeCtxKey{}).(*nodeChain)
	return context.WithValue(ctx, nodeCtxKey{}, &nodeChain{node: n, prev: prev})
}

// FromContext returns the nearest mounted node in the context chain, or
// nil.
func FromContext(ctx context.Context) *Node {
	if c, ok := ctx.Value(nodeCtxKey{}).(*nodeChain); ok {
		return c.node
	}
	return nil
}

// Announce registers child with its nearest active ancestor.
//
// The announce bubbles: starting from the nearest node in the mount chain,
// the first ancestor that has not been torn down claims the child. The
// claim adds the child to the ancestor's child set and returns the
// unregister callback the child must invoke first on teardown (Close does
// this automatically). If the claiming ancestor already holds a pending
// tail capture from its last commit, that tail is forwarded to the child
// immediately so it synchronizes without waiting for the ancestor's next
// navigation.
func Announce(ctx context.Context, child *Node) (func(), error) {
	if child == nil {
		return nil, ErrNoAncestor
	}
	chain, _ := ctx.Value(nodeCtxKey{}).(*nodeChain)
	for c := chain; c != nil; c = c.prev {
		for p := c.node; p != nil; p = p.Parent() {
			if p == child {
				break
			}
			if unregister, ok := p.claim(child); ok {
				return unregister, nil
			}
		}
	}
	return nil, ErrNoAncestor
}

// claim adds child to the node's child set. Fails when the node has
// completed teardown, letting the announce bubble further up.
func (n *Node) claim(child *Node) (func(), bool) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, false
	}
	n.children = append(n.children, child)
	tail, hasTail, passed := n.pendingTail, n.hasTail, n.passed
	n.mu.Unlock()

	unregister := func() { n.release(child) }

	child.mu.Lock()
	child.parent = n
	child.unregister = unregister
	child.mu.Unlock()

	n.logger.Debug("claimed child", "child_id", child.id)

	if hasTail {
		fwd := forwardPath(tail)
		go func() {
			if _, err := child.Navigate(context.Background(), fwd, passed); err != nil {
				child.logger.Debug("pending tail sync failed", "tail", fwd, "error", err)
			}
		}()
	}
	return unregister, true
}

// release removes child from the child set and clears its parent link.
func (n *Node) release(child *Node) {
	n.mu.Lock()
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	child.mu.Lock()
	if child.parent == n {
		child.parent = nil
	}
	child.unregister = nil
	child.mu.Unlock()
}
