package nav

import (
	"context"

	"github.com/vango-dev/outlet/pkg/pattern"
)

// Commit is the notification emitted when a navigation commits. It is
// dispatched upward through the hosts registered on the node and its
// ancestors.
type Commit struct {
	// NodeID identifies the committing node.
	NodeID string `json:"nodeId"`

	// LocalPath is the portion of the pathname this node consumed (the
	// full pathname minus the trailing tail capture, if any).
	LocalPath string `json:"localPath"`

	// FullPath is the normalized pathname the navigation resolved.
	FullPath string `json:"fullPath"`

	// Params are the URL-derived params of the committed route.
	Params pattern.Params `json:"params,omitempty"`

	// Passed are the caller-passed params.
	Passed map[string]any `json:"passed,omitempty"`

	// Route is the committed descriptor. Nil when the commit resolved via
	// the implicit deep-wildcard of an empty table.
	Route *Descriptor `json:"-"`
}

// Host is the surface the core produces calls on. Browser history sync,
// click interception, and component lifecycle wiring live behind it, above
// this package.
type Host interface {
	// RequestRender asks the host to re-render after a successful commit.
	RequestRender()

	// HandleCommit receives the structured commit notification.
	HandleCommit(Commit)
}

// Navigation describes one root-level navigation as seen by interceptors.
type Navigation struct {
	// Path is the pathname being navigated to, without the query string.
	Path string

	// Query is the opaque query string stripped from the caller's path,
	// without the leading "?". The core never interprets it.
	Query string

	// Passed are the caller-passed params.
	Passed map[string]any

	// Recovery marks a Recover call (leave guards skipped).
	Recovery bool

	// Result is populated once the wrapped navigation settles. Nil until
	// next() returns.
	Result *Result
}

// Interceptor wraps root-level navigations for observability. Interceptors
// cannot alter core semantics: they observe the Navigation and the error
// from next(), which runs the rest of the chain and the navigation itself.
type Interceptor interface {
	Handle(ctx context.Context, nav *Navigation, next func() error) error
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(ctx context.Context, nav *Navigation, next func() error) error

// Handle implements Interceptor.
func (f InterceptorFunc) Handle(ctx context.Context, nav *Navigation, next func() error) error {
	return f(ctx, nav, next)
}
