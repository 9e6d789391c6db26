package nav

import (
	"context"
	"sync"

	"github.com/vango-dev/outlet/pkg/pattern"
)

// View is whatever the embedding host renders for a route. The core never
// inspects it.
type View any

// RenderFunc produces the view for a route from the merged map of matched
// URL params and caller-passed params.
type RenderFunc func(params map[string]any) View

// Decision is a guard's verdict. The zero value permits: guard authors rely
// on returning early without a value meaning "allow", so only an explicit
// Deny vetoes a transition.
type Decision int

const (
	// Allow permits the transition. Zero value.
	Allow Decision = iota

	// Deny vetoes the transition. The navigation ends in PhaseCancelled
	// and committed state is left untouched.
	Deny
)

// GuardFunc is an enter or leave guard. Guards may block; the context
// carries the caller's deadline and the re-entrancy marker used by
// navigations issued from inside a guard. A non-nil error propagates
// unmodified to the Navigate caller.
type GuardFunc func(ctx context.Context, params map[string]any) (Decision, error)

// Descriptor describes one route in a table.
//
// Identity is pointer identity: the same *Descriptor is used as the key for
// removal-by-reference and owns its lazily compiled pattern. Render is
// required; Enter, Leave, and Name are optional.
type Descriptor struct {
	// Path is the route template, e.g. "/users/:id" or "/files/*".
	Path string

	// Render produces the view for this route. Required.
	Render RenderFunc

	// Enter is invoked before the route is committed. Optional.
	Enter GuardFunc

	// Leave is invoked before the route is left. Optional.
	Leave GuardFunc

	// Name optionally names the route for lookup and tooling.
	Name string

	mu         sync.Mutex
	compiled   *pattern.Compiled
	compileErr error
	compileOK  bool
}

// Pattern returns the compiled pattern for the descriptor's current path,
// compiling it on first use. The compile state is owned by the descriptor
// and invalidated when the path is structurally replaced.
func (d *Descriptor) Pattern() (*pattern.Compiled, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.compileOK {
		d.compiled, d.compileErr = pattern.Compile(d.Path)
		d.compileOK = true
	}
	return d.compiled, d.compileErr
}

// invalidatePattern drops the cached compile state. Called by the owning
// table when the path template is replaced.
func (d *Descriptor) invalidatePattern() {
	d.mu.Lock()
	d.compiled = nil
	d.compileErr = nil
	d.compileOK = false
	d.mu.Unlock()
}

// setPath swaps the template and invalidates the compile state.
func (d *Descriptor) setPath(path string) {
	d.mu.Lock()
	d.Path = path
	d.compiled = nil
	d.compileErr = nil
	d.compileOK = false
	d.mu.Unlock()
}

// DescriptorPatch is a partial update applied by Table.Update. Nil fields
// are left unchanged.
type DescriptorPatch struct {
	// Path replaces the route template when non-nil. The compiled pattern
	// is invalidated and the table's sorted view recomputed.
	Path *string

	// Render replaces the render function when non-nil.
	Render RenderFunc

	// Enter replaces the enter guard when non-nil.
	Enter GuardFunc

	// Leave replaces the leave guard when non-nil.
	Leave GuardFunc

	// Name replaces the route name when non-nil.
	Name *string
}
