package nav

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/outlet/pkg/pattern"
)

// deepWildcard is the implicit template a fallback descriptor is bound to.
var deepWildcard = pattern.MustCompile("**")

// Table is a per-node ordered collection of route descriptors.
//
// The descriptor sequence is insertion-ordered and path-unique. A cached
// score-sorted view is recomputed only when membership changes, never per
// navigation. Structural mutations issued while a navigation is pending on
// the owning node are deferred and replayed, in original call order, once
// the navigation settles.
type Table struct {
	owner *Node

	// mu guards everything below. Lock order is Table before Node; the
	// node never acquires the table lock while holding its own.
	mu          sync.Mutex
	descriptors []*Descriptor
	seq         map[*Descriptor]int
	nextSeq     int
	fallback    *Descriptor

	version       uint64
	sorted        []*Descriptor
	sortedVersion uint64
	sortedValid   bool

	deferred     []deferredMutation
	pendingPaths map[string]bool
}

// deferredMutation is a queued structural mutation plus the follow-up that
// runs outside the table lock after replay.
type deferredMutation struct {
	apply func() func()
}

// newTable creates a table owned by a node. A nil owner yields a detached
// table, useful for tooling that only needs matching.
func newTable(owner *Node) *Table {
	return &Table{
		owner:        owner,
		seq:          make(map[*Descriptor]int),
		pendingPaths: make(map[string]bool),
	}
}

// NewTable creates a detached table with no owning node. Mutations apply
// immediately and never trigger re-navigation.
func NewTable() *Table {
	return newTable(nil)
}

// Add appends a descriptor, or inserts it at the given position when an
// index is supplied.
//
// A descriptor with an empty path or nil Render is rejected with
// ErrInvalidDescriptor, and a template already present (or queued for
// addition) with ErrDuplicatePath. On success the sorted-view cache is
// invalidated; if the owning node has a committed pathname the new pattern
// matches, that pathname is re-navigated so the new route can supersede
// whatever previously resolved there.
func (t *Table) Add(d *Descriptor, at ...int) error {
	if d == nil || d.Path == "" {
		return fmt.Errorf("%w: missing path", ErrInvalidDescriptor)
	}
	if d.Render == nil {
		return fmt.Errorf("%w: missing render for %q", ErrInvalidDescriptor, d.Path)
	}

	t.mu.Lock()
	if t.hasPathLocked(d.Path) || t.pendingPaths[d.Path] {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicatePath, d.Path)
	}

	apply := func() func() {
		t.addLocked(d, at...)
		return func() { t.renavigateIfMatches(d) }
	}
	if t.deferLocked(d.Path, apply) {
		t.mu.Unlock()
		return nil
	}
	post := apply()
	t.mu.Unlock()

	post()
	return nil
}

// addLocked inserts the descriptor and bumps the table version.
func (t *Table) addLocked(d *Descriptor, at ...int) {
	idx := len(t.descriptors)
	if len(at) > 0 && at[0] >= 0 && at[0] < len(t.descriptors) {
		idx = at[0]
	}
	t.descriptors = append(t.descriptors, nil)
	copy(t.descriptors[idx+1:], t.descriptors[idx:])
	t.descriptors[idx] = d
	t.seq[d] = t.nextSeq
	t.nextSeq++
	t.version++
}

// Remove deletes a descriptor by template string or by *Descriptor
// identity.
//
// If the removed descriptor is the currently committed route, the current
// pathname is re-navigated, forcing re-resolution against the remaining
// table (which may now fail, or fall to the fallback).
func (t *Table) Remove(pathOrDescriptor any) error {
	t.mu.Lock()
	d := t.findLocked(pathOrDescriptor)
	if d == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrRouteNotFound, pathOrDescriptor)
	}

	apply := func() func() {
		removed := t.removeLocked(d)
		return func() {
			if removed {
				t.renavigateIfCommitted(d)
			}
		}
	}
	if t.deferLocked("", apply) {
		t.mu.Unlock()
		return nil
	}
	post := apply()
	t.mu.Unlock()

	post()
	return nil
}

// removeLocked deletes the descriptor if still present.
func (t *Table) removeLocked(d *Descriptor) bool {
	for i, cur := range t.descriptors {
		if cur == d {
			t.descriptors = append(t.descriptors[:i], t.descriptors[i+1:]...)
			delete(t.seq, d)
			t.version++
			return true
		}
	}
	return false
}

// Update applies a partial update to the descriptor registered under path.
// Replacing the template invalidates the descriptor's compiled pattern and
// the sorted view.
func (t *Table) Update(path string, patch DescriptorPatch) error {
	t.mu.Lock()
	d := t.findLocked(path)
	if d == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrRouteNotFound, path)
	}
	if patch.Path != nil {
		if *patch.Path == "" {
			t.mu.Unlock()
			return fmt.Errorf("%w: missing path", ErrInvalidDescriptor)
		}
		if *patch.Path != d.Path && (t.hasPathLocked(*patch.Path) || t.pendingPaths[*patch.Path]) {
			t.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrDuplicatePath, *patch.Path)
		}
	}

	apply := func() func() {
		pathChanged := patch.Path != nil && *patch.Path != d.Path
		t.updateLocked(d, patch)
		return func() {
			if pathChanged {
				t.renavigateIfCommitted(d)
				t.renavigateIfMatches(d)
			}
		}
	}
	reserve := ""
	if patch.Path != nil {
		reserve = *patch.Path
	}
	if t.deferLocked(reserve, apply) {
		t.mu.Unlock()
		return nil
	}
	post := apply()
	t.mu.Unlock()

	post()
	return nil
}

// updateLocked applies the patch fields in place.
func (t *Table) updateLocked(d *Descriptor, patch DescriptorPatch) {
	if patch.Path != nil && *patch.Path != d.Path {
		d.setPath(*patch.Path)
		t.version++
	}
	if patch.Render != nil {
		d.Render = patch.Render
	}
	if patch.Enter != nil {
		d.Enter = patch.Enter
	}
	if patch.Leave != nil {
		d.Leave = patch.Leave
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
}

// SetFallback registers (or clears, with nil) the fallback descriptor. The
// fallback is implicitly bound to the deep-wildcard template and consulted
// only when no explicit descriptor matches. Its own Path field is ignored
// for matching.
func (t *Table) SetFallback(d *Descriptor) error {
	if d != nil && d.Render == nil {
		return fmt.Errorf("%w: missing render for fallback", ErrInvalidDescriptor)
	}

	t.mu.Lock()
	apply := func() func() {
		t.fallback = d
		t.version++
		return func() {}
	}
	if t.deferLocked("", apply) {
		t.mu.Unlock()
		return nil
	}
	apply()
	t.mu.Unlock()
	return nil
}

// Fallback returns the registered fallback descriptor, if any.
func (t *Table) Fallback() *Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fallback
}

// Get returns the descriptor registered under the exact template.
func (t *Table) Get(path string) (*Descriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.findLocked(path)
	return d, d != nil
}

// Has reports whether a descriptor is registered under the exact template.
func (t *Table) Has(path string) bool {
	_, ok := t.Get(path)
	return ok
}

// ByName returns the first descriptor with the given name.
func (t *Table) ByName(name string) (*Descriptor, bool) {
	if name == "" {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// List returns a defensive copy of the descriptor sequence in table order.
func (t *Table) List() []*Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Descriptor(nil), t.descriptors...)
}

// Len returns the number of registered descriptors, excluding the fallback.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.descriptors)
}

// SortedView returns the score-sorted view as a defensive copy, highest
// score first.
func (t *Table) SortedView() []*Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Descriptor(nil), t.sortedLocked()...)
}

// sortedLocked returns the cached sorted view, recomputing it only when the
// table version has moved since it was last built.
//
// Sort order: score descending, then specificity descending, then original
// insertion order ascending (first-defined-wins).
func (t *Table) sortedLocked() []*Descriptor {
	if t.sortedValid && t.sortedVersion == t.version {
		return t.sorted
	}

	view := append([]*Descriptor(nil), t.descriptors...)
	sort.SliceStable(view, func(i, j int) bool {
		ci, erri := view[i].Pattern()
		cj, errj := view[j].Pattern()
		if erri != nil || errj != nil {
			// Uncompilable descriptors sink to the bottom.
			return errj != nil && erri == nil
		}
		if ci.Score != cj.Score {
			return ci.Score > cj.Score
		}
		if ci.Specificity != cj.Specificity {
			return ci.Specificity > cj.Specificity
		}
		return t.seq[view[i]] < t.seq[view[j]]
	})

	t.sorted = view
	t.sortedVersion = t.version
	t.sortedValid = true
	return view
}

// resolve finds the best descriptor for a pathname.
//
// An empty table with no fallback resolves as an implicit deep wildcard:
// the entire pathname becomes the tail capture and the local consumed path
// is empty. Otherwise the first match in the sorted view wins; failing
// that, the fallback is substituted as an implicit deep-wildcard route;
// failing that, ErrNoMatch.
func (t *Table) resolve(pathname string) (*Descriptor, pattern.Params, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.descriptors) == 0 && t.fallback == nil {
		return nil, pattern.Params{"0": pattern.Normalize(pathname)}, nil
	}

	for _, d := range t.sortedLocked() {
		c, err := d.Pattern()
		if err != nil {
			continue
		}
		if p, ok := pattern.Match(pathname, c); ok {
			return d, p, nil
		}
	}

	if t.fallback != nil {
		if p, ok := pattern.Match(pathname, deepWildcard); ok {
			return t.fallback, p, nil
		}
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrNoMatch, pathname)
}

// findLocked resolves a path string or *Descriptor to a registered
// descriptor.
func (t *Table) findLocked(pathOrDescriptor any) *Descriptor {
	switch v := pathOrDescriptor.(type) {
	case string:
		for _, d := range t.descriptors {
			if d.Path == v {
				return d
			}
		}
	case *Descriptor:
		for _, d := range t.descriptors {
			if d == v {
				return d
			}
		}
	}
	return nil
}

// hasPathLocked reports whether a template is live in the table.
func (t *Table) hasPathLocked(path string) bool {
	for _, d := range t.descriptors {
		if d.Path == path {
			return true
		}
	}
	return false
}

// deferLocked queues the mutation when a navigation is pending on the
// owning node, reserving the path for duplicate checks against later calls.
// Returns false when the mutation should apply immediately.
func (t *Table) deferLocked(reservePath string, apply func() func()) bool {
	if t.owner == nil || !t.owner.pendingNavigation() {
		return false
	}
	if reservePath != "" {
		t.pendingPaths[reservePath] = true
	}
	t.deferred = append(t.deferred, deferredMutation{apply: apply})
	return true
}

// replayDeferred applies queued mutations in original call order. Called by
// the owning node, without its lock held, each time a navigation settles.
func (t *Table) replayDeferred() {
	t.mu.Lock()
	if len(t.deferred) == 0 {
		t.mu.Unlock()
		return
	}
	queue := t.deferred
	t.deferred = nil
	t.pendingPaths = make(map[string]bool)

	posts := make([]func(), 0, len(queue))
	for _, m := range queue {
		posts = append(posts, m.apply())
	}
	t.mu.Unlock()

	for _, post := range posts {
		post()
	}
}

// renavigateIfMatches re-navigates the owner's committed pathname when the
// descriptor's pattern matches it, so a dynamically added route immediately
// supersedes whatever previously resolved there.
func (t *Table) renavigateIfMatches(d *Descriptor) {
	owner := t.owner
	if owner == nil {
		return
	}
	full, passed, committed := owner.committedFull()
	if !committed {
		return
	}
	c, err := d.Pattern()
	if err != nil {
		return
	}
	if _, ok := pattern.Match(full, c); ok {
		owner.renavigate(full, passed)
	}
}

// renavigateIfCommitted re-navigates the owner's committed pathname when
// the descriptor is the committed route, forcing re-resolution against the
// remaining table.
func (t *Table) renavigateIfCommitted(d *Descriptor) {
	owner := t.owner
	if owner == nil {
		return
	}
	full, passed, committed := owner.committedFull()
	if !committed || owner.CurrentRoute() != d {
		return
	}
	owner.renavigate(full, passed)
}
