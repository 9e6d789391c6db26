package nav

import (
	"errors"
	"testing"
)

func staticRender(params map[string]any) View { return nil }

func desc(path string) *Descriptor {
	return &Descriptor{Path: path, Render: staticRender}
}

func TestTableAddValidation(t *testing.T) {
	tests := []struct {
		name    string
		d       *Descriptor
		wantErr error
	}{
		{"nil descriptor", nil, ErrInvalidDescriptor},
		{"missing path", &Descriptor{Render: staticRender}, ErrInvalidDescriptor},
		{"missing render", &Descriptor{Path: "/a"}, ErrInvalidDescriptor},
		{"valid", desc("/a"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := NewTable()
			err := tab.Add(tt.d)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Add error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Add error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTableAddDuplicate(t *testing.T) {
	tab := NewTable()
	if err := tab.Add(desc("/users")); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := tab.Add(desc("/users")); !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("duplicate Add error = %v, want ErrDuplicatePath", err)
	}
}

func TestTableAddAtIndex(t *testing.T) {
	tab := NewTable()
	a, b, c := desc("/a"), desc("/b"), desc("/c")
	tab.Add(a)
	tab.Add(b)
	if err := tab.Add(c, 1); err != nil {
		t.Fatalf("Add at index: %v", err)
	}
	list := tab.List()
	if len(list) != 3 || list[0] != a || list[1] != c || list[2] != b {
		t.Errorf("table order = %v, want [a c b]", paths(list))
	}
}

func TestTableRemove(t *testing.T) {
	tab := NewTable()
	a, b := desc("/a"), desc("/b")
	tab.Add(a)
	tab.Add(b)

	if err := tab.Remove("/a"); err != nil {
		t.Fatalf("Remove by path: %v", err)
	}
	if tab.Has("/a") {
		t.Error("descriptor still present after Remove by path")
	}

	if err := tab.Remove(b); err != nil {
		t.Fatalf("Remove by identity: %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("Len = %d, want 0", tab.Len())
	}

	if err := tab.Remove("/missing"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("Remove missing error = %v, want ErrRouteNotFound", err)
	}
}

func TestTableUpdate(t *testing.T) {
	tab := NewTable()
	d := desc("/old")
	tab.Add(d)

	newPath := "/new/:id"
	name := "renamed"
	if err := tab.Update("/old", DescriptorPatch{Path: &newPath, Name: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !tab.Has("/new/:id") || tab.Has("/old") {
		t.Error("Update did not replace the template")
	}
	if got, ok := tab.ByName("renamed"); !ok || got != d {
		t.Error("ByName did not find the renamed descriptor")
	}

	// Compiled pattern must track the new template.
	c, err := d.Pattern()
	if err != nil {
		t.Fatalf("Pattern after update: %v", err)
	}
	if c.Template != "/new/:id" {
		t.Errorf("compiled template = %q, want %q", c.Template, "/new/:id")
	}

	if err := tab.Update("/missing", DescriptorPatch{}); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("Update missing error = %v, want ErrRouteNotFound", err)
	}
}

func TestTableUpdateDuplicatePath(t *testing.T) {
	tab := NewTable()
	tab.Add(desc("/a"))
	tab.Add(desc("/b"))

	taken := "/a"
	if err := tab.Update("/b", DescriptorPatch{Path: &taken}); !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("Update to taken path error = %v, want ErrDuplicatePath", err)
	}
}

func TestTableSortedView(t *testing.T) {
	tab := NewTable()
	wild := desc("/users/*")
	dynamic := desc("/users/:id")
	static := desc("/users/all")
	tab.Add(wild)
	tab.Add(dynamic)
	tab.Add(static)

	view := tab.SortedView()
	want := []*Descriptor{static, dynamic, wild}
	for i, d := range want {
		if view[i] != d {
			t.Fatalf("sorted view = %v, want [%s %s %s]",
				paths(view), static.Path, dynamic.Path, wild.Path)
		}
	}

	// List keeps table order.
	list := tab.List()
	if list[0] != wild || list[2] != static {
		t.Errorf("List reordered: %v", paths(list))
	}
}

func TestTableSortTieBreakInsertionOrder(t *testing.T) {
	// Identical scores: first-defined wins.
	tab := NewTable()
	first := desc("/a/:x")
	second := desc("/b/:y")
	tab.Add(first)
	tab.Add(second)

	view := tab.SortedView()
	if view[0] != first || view[1] != second {
		t.Errorf("tie-break order = %v, want insertion order", paths(view))
	}
}

func TestTableResolve(t *testing.T) {
	tab := NewTable()
	users := desc("/users/:id")
	files := desc("/files/*")
	tab.Add(users)
	tab.Add(files)

	d, params, err := tab.resolve("/users/42")
	if err != nil || d != users {
		t.Fatalf("resolve(/users/42) = (%v, %v), want users", d, err)
	}
	if params["id"] != "42" {
		t.Errorf("params[id] = %q, want 42", params["id"])
	}

	if _, _, err := tab.resolve("/nope"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("resolve miss error = %v, want ErrNoMatch", err)
	}
}

func TestTableResolveFallback(t *testing.T) {
	tab := NewTable()
	tab.Add(desc("/users"))
	fb := &Descriptor{Path: "**", Render: staticRender, Name: "not-found"}
	if err := tab.SetFallback(fb); err != nil {
		t.Fatalf("SetFallback: %v", err)
	}

	d, params, err := tab.resolve("/missing/deep/path")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d != fb {
		t.Fatal("expected fallback descriptor")
	}
	if params["0"] != "missing/deep/path" {
		t.Errorf("tail capture = %q, want missing/deep/path", params["0"])
	}
}

func TestTableResolveEmptyImplicitWildcard(t *testing.T) {
	tab := NewTable()
	d, params, err := tab.resolve("/anything/here")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d != nil {
		t.Error("implicit wildcard should resolve with no descriptor")
	}
	if params["0"] != "/anything/here" {
		t.Errorf("tail = %q, want the entire pathname", params["0"])
	}
}

func TestTableSortedViewCached(t *testing.T) {
	tab := NewTable()
	tab.Add(desc("/a"))
	tab.Add(desc("/b/:x"))

	tab.mu.Lock()
	first := tab.sortedLocked()
	second := tab.sortedLocked()
	tab.mu.Unlock()
	if &first[0] != &second[0] {
		t.Error("sorted view recomputed without a structural mutation")
	}

	tab.Add(desc("/c"))
	tab.mu.Lock()
	third := tab.sortedLocked()
	tab.mu.Unlock()
	if len(third) != 3 {
		t.Errorf("sorted view not invalidated after Add: len = %d", len(third))
	}
}

func paths(ds []*Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}
