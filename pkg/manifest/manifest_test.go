package manifest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/outlet/pkg/nav"
	"github.com/vango-dev/outlet/pkg/navtest"
)

func buildTree(t *testing.T) *nav.Node {
	t.Helper()
	root := nav.NewNode(nav.WithID("root"))
	for _, p := range []string{"/users/:id", "/users", "/about"} {
		if err := root.Routes().Add(&nav.Descriptor{Path: p, Render: navtest.NopRender}); err != nil {
			t.Fatalf("Add(%q): %v", p, err)
		}
	}
	if err := root.Routes().SetFallback(&nav.Descriptor{Path: "**", Name: "not-found", Render: navtest.NopRender}); err != nil {
		t.Fatalf("SetFallback: %v", err)
	}

	child := nav.NewNode(nav.WithID("child"))
	child.Routes().Add(&nav.Descriptor{Path: "/cart", Render: navtest.NopRender})
	if _, err := nav.Announce(nav.WithNode(context.Background(), root), child); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	return root
}

func TestSnapshotCapturesTree(t *testing.T) {
	m, err := Snapshot(buildTree(t))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if m.Root.ID != "root" {
		t.Errorf("root id = %q, want root", m.Root.ID)
	}
	var got []string
	for _, r := range m.Root.Routes {
		got = append(got, r.Template)
	}
	// Precedence order: two static segments beat static+dynamic beats one
	// static segment of lesser depth... /users/:id ranks above /users and
	// /about by its extra segment.
	want := []string{"/users/:id", "/users", "/about"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("routes = %v, want %v", got, want)
	}

	if m.Root.Fallback == nil || m.Root.Fallback.Name != "not-found" || !m.Root.Fallback.Wildcard {
		t.Errorf("fallback = %+v, want wildcard route named not-found", m.Root.Fallback)
	}
	if len(m.Root.Children) != 1 || m.Root.Children[0].ID != "child" {
		t.Fatalf("children = %+v, want the announced child", m.Root.Children)
	}
	if m.Root.Children[0].Routes[0].Template != "/cart" {
		t.Errorf("child routes = %+v, want /cart", m.Root.Children[0].Routes)
	}
}

func TestSnapshotScoresAreOrdered(t *testing.T) {
	m, err := Snapshot(buildTree(t))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	routes := m.Root.Routes
	for i := 1; i < len(routes); i++ {
		if routes[i].Score > routes[i-1].Score {
			t.Errorf("route %q (%.2f) outranks earlier %q (%.2f)",
				routes[i].Template, routes[i].Score, routes[i-1].Template, routes[i-1].Score)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m, err := Snapshot(buildTree(t))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf, true); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Root.ID != m.Root.ID || len(back.Root.Routes) != len(m.Root.Routes) {
		t.Errorf("round trip lost structure: %+v", back.Root)
	}
	if back.Root.Routes[0].Score != m.Root.Routes[0].Score {
		t.Errorf("round trip lost score: %v != %v", back.Root.Routes[0].Score, m.Root.Routes[0].Score)
	}
}

func TestWalkVisitsAllNodes(t *testing.T) {
	m, err := Snapshot(buildTree(t))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	var ids []string
	m.Walk(func(n *NodeInfo) { ids = append(ids, n.ID) })
	if len(ids) != 2 || ids[0] != "root" || ids[1] != "child" {
		t.Errorf("walk order = %v, want [root child]", ids)
	}
}
