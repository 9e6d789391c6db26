package nav

import (
	"context"
	"testing"
)

func TestAnnounceClaimsNearestActiveAncestor(t *testing.T) {
	parent := NewNode()
	child := NewNode()

	unregister, err := Announce(WithNode(context.Background(), parent), child)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if child.Parent() != parent {
		t.Error("child not linked to claiming ancestor")
	}
	if kids := parent.Children(); len(kids) != 1 || kids[0] != child {
		t.Errorf("parent children = %v, want [child]", kids)
	}

	unregister()
	if child.Parent() != nil {
		t.Error("parent link survived unregister")
	}
	if len(parent.Children()) != 0 {
		t.Error("child still in parent's set after unregister")
	}
}

func TestAnnounceBubblesPastClosedAncestor(t *testing.T) {
	grandparent := NewNode()
	middle := NewNode()
	Announce(WithNode(context.Background(), grandparent), middle)

	middle.Close()

	// The mount chain still carries the outer mount.
	ctx := WithNode(context.Background(), grandparent)
	ctx = WithNode(ctx, middle)

	child := NewNode()
	if _, err := Announce(ctx, child); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if child.Parent() != grandparent {
		t.Error("announce did not bubble past the closed ancestor")
	}
}

func TestAnnounceNoAncestor(t *testing.T) {
	child := NewNode()
	if _, err := Announce(context.Background(), child); err != ErrNoAncestor {
		t.Errorf("error = %v, want ErrNoAncestor", err)
	}
}

func TestLateRegistrationReceivesPendingTail(t *testing.T) {
	parent := NewNode()
	parent.Routes().Add(desc("/shop/*"))

	if _, err := parent.Navigate(context.Background(), "/shop/cart", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if tail, ok := parent.PendingTail(); !ok || tail != "cart" {
		t.Fatalf("pending tail = (%q, %v), want (cart, true)", tail, ok)
	}

	// A child registered after the commit synchronizes immediately.
	child := NewNode()
	child.Routes().Add(desc("/cart"))
	if _, err := Announce(WithNode(context.Background(), parent), child); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	waitFor(t, "late child sync", func() bool { return child.CurrentPath() == "/cart" })
}

func TestClosedChildReceivesNoPropagation(t *testing.T) {
	parent := NewNode()
	parent.Routes().Add(desc("/area/*"))

	child := NewNode()
	Announce(WithNode(context.Background(), parent), child)
	child.Close()

	if len(parent.Children()) != 0 {
		t.Fatal("closed child still registered; teardown must unregister first")
	}

	if _, err := parent.Navigate(context.Background(), "/area/sub", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if child.CurrentPath() != "" {
		t.Error("closed child received a tail propagation")
	}
}

func TestCloseAbandonsPendingNavigation(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	n := NewNode()
	n.Routes().Add(&Descriptor{
		Path:   "/slow",
		Render: staticRender,
		Enter: func(ctx context.Context, params map[string]any) (Decision, error) {
			close(entered)
			<-release
			return Allow, nil
		},
	})

	done := make(chan *Result, 1)
	go func() {
		res, _ := n.Navigate(context.Background(), "/slow", nil)
		done <- res
	}()
	<-entered

	n.Close()
	close(release)

	res := <-done
	if res.Phase == PhaseCommitted {
		t.Error("navigation committed after node teardown")
	}
	if n.CurrentRoute() != nil {
		t.Error("closed node holds committed state from an abandoned navigation")
	}
}
