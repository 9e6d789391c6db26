// Package manifest captures a navigation tree as a serializable document:
// every node, its route table in precedence order, and the score metadata
// behind the ordering. Manifests feed the inspector, the CLI's lint and
// export commands, and the S3 publisher.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vango-dev/outlet/pkg/nav"
	"github.com/vango-dev/outlet/pkg/pattern"
)

// RouteInfo describes one registered route template.
type RouteInfo struct {
	// Template is the route's path template.
	Template string `json:"template"`

	// Name is the optional registration name.
	Name string `json:"name,omitempty"`

	// Score is the precedence score; higher-scored templates are tried
	// first.
	Score float64 `json:"score"`

	// Breakdown is the segment census the score was computed from.
	Breakdown pattern.Breakdown `json:"breakdown"`

	// Specificity is the static-to-total segment ratio, the first
	// tie-break between equal scores.
	Specificity float64 `json:"specificity"`

	// Wildcard reports whether the template captures a tail.
	Wildcard bool `json:"wildcard,omitempty"`
}

// NodeInfo describes one node of the tree.
type NodeInfo struct {
	// ID is the node identifier.
	ID string `json:"id"`

	// Path is the node's committed local path, empty when idle.
	Path string `json:"path,omitempty"`

	// Active reports whether the node has a committed navigation.
	Active bool `json:"active"`

	// Routes are the node's routes in match-precedence order.
	Routes []RouteInfo `json:"routes"`

	// Fallback is the explicit fallback route, if any.
	Fallback *RouteInfo `json:"fallback,omitempty"`

	// Children are the registered child nodes.
	Children []NodeInfo `json:"children,omitempty"`
}

// Manifest is a point-in-time capture of a navigation tree.
type Manifest struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Root        NodeInfo  `json:"root"`
}

// Snapshot walks the tree rooted at node and captures it. Route tables are
// reported in precedence order. Fails if any registered template does not
// compile.
func Snapshot(node *nav.Node) (*Manifest, error) {
	root, err := snapshotNode(node)
	if err != nil {
		return nil, err
	}
	return &Manifest{GeneratedAt: time.Now().UTC(), Root: root}, nil
}

func snapshotNode(node *nav.Node) (NodeInfo, error) {
	info := NodeInfo{
		ID:     node.ID(),
		Path:   node.CurrentPath(),
		Active: node.Active(),
		Routes: []RouteInfo{},
	}

	for _, d := range node.Routes().SortedView() {
		ri, err := routeInfo(d)
		if err != nil {
			return NodeInfo{}, err
		}
		info.Routes = append(info.Routes, ri)
	}

	if fb := node.Routes().Fallback(); fb != nil {
		ri, err := routeInfo(fb)
		if err != nil {
			return NodeInfo{}, err
		}
		info.Fallback = &ri
	}

	for _, child := range node.Children() {
		ci, err := snapshotNode(child)
		if err != nil {
			return NodeInfo{}, err
		}
		info.Children = append(info.Children, ci)
	}
	return info, nil
}

// routeInfo captures one descriptor's template metadata.
func routeInfo(d *nav.Descriptor) (RouteInfo, error) {
	c, err := d.Pattern()
	if err != nil {
		return RouteInfo{}, fmt.Errorf("manifest: route %q: %w", d.Path, err)
	}
	return RouteInfo{
		Template:    d.Path,
		Name:        d.Name,
		Score:       c.Score,
		Breakdown:   c.Breakdown,
		Specificity: c.Specificity,
		Wildcard:    c.HasWildcard(),
	}, nil
}

// Encode writes the manifest as JSON. Pretty output is indented for humans;
// compact output is for machine consumers.
func (m *Manifest) Encode(w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m)
}

// Decode reads a manifest from JSON.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}

// Walk visits every node of the manifest depth-first, root first.
func (m *Manifest) Walk(fn func(node *NodeInfo)) {
	walkNode(&m.Root, fn)
}

func walkNode(n *NodeInfo, fn func(node *NodeInfo)) {
	fn(n)
	for i := range n.Children {
		walkNode(&n.Children[i], fn)
	}
}
