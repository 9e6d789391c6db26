package manifest

import (
	"fmt"
	"strings"

	"github.com/vango-dev/outlet/pkg/pattern"
)

// Finding reports a route that can never win a match because a
// higher-precedence route in the same table matches everything it would.
type Finding struct {
	// NodeID is the node whose table contains the shadowed route.
	NodeID string `json:"nodeId"`

	// Template is the shadowed route.
	Template string `json:"template"`

	// ShadowedBy is the higher-precedence route that wins instead.
	ShadowedBy string `json:"shadowedBy"`

	// Probe is the representative pathname that demonstrated the shadow.
	Probe string `json:"probe"`
}

// String renders the finding for CLI output.
func (f Finding) String() string {
	return fmt.Sprintf("node %s: %q is shadowed by %q (probe %s)", f.NodeID, f.Template, f.ShadowedBy, f.Probe)
}

// Lint detects shadowed routes in every table of the manifest.
//
// The check is a heuristic: each route is probed with a representative
// pathname it matches, and flagged when any higher-precedence route in the
// same table matches that probe too. Routes whose match sets merely overlap
// on some paths are not flagged unless the overlap covers the probe.
func Lint(m *Manifest) ([]Finding, error) {
	var findings []Finding
	var walkErr error

	m.Walk(func(node *NodeInfo) {
		if walkErr != nil {
			return
		}
		fs, err := lintTable(node)
		if err != nil {
			walkErr = err
			return
		}
		findings = append(findings, fs...)
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return findings, nil
}

func lintTable(node *NodeInfo) ([]Finding, error) {
	compiled := make([]*pattern.Compiled, len(node.Routes))
	for i, r := range node.Routes {
		c, err := pattern.Compile(r.Template)
		if err != nil {
			return nil, fmt.Errorf("manifest: lint node %s route %q: %w", node.ID, r.Template, err)
		}
		compiled[i] = c
	}

	var findings []Finding
	for j := 1; j < len(node.Routes); j++ {
		probe := representative(node.Routes[j].Template)
		for i := 0; i < j; i++ {
			if _, ok := pattern.Match(probe, compiled[i]); ok {
				findings = append(findings, Finding{
					NodeID:     node.ID,
					Template:   node.Routes[j].Template,
					ShadowedBy: node.Routes[i].Template,
					Probe:      probe,
				})
				break
			}
		}
	}
	return findings, nil
}

// representative builds a sample pathname the template matches. Parameter
// segments get a distinctive placeholder so they cannot collide with static
// literals of competing templates.
func representative(template string) string {
	var parts []string
	for _, s := range strings.Split(template, "/") {
		switch {
		case s == "":
			continue
		case s == "*" || s == "**":
			parts = append(parts, "__tail__")
		case strings.HasPrefix(s, ":"):
			name := strings.TrimSuffix(strings.TrimPrefix(s, ":"), "?")
			parts = append(parts, "__"+name+"__")
		default:
			parts = append(parts, s)
		}
	}
	return "/" + strings.Join(parts, "/")
}
