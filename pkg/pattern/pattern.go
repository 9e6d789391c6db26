package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNumericParamName is returned by Compile when a dynamic or optional
// segment uses a numeric name. Numeric capture keys are reserved for
// wildcard segments; a numeric param would be indistinguishable from a
// tail capture.
var ErrNumericParamName = errors.New("numeric parameter name is reserved for wildcard captures")

// Segment kind weights for scoring. Any additional static segment outranks
// any number of dynamic/optional/wildcard differences that don't themselves
// add static segments.
const (
	staticWeight      = 1000
	dynamicWeight     = 100
	optionalWeight    = 10
	wildcardWeight    = -50
	depthWeight       = 1
	specificityWeight = 0.1
)

// segKind classifies a template segment.
type segKind int

const (
	segStatic segKind = iota
	segDynamic
	segOptional
	segWildcard
	segDeepWildcard
)

// segment is one classified piece of a template.
type segment struct {
	kind segKind

	// literal is the raw text for static segments, the parameter name
	// (without ":" or "?") for dynamic and optional segments, and empty
	// for wildcards.
	literal string
}

// Breakdown holds the per-kind segment counts behind a score.
type Breakdown struct {
	Static   int `json:"static"`
	Dynamic  int `json:"dynamic"`
	Optional int `json:"optional"`
	Wildcard int `json:"wildcard"`
	Depth    int `json:"depth"`
}

// Compiled is a compiled path template: an anchored matcher plus the
// precedence metadata used to rank it against other templates.
type Compiled struct {
	// Template is the source template, as given to Compile.
	Template string

	// ParamNames are the capture names in capture-group order. Dynamic and
	// optional segments contribute their parameter name; wildcard segments
	// contribute ascending numeric keys ("0", "1", ...).
	ParamNames []string

	// Score is the precedence score. Higher wins.
	Score float64

	// Breakdown is the segment census the score was computed from.
	Breakdown Breakdown

	// Specificity is staticCount/totalSegments (0 when there are no
	// segments). Used as the first tie-break between equal scores.
	Specificity float64

	re        *regexp.Regexp
	wildcards int
	isRoot    bool
}

// splitTemplate splits a template on "/" and discards empty segments.
func splitTemplate(template string) []string {
	var out []string
	for _, s := range strings.Split(template, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// classify parses a template into classified segments.
func classify(template string) []segment {
	raw := splitTemplate(template)
	segs := make([]segment, 0, len(raw))
	for _, s := range raw {
		switch {
		case s == "**":
			segs = append(segs, segment{kind: segDeepWildcard})
		case s == "*":
			segs = append(segs, segment{kind: segWildcard})
		case strings.HasPrefix(s, ":") && strings.HasSuffix(s, "?"):
			segs = append(segs, segment{kind: segOptional, literal: s[1 : len(s)-1]})
		case strings.HasPrefix(s, ":"):
			segs = append(segs, segment{kind: segDynamic, literal: s[1:]})
		default:
			segs = append(segs, segment{kind: segStatic, literal: s})
		}
	}
	return segs
}

// breakdown counts segments by kind.
func breakdown(segs []segment) Breakdown {
	b := Breakdown{Depth: len(segs)}
	for _, s := range segs {
		switch s.kind {
		case segStatic:
			b.Static++
		case segDynamic:
			b.Dynamic++
		case segOptional:
			b.Optional++
		case segWildcard, segDeepWildcard:
			b.Wildcard++
		}
	}
	return b
}

// scoreOf computes the precedence score from a segment census.
func scoreOf(b Breakdown) (score, specificity float64) {
	if b.Depth > 0 {
		specificity = float64(b.Static) / float64(b.Depth)
	}
	score = float64(b.Static)*staticWeight +
		float64(b.Dynamic)*dynamicWeight +
		float64(b.Optional)*optionalWeight +
		float64(b.Wildcard)*wildcardWeight +
		float64(b.Depth)*depthWeight +
		specificity*specificityWeight
	return score, specificity
}

// Compile parses a template into a Compiled pattern.
//
// The matcher is anchored and tolerates an optional leading slash and an
// optional trailing slash. Static segments match literally, dynamic
// segments match one non-slash token, optional segments match zero or one
// token lazily, and both wildcard forms greedily capture the remainder.
//
// The empty and root ("/") templates compile to a matcher that accepts
// exactly "/" or the empty string, with a single-static-segment-equivalent
// score so the root outranks any purely dynamic template.
//
// Dynamic and optional parameter names must not be numeric
// (ErrNumericParamName); numeric keys identify wildcard captures.
func Compile(template string) (*Compiled, error) {
	segs := classify(template)
	for _, s := range segs {
		if s.kind != segDynamic && s.kind != segOptional {
			continue
		}
		if _, numeric := wildcardKey(s.literal); numeric {
			return nil, fmt.Errorf("%w: %q in %q", ErrNumericParamName, s.literal, template)
		}
	}

	if len(segs) == 0 {
		// Root template.
		b := Breakdown{Static: 1, Depth: 1}
		score, spec := scoreOf(b)
		return &Compiled{
			Template:    template,
			Score:       score,
			Breakdown:   b,
			Specificity: spec,
			re:          regexp.MustCompile(`^/?$`),
			isRoot:      true,
		}, nil
	}

	var sb strings.Builder
	sb.WriteString("^/?")

	var names []string
	wildcards := 0
	for i, s := range segs {
		first := i == 0
		switch s.kind {
		case segStatic:
			if !first {
				sb.WriteString("/")
			}
			sb.WriteString(regexp.QuoteMeta(s.literal))
		case segDynamic:
			if !first {
				sb.WriteString("/")
			}
			sb.WriteString(`([^/]+)`)
			names = append(names, s.literal)
		case segOptional:
			// The slash travels inside the optional group so the
			// segment can be absent entirely.
			if first {
				sb.WriteString(`(?:([^/]+?))?`)
			} else {
				sb.WriteString(`(?:/([^/]+?))?`)
			}
			names = append(names, s.literal)
		case segWildcard, segDeepWildcard:
			if !first {
				sb.WriteString("/")
			}
			sb.WriteString(`(.*)`)
			names = append(names, strconv.Itoa(wildcards))
			wildcards++
		}
	}
	sb.WriteString("/?$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, err
	}

	b := breakdown(segs)
	score, spec := scoreOf(b)
	return &Compiled{
		Template:    template,
		ParamNames:  names,
		Score:       score,
		Breakdown:   b,
		Specificity: spec,
		re:          re,
		wildcards:   wildcards,
	}, nil
}

// MustCompile is Compile but panics on error. For templates known at
// compile time.
func MustCompile(template string) *Compiled {
	c, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return c
}

// Score computes the precedence score of a template without building the
// matcher.
func Score(template string) float64 {
	segs := classify(template)
	if len(segs) == 0 {
		s, _ := scoreOf(Breakdown{Static: 1, Depth: 1})
		return s
	}
	s, _ := scoreOf(breakdown(segs))
	return s
}

// HasWildcard reports whether the compiled template contains any wildcard
// segment.
func (c *Compiled) HasWildcard() bool {
	return c.wildcards > 0
}

// IsRoot reports whether this is the empty/root template.
func (c *Compiled) IsRoot() bool {
	return c.isRoot
}
