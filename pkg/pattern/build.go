package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// Reverse-substitution errors.
var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrWildcardTemplate = errors.New("cannot build a path from a wildcard template")
)

// Build substitutes concrete values into a template, producing a pathname
// that the same template would match back to the given params.
//
// Static segments are copied literally, dynamic segments are replaced from
// the params map, and optional segments are dropped when no value is
// provided. Templates containing wildcard segments cannot be reversed and
// return ErrWildcardTemplate; a dynamic segment with no value returns
// ErrMissingParam.
func Build(template string, params Params) (string, error) {
	segs := classify(template)
	if len(segs) == 0 {
		return "/", nil
	}

	out := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s.kind {
		case segStatic:
			out = append(out, s.literal)
		case segDynamic:
			v, ok := params[s.literal]
			if !ok || v == "" {
				return "", fmt.Errorf("%w: %q", ErrMissingParam, s.literal)
			}
			out = append(out, v)
		case segOptional:
			if v, ok := params[s.literal]; ok && v != "" {
				out = append(out, v)
			}
		case segWildcard, segDeepWildcard:
			return "", fmt.Errorf("%w: %q", ErrWildcardTemplate, template)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}
