package pattern

import (
	"strconv"
	"strings"
)

// Params maps parameter names to their matched values. Wildcard captures
// live under ascending numeric keys ("0", "1", ...).
type Params map[string]string

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Normalize strips a single trailing slash from a pathname, unless the
// pathname is exactly "/".
func Normalize(pathname string) string {
	if len(pathname) > 1 && strings.HasSuffix(pathname, "/") {
		return pathname[:len(pathname)-1]
	}
	return pathname
}

// Match runs the compiled matcher against a pathname.
//
// The pathname is normalized first (one trailing slash stripped, unless the
// path is exactly "/"). On success every non-wildcard capture is mapped to
// its parameter name and every wildcard capture to its numeric key. A
// non-match returns (nil, false); it is a normal outcome, not an error.
func Match(pathname string, c *Compiled) (Params, bool) {
	pathname = Normalize(pathname)

	if c.isRoot {
		if pathname == "" || pathname == "/" {
			return Params{}, true
		}
		return nil, false
	}

	m := c.re.FindStringSubmatch(pathname)
	if m == nil {
		return nil, false
	}

	params := make(Params, len(c.ParamNames))
	for i, name := range c.ParamNames {
		v := m[i+1]
		if _, wild := wildcardKey(name); wild {
			// Wildcard slots always participate; keep empty captures so
			// the tail remains identifiable.
			params[name] = v
			continue
		}
		if v != "" {
			params[name] = v
		}
	}
	return params, true
}

// Tail returns the wildcard capture with the highest numeric key, i.e. the
// unconsumed remainder of the pathname to hand to descendant nodes. The
// second return is false when the params contain no wildcard capture.
func Tail(p Params) (string, bool) {
	best := -1
	var tail string
	for k, v := range p {
		if n, ok := wildcardKey(k); ok && n > best {
			best = n
			tail = v
		}
	}
	return tail, best >= 0
}

// wildcardKey reports whether a param name is a numeric wildcard key.
func wildcardKey(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
