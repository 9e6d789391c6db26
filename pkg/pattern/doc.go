// Package pattern compiles path templates into matchers with a
// deterministic precedence score.
//
// A template is a slash-separated sequence of segments:
//
//	static        /users
//	dynamic       /users/:id
//	optional      /users/:id?
//	wildcard      /files/*
//	deep wildcard /docs/**
//
// Compile turns a template into a Compiled pattern: an anchored matcher,
// the ordered parameter names, and a score. Higher scores win when several
// templates match the same path; the scoring formula guarantees that any
// additional static segment outranks any combination of dynamic, optional,
// or wildcard differences that do not themselves add static segments.
//
// Wildcard captures are keyed by ascending numeric strings ("0", "1", ...)
// in order of appearance, so the tail (the highest-numbered capture, the
// unconsumed remainder of the path) is identifiable regardless of how many
// wildcards precede it. Numeric names are therefore reserved: Compile
// rejects templates like "/:0" with ErrNumericParamName.
package pattern
