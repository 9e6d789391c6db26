package nav

import "errors"

// Navigation errors.
var (
	// ErrInvalidDescriptor is returned when adding a descriptor that lacks
	// a non-empty path template or a render capability.
	ErrInvalidDescriptor = errors.New("invalid route descriptor")

	// ErrDuplicatePath is returned when adding a descriptor whose template
	// already exists in the table.
	ErrDuplicatePath = errors.New("duplicate route path")

	// ErrRouteNotFound is returned by table lookups and updates for an
	// unknown template.
	ErrRouteNotFound = errors.New("route not found")

	// ErrNoMatch is returned by Navigate and Recover when no descriptor
	// and no fallback match the pathname.
	ErrNoMatch = errors.New("no route matched")

	// ErrNodeClosed is returned when navigating on a node that has
	// completed teardown.
	ErrNodeClosed = errors.New("navigation node is closed")

	// ErrNoAncestor is returned by Announce when no active ancestor exists
	// to claim the announcing node.
	ErrNoAncestor = errors.New("no active ancestor to claim node")
)
