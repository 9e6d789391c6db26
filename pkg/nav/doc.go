// Package nav implements a tree of navigation nodes driven through guarded,
// cancellable transitions.
//
// Each node owns a Table of route descriptors and a per-node state machine.
// Navigate resolves a pathname against the table's score-sorted view, runs
// leave guards (on the node, then depth-first through its registered
// subtree), runs the target's enter guard, and commits atomically. A
// wildcard tail capture is forwarded to every registered child, each of
// which runs its own independent navigation cycle.
//
// Navigations on one node are strictly serialized. Cancellation is
// cooperative: every navigation holds a monotonically increasing token and
// re-validates it at fixed checkpoints; a superseded navigation stops
// silently without touching committed state. Guard code itself is never
// interrupted.
package nav
