// Package navtest provides test helpers for navigation trees: a host that
// records render requests and commits, scripted guards, and a settle
// helper for waiting on asynchronous tail propagation.
package navtest
