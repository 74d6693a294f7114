// Package system implements the live object the assembly engine builds:
// a mutable model value (per-component cty payloads) plus bookkeeping of
// which concrete components are present and which abstract capabilities
// they satisfy.
//
// A System is cheap to copy within a single goroutine via Clone, but it
// is not safe to share across goroutines: the caller must never run two
// assembly calls against the same System concurrently.
package system
