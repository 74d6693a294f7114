// Package trigger provides the registry of combination-triggered
// callbacks. A trigger names a set of component types; once every member
// of the set is present on a system, its callbacks fire exactly once.
//
// The registry is an explicit value passed into each assembly call, not
// hidden global state: callers build it once, and the engine derives a
// call-local working table from it (pruned of combinations the system
// already satisfies) which it decrements as components land.
package trigger

import (
	"context"

	"github.com/specialistvlad/assemblygo/internal/component"
)

// Callback runs when a trigger's full combination has just become
// present. It receives the live system and may read or amend its
// payloads. An error from a callback is fatal to the assembly call: the
// system's consistency is no longer guaranteed.
type Callback func(ctx context.Context, sys component.System) error

// Entry pairs a component combination with the callbacks to run once the
// whole combination is present. Members may be abstract; any satisfying
// concrete component counts.
type Entry struct {
	Combination []*component.Type
	Callbacks   []Callback
}

// Registry is an ordered collection of trigger entries. It is immutable
// once handed to an assembly call; Register must not be called
// concurrently with assembly.
type Registry struct {
	entries []Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds callbacks for a combination. Registering the same
// combination twice keeps both entries; each fires independently.
func (r *Registry) Register(combination []*component.Type, cbs ...Callback) {
	combo := make([]*component.Type, len(combination))
	copy(combo, combination)
	r.entries = append(r.entries, Entry{Combination: combo, Callbacks: cbs})
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	return r.entries
}
