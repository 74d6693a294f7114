package component

import "context"

// Bundle groups several blueprints into one value so callers can pass a
// prepared set of recipes around as a unit. The assembly entry point
// flattens bundles into their members, in order, before processing; a
// bundle therefore never appears in a forest itself.
type Bundle []Blueprint

// Components implements Blueprint. A bundle targets nothing directly.
func (b Bundle) Components() []*Type { return nil }

// Brings implements Blueprint by embedding every member.
func (b Bundle) Brings() []Brought {
	brings := make([]Brought, 0, len(b))
	for _, bp := range b {
		brings = append(brings, Embed(bp))
	}
	return brings
}

// Requirements implements Blueprint.
func (b Bundle) Requirements() []Requirement { return nil }

// CheckIsolated implements Blueprint.
func (b Bundle) CheckIsolated(ctx context.Context) error { return nil }

// CheckLive implements Blueprint.
func (b Bundle) CheckLive(ctx context.Context, sys System) error { return nil }

// Expand implements Blueprint. A bundle has nothing of its own to expand.
func (b Bundle) Expand(ctx context.Context, sys System) error { return nil }

// Equal implements Blueprint by memberwise equality.
func (b Bundle) Equal(other Blueprint) bool {
	o, ok := other.(Bundle)
	if !ok || len(o) != len(b) {
		return false
	}
	for i := range b {
		if !b[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Clone implements Blueprint by cloning every member.
func (b Bundle) Clone() Blueprint {
	out := make(Bundle, len(b))
	for i := range b {
		out[i] = b[i].Clone()
	}
	return out
}
