package manifest

import (
	"context"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// Blueprint is the generic recipe decoded from a `blueprint` block: one
// target component and a cty payload stored on the system at expansion.
type Blueprint struct {
	name     string
	target   *component.Type
	payload  cty.Value
	brings   []component.Brought
	requires []component.Requirement
}

// NewBlueprint builds a manifest-style blueprint programmatically. The
// loader uses it for implied constructors; tests and callers embedding
// catalogs in Go use it directly.
func NewBlueprint(name string, target *component.Type, payload cty.Value) *Blueprint {
	return &Blueprint{name: name, target: target, payload: payload}
}

// Name returns the blueprint's declared name.
func (b *Blueprint) Name() string { return b.name }

// WithBrings appends sub-recipes and returns the same blueprint for
// chaining during construction.
func (b *Blueprint) WithBrings(brings ...component.Brought) *Blueprint {
	b.brings = append(b.brings, brings...)
	return b
}

// WithRequires appends blueprint-level requirements.
func (b *Blueprint) WithRequires(reqs ...component.Requirement) *Blueprint {
	b.requires = append(b.requires, reqs...)
	return b
}

// Components implements component.Blueprint.
func (b *Blueprint) Components() []*component.Type {
	return []*component.Type{b.target}
}

// Brings implements component.Blueprint.
func (b *Blueprint) Brings() []component.Brought { return b.brings }

// Requirements implements component.Blueprint.
func (b *Blueprint) Requirements() []component.Requirement { return b.requires }

// CheckIsolated validates the payload shape without looking at the live
// system: a set payload must be a known object value.
func (b *Blueprint) CheckIsolated(ctx context.Context) error {
	if b.payload == cty.NilVal || b.payload.IsNull() {
		return nil
	}
	if !b.payload.IsWhollyKnown() {
		return component.Checkf("payload for component %s contains unknown values", b.target)
	}
	if !b.payload.Type().IsObjectType() {
		return component.Checkf("payload for component %s must be an object, got %s", b.target, b.payload.Type().FriendlyName())
	}
	return nil
}

// CheckLive implements component.Blueprint. Manifest recipes have no
// cross-component constraints of their own.
func (b *Blueprint) CheckLive(ctx context.Context, sys component.System) error {
	return nil
}

// Expand stores the payload on the system under the target component.
func (b *Blueprint) Expand(ctx context.Context, sys component.System) error {
	payload := b.payload
	if payload == cty.NilVal {
		payload = cty.EmptyObjectVal
	}
	sys.SetPayload(b.target, payload)
	return nil
}

// Equal implements value identity: same target and payload.
func (b *Blueprint) Equal(other component.Blueprint) bool {
	o, ok := other.(*Blueprint)
	if !ok || o.target != b.target {
		return false
	}
	return normalize(b.payload).RawEquals(normalize(o.payload))
}

// Clone implements component.Blueprint. Payload values are immutable, so
// a shallow copy with duplicated slices is a private copy.
func (b *Blueprint) Clone() component.Blueprint {
	c := *b
	c.brings = append([]component.Brought(nil), b.brings...)
	c.requires = append([]component.Requirement(nil), b.requires...)
	return &c
}

func normalize(v cty.Value) cty.Value {
	if v == cty.NilVal {
		return cty.EmptyObjectVal
	}
	return v
}

var _ component.Blueprint = (*Blueprint)(nil)
