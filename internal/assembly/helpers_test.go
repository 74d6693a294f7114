package assembly

import (
	"context"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// testBlueprint is a configurable in-memory recipe used across the
// package tests. Identity is (id, components): two testBlueprints with
// the same id and targets are Equal.
type testBlueprint struct {
	id    string
	comps []*component.Type

	brings []component.Brought
	reqs   []component.Requirement

	isolatedErr error
	liveErr     error
	expandErr   error

	// onExpand, when set, is called after the payload write so tests can
	// observe expansion order.
	onExpand func(sys component.System)
}

func bpFor(id string, comps ...*component.Type) *testBlueprint {
	return &testBlueprint{id: id, comps: comps}
}

func (b *testBlueprint) Components() []*component.Type           { return b.comps }
func (b *testBlueprint) Brings() []component.Brought             { return b.brings }
func (b *testBlueprint) Requirements() []component.Requirement   { return b.reqs }
func (b *testBlueprint) CheckIsolated(ctx context.Context) error { return b.isolatedErr }

func (b *testBlueprint) CheckLive(ctx context.Context, sys component.System) error {
	return b.liveErr
}

func (b *testBlueprint) Expand(ctx context.Context, sys component.System) error {
	if b.expandErr != nil {
		return b.expandErr
	}
	for _, t := range b.comps {
		sys.SetPayload(t, cty.ObjectVal(map[string]cty.Value{"source": cty.StringVal(b.id)}))
	}
	if b.onExpand != nil {
		b.onExpand(sys)
	}
	return nil
}

func (b *testBlueprint) Equal(other component.Blueprint) bool {
	o, ok := other.(*testBlueprint)
	if !ok || o.id != b.id || len(o.comps) != len(b.comps) {
		return false
	}
	for i := range b.comps {
		if b.comps[i] != o.comps[i] {
			return false
		}
	}
	return true
}

func (b *testBlueprint) Clone() component.Blueprint {
	c := *b
	c.comps = append([]*component.Type(nil), b.comps...)
	c.brings = append([]component.Brought(nil), b.brings...)
	c.reqs = append([]component.Requirement(nil), b.reqs...)
	return &c
}

var _ component.Blueprint = (*testBlueprint)(nil)
