package assembly

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// ctyComparer lets go-cmp compare system snapshots containing cty values.
var ctyComparer = cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })

func snapshot(sys *system.System) []system.State {
	return sys.Snapshot()
}

func TestAdd_SingleBlueprint(t *testing.T) {
	ctx := context.Background()
	h := component.NewHierarchy("model")
	x := h.Concrete("x", nil)

	sys, err := Add(ctx, system.New(), Options{}, bpFor("x1", x))
	require.NoError(t, err)
	assert.True(t, sys.Has(x))

	payload, ok := sys.Payload(x)
	require.True(t, ok)
	assert.Equal(t, "x1", payload.GetAttr("source").AsString())
}

func TestAdd_CompletenessAndAbstractBookkeeping(t *testing.T) {
	ctx := context.Background()
	h := component.NewHierarchy("model")
	species := h.Abstract("species", nil)
	producer := h.Concrete("producer", species)
	consumer := h.Concrete("consumer", species)
	nutrients := h.Concrete("nutrients", nil)

	root := bpFor("web", producer)
	root.brings = []component.Brought{
		component.Embed(bpFor("consumers", consumer)),
		component.Embed(bpFor("pool", nutrients)),
	}

	sys, err := Add(ctx, system.New(), Options{}, root)
	require.NoError(t, err)

	assert.True(t, sys.Has(producer))
	assert.True(t, sys.Has(consumer))
	assert.True(t, sys.Has(nutrients))
	// The abstract capability is satisfied through its concrete members.
	assert.True(t, sys.Has(species))
	assert.Equal(t, []*component.Type{consumer, producer}, sys.Satisfying(species))
	// And nothing else was added.
	assert.Len(t, sys.Components(), 3)
}

func TestAdd_Atomicity(t *testing.T) {
	ctx := context.Background()
	h := component.NewHierarchy("model")
	y := h.Concrete("y", nil)
	x := h.Concrete("x", nil, component.Requires(y, "x reads y's table"))

	sys := system.New()
	_, err := Add(ctx, sys, Options{}, bpFor("seed", y))
	require.NoError(t, err)

	before := snapshot(sys)

	// x requires y (fine) but also embeds y which is already present.
	bad := bpFor("bad", x)
	bad.brings = []component.Brought{component.Embed(bpFor("dup", y))}
	_, err = Add(ctx, sys, Options{}, bad)
	require.Error(t, err)

	var addErr *AddError
	require.ErrorAs(t, err, &addErr)
	assert.Empty(t, cmp.Diff(before, snapshot(sys), ctyComparer),
		"a failed validation must leave the system bit-for-bit unchanged")
}

func TestAdd_DuplicateSemantics(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding an already present component fails", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		sys, err := Add(ctx, system.New(), Options{}, bpFor("x1", x))
		require.NoError(t, err)

		_, err = Add(ctx, sys, Options{}, bpFor("x2", x))
		var present *AlreadyPresentError
		require.ErrorAs(t, err, &present)
		assert.Equal(t, x, present.Component)
	})

	t.Run("implying an already present component is a no-op", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)
		y := h.Concrete("y", nil)

		sys, err := Add(ctx, system.New(), Options{}, bpFor("x1", x))
		require.NoError(t, err)

		root := bpFor("y1", y)
		root.brings = []component.Brought{component.Imply(x)}
		_, err = Add(ctx, sys, Options{}, root)
		require.NoError(t, err)
		assert.True(t, sys.Has(y))
	})

	t.Run("equal blueprints for the same component merge silently", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)
		y := h.Concrete("y", nil)

		a := bpFor("a", y)
		a.brings = []component.Brought{component.Embed(bpFor("shared", x))}
		sys, err := Add(ctx, system.New(), Options{}, a, bpFor("shared", x))
		require.NoError(t, err)
		assert.True(t, sys.Has(x))
		assert.True(t, sys.Has(y))
	})

	t.Run("unequal blueprints for the same component are inconsistent", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		_, err := Add(ctx, system.New(), Options{}, bpFor("first", x), bpFor("second", x))
		var inconsistent *InconsistencyError
		require.ErrorAs(t, err, &inconsistent)
		assert.Equal(t, x, inconsistent.Component)
		assert.Contains(t, inconsistent.Error(), "two inconsistent recipes")
	})
}

func TestAdd_RequirementResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("missing requirement names the requirer and reason", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil, component.Requires(y, "x reads y's table"))

		_, err := Add(ctx, system.New(), Options{}, bpFor("x1", x))
		var missing *MissingRequirementError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, y, missing.Required)
		assert.Equal(t, x, missing.Requirer)
		assert.Equal(t, "x reads y's table", missing.Reason)
	})

	t.Run("a hook fills the gap and is ordered before the requirer", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil, component.Requires(y, ""))

		var order []string
		record := func(id string) func(component.System) {
			return func(component.System) { order = append(order, id) }
		}
		xbp := bpFor("x1", x)
		xbp.onExpand = record("x")
		hook := bpFor("y-hook", y)
		hook.onExpand = record("y")

		sys, err := Add(ctx, system.New(), Options{Hooks: []component.Blueprint{hook}}, xbp)
		require.NoError(t, err)
		assert.True(t, sys.Has(x))
		assert.True(t, sys.Has(y))
		assert.Equal(t, []string{"y", "x"}, order)
	})

	t.Run("a hook is consumed at most once", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil, component.Requires(y, ""))

		hook := bpFor("y-hook", y)
		sys, err := Add(ctx, system.New(), Options{Hooks: []component.Blueprint{hook}}, bpFor("x1", x))
		require.NoError(t, err)
		require.True(t, sys.Has(y))
	})

	t.Run("an abstract requirement is satisfied by a concrete subtype in the forest", func(t *testing.T) {
		h := component.NewHierarchy("model")
		species := h.Abstract("species", nil)
		producer := h.Concrete("producer", species)
		x := h.Concrete("x", nil, component.Requires(species, "needs some species"))

		sys, err := Add(ctx, system.New(), Options{}, bpFor("x1", x), bpFor("p1", producer))
		require.NoError(t, err)
		assert.True(t, sys.Has(x))
		assert.True(t, sys.Has(species))
	})

	t.Run("blueprint-level requirements participate too", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil)

		xbp := bpFor("x1", x)
		xbp.reqs = []component.Requirement{{Target: y, Reason: "recipe data references y"}}
		_, err := Add(ctx, system.New(), Options{}, xbp)
		var missing *MissingRequirementError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, y, missing.Required)
		assert.Nil(t, missing.Requirer)
	})
}

func TestAdd_ConflictSymmetry(t *testing.T) {
	ctx := context.Background()

	newCatalog := func() (*component.Hierarchy, *component.Type, *component.Type) {
		h := component.NewHierarchy("model")
		a := h.Concrete("a", nil)
		b := h.Concrete("b", nil, component.ConflictsWith(a))
		return h, a, b
	}

	t.Run("same call, declaration on second", func(t *testing.T) {
		_, a, b := newCatalog()
		_, err := Add(ctx, system.New(), Options{}, bpFor("a1", a), bpFor("b1", b))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, b, conflict.Component)
		assert.Equal(t, a, conflict.Other)
		assert.NotEmpty(t, conflict.OtherChain)
	})

	t.Run("same call, declaration on first", func(t *testing.T) {
		_, a, b := newCatalog()
		_, err := Add(ctx, system.New(), Options{}, bpFor("b1", b), bpFor("a1", a))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, a, conflict.Component)
		assert.Equal(t, b, conflict.Other)
	})

	t.Run("across calls, both directions", func(t *testing.T) {
		_, a, b := newCatalog()
		sys, err := Add(ctx, system.New(), Options{}, bpFor("a1", a))
		require.NoError(t, err)

		before := snapshot(sys)
		_, err = Add(ctx, sys, Options{}, bpFor("b1", b))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Empty(t, conflict.OtherChain, "conflict is with a component already on the system")
		assert.Empty(t, cmp.Diff(before, snapshot(sys), ctyComparer))

		_, aa, bb := newCatalog()
		sys2, err := Add(ctx, system.New(), Options{}, bpFor("b1", bb))
		require.NoError(t, err)
		_, err = Add(ctx, sys2, Options{}, bpFor("a1", aa))
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("declared via an abstract ancestor", func(t *testing.T) {
		h := component.NewHierarchy("model")
		topology := h.Abstract("topology", nil)
		foodweb := h.Concrete("foodweb", topology)
		chain := h.Concrete("chain", nil, component.ConflictsWith(topology))

		sys, err := Add(ctx, system.New(), Options{}, bpFor("web1", foodweb))
		require.NoError(t, err)

		_, err = Add(ctx, sys, Options{}, bpFor("chain1", chain))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, chain, conflict.Component)
		assert.Equal(t, foodweb, conflict.Other)
		assert.Equal(t, chain, conflict.Declarer)
		assert.Equal(t, topology, conflict.Declared)
	})
}

func TestAdd_Excluded(t *testing.T) {
	ctx := context.Background()

	t.Run("an explicitly brought excluded component is an error", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		_, err := Add(ctx, system.New(), Options{Without: []*component.Type{x}}, bpFor("x1", x))
		var excluded *ExcludedError
		require.ErrorAs(t, err, &excluded)
		assert.Equal(t, x, excluded.Component)
	})

	t.Run("a recursively brought excluded component is an error", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)
		y := h.Concrete("y", nil)

		root := bpFor("y1", y)
		root.brings = []component.Brought{component.Embed(bpFor("x1", x))}
		_, err := Add(ctx, system.New(), Options{Without: []*component.Type{x}}, root)
		var excluded *ExcludedError
		require.ErrorAs(t, err, &excluded)
		assert.Equal(t, "y > x (embedded)", excluded.Chain)
	})

	t.Run("hooks never introduce an excluded component", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil, component.Requires(y, ""))

		_, err := Add(ctx, system.New(),
			Options{Hooks: []component.Blueprint{bpFor("y-hook", y)}, Without: []*component.Type{y}},
			bpFor("x1", x))
		var missing *MissingRequirementError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, y, missing.Required)
	})
}

func TestAdd_FailureClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("domain check failure carries the user message", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		bad := bpFor("x1", x)
		bad.isolatedErr = component.Checkf("growth rate must be positive")
		_, err := Add(ctx, system.New(), Options{}, bad)

		var check *BlueprintCheckError
		require.ErrorAs(t, err, &check)
		assert.Equal(t, "isolated", check.Phase)
		assert.Contains(t, check.Message, "growth rate must be positive")
	})

	t.Run("non-domain check failure is flagged as a bug", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		bad := bpFor("x1", x)
		bad.isolatedErr = errors.New("nil pointer somewhere")
		_, err := Add(ctx, system.New(), Options{}, bad)

		var unexpected *UnexpectedCheckError
		require.ErrorAs(t, err, &unexpected)
		assert.Contains(t, unexpected.Error(), "bug in the blueprint")
	})

	t.Run("live check failure is recoverable", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		bad := bpFor("x1", x)
		bad.liveErr = component.Checkf("system too small for x")
		_, err := Add(ctx, system.New(), Options{}, bad)

		var addErr *AddError
		require.ErrorAs(t, err, &addErr)
		var check *BlueprintCheckError
		require.ErrorAs(t, err, &check)
		assert.Equal(t, "live", check.Phase)
	})

	t.Run("live check failure after an earlier expansion leaves the system safely incomplete", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil)

		bad := bpFor("x1", x)
		bad.liveErr = component.Checkf("x cannot join this system")
		sys := system.New()
		_, err := Add(ctx, sys, Options{}, bpFor("y1", y), bad)

		var addErr *AddError
		require.ErrorAs(t, err, &addErr)
		var check *BlueprintCheckError
		require.ErrorAs(t, err, &check)
		assert.Equal(t, "live", check.Phase)

		// y expanded before x's live check ran and stays applied; x was
		// never added.
		assert.True(t, sys.Has(y))
		payload, ok := sys.Payload(y)
		require.True(t, ok)
		assert.Equal(t, "y1", payload.GetAttr("source").AsString())
		assert.False(t, sys.Has(x))
	})

	t.Run("expansion failure is fatal and not rewrapped", func(t *testing.T) {
		h := component.NewHierarchy("model")
		x := h.Concrete("x", nil)

		bad := bpFor("x1", x)
		bad.expandErr = errors.New("storage write failed")
		_, err := Add(ctx, system.New(), Options{}, bad)

		var fatal *FatalError
		require.ErrorAs(t, err, &fatal)
		assert.Equal(t, "expansion", fatal.Stage)
		assert.Contains(t, err.Error(), "must be discarded")

		var addErr *AddError
		assert.False(t, errors.As(err, &addErr), "fatal errors must not be wrapped as recoverable")
	})
}

func TestAdd_Bundle(t *testing.T) {
	ctx := context.Background()
	h := component.NewHierarchy("model")
	x := h.Concrete("x", nil)
	y := h.Concrete("y", nil)
	z := h.Concrete("z", nil)

	bundle := component.Bundle{bpFor("x1", x), bpFor("y1", y)}
	sys, err := Add(ctx, system.New(), Options{}, bundle, bpFor("z1", z))
	require.NoError(t, err)
	assert.Len(t, sys.Components(), 3)
}

func TestAdd_ImpliedConstruction(t *testing.T) {
	ctx := context.Background()

	t.Run("an implied component is auto-constructed", func(t *testing.T) {
		h := component.NewHierarchy("model")
		var yy *component.Type
		yy = h.Concrete("y", nil, component.ImpliedBy(func() (component.Blueprint, error) {
			return bpFor("y-default", yy), nil
		}))
		x := h.Concrete("x", nil)

		root := bpFor("x1", x)
		root.brings = []component.Brought{component.Imply(yy)}
		sys, err := Add(ctx, system.New(), Options{}, root)
		require.NoError(t, err)
		assert.True(t, sys.Has(yy))
	})

	t.Run("a missing implied constructor is an error", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil)
		x := h.Concrete("x", nil)

		root := bpFor("x1", x)
		root.brings = []component.Brought{component.Imply(y)}
		_, err := Add(ctx, system.New(), Options{}, root)
		var implied *ImpliedConstructionError
		require.ErrorAs(t, err, &implied)
		assert.Equal(t, y, implied.Component)
	})

	t.Run("a failing implied constructor reports its chain", func(t *testing.T) {
		h := component.NewHierarchy("model")
		y := h.Concrete("y", nil, component.ImpliedBy(func() (component.Blueprint, error) {
			return nil, errors.New("no sensible defaults exist")
		}))
		x := h.Concrete("x", nil)

		root := bpFor("x1", x)
		root.brings = []component.Brought{component.Imply(y)}
		_, err := Add(ctx, system.New(), Options{}, root)
		var implied *ImpliedConstructionError
		require.ErrorAs(t, err, &implied)
		assert.Contains(t, implied.Error(), "no sensible defaults exist")
	})
}

func TestAddCopy(t *testing.T) {
	ctx := context.Background()
	h := component.NewHierarchy("model")
	x := h.Concrete("x", nil)
	y := h.Concrete("y", nil)

	orig, err := Add(ctx, system.New(), Options{}, bpFor("x1", x))
	require.NoError(t, err)

	copied, err := AddCopy(ctx, orig, Options{}, bpFor("y1", y))
	require.NoError(t, err)

	assert.True(t, copied.Has(x))
	assert.True(t, copied.Has(y))
	assert.False(t, orig.Has(y), "the original system must stay untouched")
}
