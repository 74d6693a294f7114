package assembly

import (
	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/trigger"
)

// Options carries the optional collaborators of one Add call.
type Options struct {
	// DefaultsStatus is a pure function invoked once after the initial
	// forest pass. It receives a "is component X already going to be
	// brought" predicate and returns an arbitrary status value that is
	// threaded into every default builder.
	DefaultsStatus func(bringing func(*component.Type) bool) any

	// Defaults is the ordered list of default-recipe builders. A default
	// is only considered when its component is neither present, nor
	// brought by the caller's recipes, nor excluded.
	Defaults []Default

	// Hooks are spare blueprints used to silently fill missing
	// requirements, indexed by the component types they provide. Each is
	// consumed at most once and never re-offered afterward.
	Hooks []component.Blueprint

	// Without lists component types the caller forbids defaults and
	// hooks from introducing. A recipe explicitly or transitively
	// targeting one of them is an error.
	Without []*component.Type

	// Triggers is the registry snapshot consulted by this call. The call
	// works on a pruned private copy; the registry itself is never
	// mutated.
	Triggers *trigger.Registry
}

// Default pairs a component type with the builder synthesizing its
// default recipe.
type Default struct {
	Component *component.Type
	Build     DefaultBuilder
}

// DefaultBuilder produces a default blueprint. It receives the status
// value from Options.DefaultsStatus and a helper wrapping a blueprint so
// that it is only brought if its components are still unbrought at
// forest-construction time. Returning nil skips the default.
type DefaultBuilder func(status any, ifUnbrought func(component.Blueprint) component.Blueprint) component.Blueprint

// conditionalBlueprint is the "if still unbrought" wrapper handed to
// default builders. The forest builder skips it silently when every
// component it targets is already present or brought.
type conditionalBlueprint struct {
	component.Blueprint
}

func ifUnbrought(bp component.Blueprint) component.Blueprint {
	return &conditionalBlueprint{Blueprint: bp}
}

// Clone keeps the wrapper around the inner blueprint's copy.
func (c *conditionalBlueprint) Clone() component.Blueprint {
	return &conditionalBlueprint{Blueprint: c.Blueprint.Clone()}
}

// Equal compares through the wrapper: a conditional recipe merges with
// an unconditional equal one.
func (c *conditionalBlueprint) Equal(other component.Blueprint) bool {
	if o, ok := other.(*conditionalBlueprint); ok {
		other = o.Blueprint
	}
	return c.Blueprint.Equal(other)
}

var _ component.Blueprint = (*conditionalBlueprint)(nil)

// hookEntry is one spare blueprint in the call's hooks table.
type hookEntry struct {
	bp    component.Blueprint
	taken bool
}

// pendingTrigger is one entry of the call-local trigger working table:
// the subset of the combination not yet present, and the callbacks to
// run once that subset becomes empty.
type pendingTrigger struct {
	unmet     map[*component.Type]struct{}
	callbacks []trigger.Callback
	// combination keeps the full registered set for diagnostics.
	combination []*component.Type
}
