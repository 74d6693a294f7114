package system

import (
	"sort"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// System is the live model being assembled. The zero value is not usable;
// create instances with New.
type System struct {
	// payloads holds the model data, one value per expanded component.
	payloads map[*component.Type]cty.Value
	// present is the set of concrete components on the system.
	present map[*component.Type]struct{}
	// satisfied maps each abstract ancestor to the concrete components
	// currently satisfying it.
	satisfied map[*component.Type]map[*component.Type]struct{}
}

// New returns an empty system.
func New() *System {
	return &System{
		payloads:  make(map[*component.Type]cty.Value),
		present:   make(map[*component.Type]struct{}),
		satisfied: make(map[*component.Type]map[*component.Type]struct{}),
	}
}

// Has reports whether the component is present. For an abstract type it
// holds when any satisfying concrete component is present.
func (s *System) Has(t *component.Type) bool {
	if t.IsConcrete() {
		_, ok := s.present[t]
		return ok
	}
	return len(s.satisfied[t]) > 0
}

// Payload returns the data stored for a component.
func (s *System) Payload(t *component.Type) (cty.Value, bool) {
	v, ok := s.payloads[t]
	return v, ok
}

// SetPayload stores data for a component. Blueprints call this from
// their expansion routine.
func (s *System) SetPayload(t *component.Type, v cty.Value) {
	s.payloads[t] = v
}

// AddComponent records a concrete component as present and updates every
// abstract ancestor's satisfied set. The assembly engine calls this after
// a successful expansion; it panics on abstract types, which are never
// directly expanded.
func (s *System) AddComponent(t *component.Type) {
	if !t.IsConcrete() {
		panic("system: abstract component type cannot be added directly: " + t.Name())
	}
	s.present[t] = struct{}{}
	for a := t.Parent(); a != nil; a = a.Parent() {
		set, ok := s.satisfied[a]
		if !ok {
			set = make(map[*component.Type]struct{})
			s.satisfied[a] = set
		}
		set[t] = struct{}{}
	}
}

// Components returns the present concrete components, sorted by name for
// deterministic output.
func (s *System) Components() []*component.Type {
	out := make([]*component.Type, 0, len(s.present))
	for t := range s.present {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Satisfying returns the concrete components currently satisfying an
// abstract capability, sorted by name.
func (s *System) Satisfying(abstract *component.Type) []*component.Type {
	out := make([]*component.Type, 0, len(s.satisfied[abstract]))
	for t := range s.satisfied[abstract] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Clone returns an independent copy of the system: payload map, present
// set and satisfied sets are all copied. Payload values themselves are
// immutable cty values and are shared.
func (s *System) Clone() *System {
	c := New()
	for t, v := range s.payloads {
		c.payloads[t] = v
	}
	for t := range s.present {
		c.present[t] = struct{}{}
	}
	for a, set := range s.satisfied {
		cp := make(map[*component.Type]struct{}, len(set))
		for t := range set {
			cp[t] = struct{}{}
		}
		c.satisfied[a] = cp
	}
	return c
}

// State is an exported, comparable snapshot of a system, used by tests
// and by the CLI's component table output.
type State struct {
	Name    string
	Payload cty.Value
	HasData bool
}

// Snapshot returns the present components and their payloads in name
// order.
func (s *System) Snapshot() []State {
	comps := s.Components()
	out := make([]State, 0, len(comps))
	for _, t := range comps {
		v, ok := s.payloads[t]
		out = append(out, State{Name: t.Name(), Payload: v, HasData: ok})
	}
	return out
}
