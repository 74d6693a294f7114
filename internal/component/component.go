package component

import (
	"fmt"
)

// Type is a single tag in the catalog hierarchy. Types are created through
// a Hierarchy and are compared by pointer identity; two catalogs never
// share Type values.
type Type struct {
	name      string
	parent    *Type
	concrete  bool
	requires  []Requirement
	conflicts []*Type
	implied   ImpliedFunc
}

// Requirement is a hard dependency declared on a concrete type or carried
// by a blueprint, together with an optional human-readable reason used in
// diagnostics.
type Requirement struct {
	Target *Type
	Reason string
}

// ImpliedFunc constructs a blueprint for a component that a recipe brings
// by type only. It is consulted when no other recipe in the call already
// provides the component.
type ImpliedFunc func() (Blueprint, error)

// Name returns the unique name of the type within its hierarchy.
func (t *Type) Name() string { return t.name }

// Parent returns the type's direct ancestor, or nil for the root.
func (t *Type) Parent() *Type { return t.parent }

// IsConcrete reports whether the type can be the direct target of
// expansion. Abstract types exist only for grouping.
func (t *Type) IsConcrete() bool { return t.concrete }

// Requirements returns the hard requirements declared on the type.
func (t *Type) Requirements() []Requirement { return t.requires }

// Conflicts returns the types this type declares itself mutually
// exclusive with. Entries may be abstract.
func (t *Type) Conflicts() []*Type { return t.conflicts }

// Implied returns the implied-construction hook for the type, or nil if
// the type cannot be auto-constructed.
func (t *Type) Implied() ImpliedFunc { return t.implied }

// Satisfies reports whether a component of this type counts as the given
// target: either the same type, or a descendant of an abstract target.
func (t *Type) Satisfies(target *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log and error output.
func (t *Type) String() string { return t.name }

// Conflicting reports whether concrete types a and b are mutually
// exclusive. The check is symmetric: a declaration on either side
// matches, possibly through an abstract ancestor of the other. On a
// match it returns the side carrying the declaration and the (possibly
// abstract) declared target.
func Conflicting(a, b *Type) (declarer, declared *Type, ok bool) {
	for _, c := range a.conflicts {
		if b.Satisfies(c) {
			return a, c, true
		}
	}
	for _, c := range b.conflicts {
		if a.Satisfies(c) {
			return b, c, true
		}
	}
	return nil, nil, false
}

// Hierarchy is a single-rooted catalog of component types. All types are
// registered up front, before any assembly call uses them; registration
// is not safe for concurrent use.
type Hierarchy struct {
	root   *Type
	byName map[string]*Type
}

// NewHierarchy creates a catalog with a single abstract root type.
func NewHierarchy(rootName string) *Hierarchy {
	root := &Type{name: rootName}
	return &Hierarchy{
		root:   root,
		byName: map[string]*Type{rootName: root},
	}
}

// Root returns the abstract root of the hierarchy.
func (h *Hierarchy) Root() *Type { return h.root }

// Lookup returns the type registered under the given name.
func (h *Hierarchy) Lookup(name string) (*Type, bool) {
	t, ok := h.byName[name]
	return t, ok
}

// Abstract registers a new abstract type under the given parent. A nil
// parent attaches the type to the root. Duplicate names are a programmer
// error and panic.
func (h *Hierarchy) Abstract(name string, parent *Type) *Type {
	return h.register(name, parent, false)
}

// Concrete registers a new concrete type under the given parent, applying
// any options. A nil parent attaches the type to the root.
func (h *Hierarchy) Concrete(name string, parent *Type, opts ...TypeOption) *Type {
	t := h.register(name, parent, true)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (h *Hierarchy) register(name string, parent *Type, concrete bool) *Type {
	if _, exists := h.byName[name]; exists {
		panic(fmt.Sprintf("component type '%s' already registered", name))
	}
	if parent == nil {
		parent = h.root
	}
	if parent.concrete {
		panic(fmt.Sprintf("component type '%s' cannot be registered under concrete type '%s'", name, parent.name))
	}
	t := &Type{name: name, parent: parent, concrete: concrete}
	h.byName[name] = t
	return t
}

// Extend applies options to an already registered concrete type. Loaders
// use this to attach requirements and conflicts whose targets are only
// registered later in the catalog.
func (h *Hierarchy) Extend(t *Type, opts ...TypeOption) {
	if !t.concrete {
		panic(fmt.Sprintf("component type '%s' is abstract and carries no expansion metadata", t.name))
	}
	for _, opt := range opts {
		opt(t)
	}
}

// TypeOption configures a concrete type at registration time.
type TypeOption func(*Type)

// Requires declares a hard requirement on the type, with a human-readable
// reason rendered in missing-requirement diagnostics.
func Requires(target *Type, reason string) TypeOption {
	return func(t *Type) {
		t.requires = append(t.requires, Requirement{Target: target, Reason: reason})
	}
}

// ConflictsWith declares the type mutually exclusive with the given
// targets. Targets may be abstract; the conflict then covers every
// concrete descendant.
func ConflictsWith(targets ...*Type) TypeOption {
	return func(t *Type) {
		t.conflicts = append(t.conflicts, targets...)
	}
}

// ImpliedBy installs the constructor used when a recipe brings this
// component by type only.
func ImpliedBy(fn ImpliedFunc) TypeOption {
	return func(t *Type) { t.implied = fn }
}
