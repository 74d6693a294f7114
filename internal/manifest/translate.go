// This file resolves decoded schema structs into the component catalog
// and blueprint values the engine works with.

package manifest

import (
	"fmt"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// rootName is the abstract root every loaded catalog hangs under.
const rootName = "model"

func translate(components []*hclComponent, blueprints []*hclBlueprint) (*Model, error) {
	catalog, err := translateCatalog(components)
	if err != nil {
		return nil, err
	}

	model := &Model{
		Catalog: catalog,
		ByName:  make(map[string]*Blueprint),
	}
	if err := translateBlueprints(model, blueprints); err != nil {
		return nil, err
	}
	return model, nil
}

// translateCatalog registers every component type, resolving parent
// references across files, then attaches requirement, conflict and
// implied-construction metadata in a second pass (targets may be
// declared after their referrers).
func translateCatalog(components []*hclComponent) (*component.Hierarchy, error) {
	catalog := component.NewHierarchy(rootName)

	declared := make(map[string]*hclComponent, len(components))
	for _, c := range components {
		if c.Name == rootName {
			return nil, fmt.Errorf("component name '%s' is reserved for the catalog root", rootName)
		}
		if _, dup := declared[c.Name]; dup {
			return nil, fmt.Errorf("component '%s' declared twice", c.Name)
		}
		declared[c.Name] = c
	}

	// Register types with parents resolved iteratively: each pass
	// registers everything whose parent is already in the catalog.
	remaining := append([]*hclComponent(nil), components...)
	for len(remaining) > 0 {
		var deferred []*hclComponent
		progress := false
		for _, c := range remaining {
			parent := catalog.Root()
			if c.Parent != "" {
				p, ok := catalog.Lookup(c.Parent)
				if !ok {
					deferred = append(deferred, c)
					continue
				}
				if p.IsConcrete() {
					return nil, fmt.Errorf("component '%s' cannot use concrete component '%s' as parent", c.Name, c.Parent)
				}
				parent = p
			}
			if c.Abstract {
				catalog.Abstract(c.Name, parent)
			} else {
				catalog.Concrete(c.Name, parent)
			}
			progress = true
		}
		if !progress {
			return nil, fmt.Errorf("component '%s' references unknown or cyclic parent '%s'",
				deferred[0].Name, deferred[0].Parent)
		}
		remaining = deferred
	}

	// Second pass: metadata referencing other types.
	for _, c := range components {
		t, _ := catalog.Lookup(c.Name)
		if c.Abstract {
			if len(c.Requires) > 0 || len(c.Conflicts) > 0 || c.ImpliedDefaults != cty.NilVal {
				return nil, fmt.Errorf("abstract component '%s' cannot declare requirements, conflicts or implied defaults", c.Name)
			}
			continue
		}
		var opts []component.TypeOption
		for _, r := range c.Requires {
			target, ok := catalog.Lookup(r.Component)
			if !ok {
				return nil, fmt.Errorf("component '%s' requires unknown component '%s'", c.Name, r.Component)
			}
			opts = append(opts, component.Requires(target, r.Reason))
		}
		for _, name := range c.Conflicts {
			target, ok := catalog.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("component '%s' conflicts with unknown component '%s'", c.Name, name)
			}
			opts = append(opts, component.ConflictsWith(target))
		}
		if c.ImpliedDefaults != cty.NilVal {
			payload := c.ImpliedDefaults
			target := t
			opts = append(opts, component.ImpliedBy(func() (component.Blueprint, error) {
				return NewBlueprint(target.Name()+" (defaults)", target, payload), nil
			}))
		}
		catalog.Extend(t, opts...)
	}

	return catalog, nil
}

// translateBlueprints resolves blueprint blocks in two passes: values
// first, then cross-references (embeds), so declaration order between
// blueprints does not matter. Embedding must be acyclic; the forest
// builder recurses through it unconditionally.
func translateBlueprints(model *Model, blueprints []*hclBlueprint) error {
	catalog := model.Catalog

	blocks := make(map[string]*hclBlueprint, len(blueprints))
	for _, b := range blueprints {
		if _, dup := model.ByName[b.Name]; dup {
			return fmt.Errorf("blueprint '%s' declared twice", b.Name)
		}
		target, ok := catalog.Lookup(b.Component)
		if !ok {
			return fmt.Errorf("blueprint '%s' targets unknown component '%s'", b.Name, b.Component)
		}
		if !target.IsConcrete() {
			return fmt.Errorf("blueprint '%s' targets abstract component '%s'; only concrete components can be expanded", b.Name, b.Component)
		}
		bp := NewBlueprint(b.Name, target, b.Payload)
		model.ByName[b.Name] = bp
		model.Blueprints = append(model.Blueprints, bp)
		blocks[b.Name] = b
	}

	for _, bp := range model.Blueprints {
		b := blocks[bp.Name()]
		for _, name := range b.Brings {
			t, ok := catalog.Lookup(name)
			if !ok {
				return fmt.Errorf("blueprint '%s' brings unknown component '%s'", b.Name, name)
			}
			bp.WithBrings(component.Imply(t))
		}
		for _, name := range b.Embeds {
			sub, ok := model.ByName[name]
			if !ok {
				return fmt.Errorf("blueprint '%s' embeds unknown blueprint '%s'", b.Name, name)
			}
			bp.WithBrings(component.Embed(sub))
		}
		for _, name := range b.Requires {
			t, ok := catalog.Lookup(name)
			if !ok {
				return fmt.Errorf("blueprint '%s' requires unknown component '%s'", b.Name, name)
			}
			bp.WithRequires(component.Requirement{Target: t})
		}
	}

	return detectEmbedCycles(model, blocks)
}

// detectEmbedCycles walks the embeds references depth-first. A cycle
// would make the forest builder recurse forever, so it is rejected at
// load time.
func detectEmbedCycles(model *Model, blocks map[string]*hclBlueprint) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(blocks))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("blueprint '%s' is part of an embedding cycle", name)
		}
		state[name] = visiting
		for _, sub := range blocks[name].Embeds {
			if err := visit(sub); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for name := range blocks {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
