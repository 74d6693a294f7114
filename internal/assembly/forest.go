package assembly

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
)

// buildRoot wraps a root blueprint and all its descendants into nodes,
// appending the new tree to the forest. The forest only ever grows by
// appending roots; existing roots and children are never removed or
// reordered.
func (c *call) buildRoot(ctx context.Context, bp component.Blueprint) error {
	idx, err := c.buildNode(ctx, bp, -1, false)
	if err != nil {
		return err
	}
	if idx >= 0 {
		c.roots = append(c.roots, idx)
	}
	return nil
}

// buildNode performs the pre-order construction of one node and its
// descendants. It only mutates call-local state (arena, brought-index);
// the live system is never touched here. It returns -1 when a
// conditional recipe was skipped because everything it targets is
// already brought.
func (c *call) buildNode(ctx context.Context, bp component.Blueprint, parent int, implied bool) (int, error) {
	logger := ctxlog.FromContext(ctx)

	if cond, ok := bp.(*conditionalBlueprint); ok {
		if c.allBrought(cond.Components()) {
			logger.Debug("Skipping conditional recipe, components already brought.", "recipe", label(cond))
			return -1, nil
		}
		bp = cond.Blueprint
	}

	// The node owns a private copy of the blueprint.
	bp = bp.Clone()
	idx := len(c.nodes)
	c.nodes = append(c.nodes, node{bp: bp, parent: parent, implied: implied})
	if parent >= 0 {
		c.nodes[parent].children = append(c.nodes[parent].children, idx)
	}

	for _, t := range bp.Components() {
		if !t.IsConcrete() {
			// Abstract types are never directly expanded; a blueprint
			// reporting one is a broken implementation, not bad input.
			panic(fmt.Sprintf("assembly: blueprint %s targets abstract component type %s", label(bp), t))
		}
		if _, excluded := c.excluded[t]; excluded {
			return 0, &ExcludedError{Component: t, Chain: c.chain(idx)}
		}
		if !implied && c.sys.Has(t) {
			return 0, &AlreadyPresentError{Component: t, Chain: c.chain(idx)}
		}
		if err := c.recordProducer(t, idx); err != nil {
			return 0, err
		}
	}

	for _, brought := range bp.Brings() {
		if brought.Embedded != nil {
			// Embedded sub-recipes are authoritative: recurse
			// unconditionally.
			if _, err := c.buildNode(ctx, brought.Embedded, idx, false); err != nil {
				return 0, err
			}
			continue
		}
		t := brought.Implied
		if c.sys.Has(t) || len(c.brought[t]) > 0 {
			// Already present or already brought by some node: an
			// implied bring is a silent no-op.
			continue
		}
		ctor := t.Implied()
		if ctor == nil {
			return 0, &ImpliedConstructionError{Component: t, Chain: c.chain(idx)}
		}
		sub, err := ctor()
		if err != nil {
			return 0, &ImpliedConstructionError{Component: t, Chain: c.chain(idx), Err: err}
		}
		if _, err := c.buildNode(ctx, sub, idx, true); err != nil {
			return 0, err
		}
	}

	return idx, nil
}

// recordProducer pushes a node into the brought-index for a component.
// Every push is either the first producer of that type, a silent merge
// with an already-recorded producer of equal blueprint value, or an
// inconsistency error.
func (c *call) recordProducer(t *component.Type, idx int) error {
	producers := c.brought[t]
	if len(producers) > 0 {
		first := producers[0]
		if !c.nodes[first].bp.Equal(c.nodes[idx].bp) {
			return &InconsistencyError{
				Component:  t,
				Chain:      c.chain(idx),
				OtherChain: c.chain(first),
			}
		}
	}
	c.brought[t] = append(producers, idx)
	return nil
}

// allBrought reports whether every given component is already present on
// the system or brought by some node in the forest.
func (c *call) allBrought(comps []*component.Type) bool {
	for _, t := range comps {
		if !c.sys.Has(t) && len(c.brought[t]) == 0 {
			return false
		}
	}
	return true
}

// broughtSatisfies reports whether some node in the forest targets a
// component satisfying the given (possibly abstract) type.
func (c *call) broughtSatisfies(target *component.Type) bool {
	if len(c.brought[target]) > 0 {
		return true
	}
	for t := range c.brought {
		if t.Satisfies(target) {
			return true
		}
	}
	return false
}
