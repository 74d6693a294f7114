package assembly

import (
	"strings"

	"github.com/specialistvlad/assemblygo/internal/component"
)

// node is one working entry in the call's forest. Nodes live in an arena
// and reference their parent by index, so chain rendering is a cheap
// walk and the forest carries no ownership cycles. Nodes are created
// during forest construction and discarded when the call returns.
type node struct {
	// bp is the node's private copy of the blueprint; callers holding
	// the original never observe the engine working on it.
	bp component.Blueprint
	// parent is the arena index of the embedding node, or -1 for roots.
	parent int
	// implied marks nodes auto-constructed from a bare component type.
	// Implied recipes have the lowest precedence; embedded ones are
	// authoritative.
	implied bool
	// children holds arena indices in the order the parent reported them.
	children []int
	// expanded guards against applying a multi-component recipe more
	// than once during the expansion phase.
	expanded bool
}

// label names a node after the components its blueprint targets.
func label(bp component.Blueprint) string {
	comps := bp.Components()
	if len(comps) == 0 {
		return "(container recipe)"
	}
	names := make([]string, len(comps))
	for i, t := range comps {
		names[i] = t.Name()
	}
	return strings.Join(names, "+")
}

// chain renders the embedding chain from the root down to the node,
// annotating each hop with how it was brought. Every validation error
// carries this rendering so callers can locate the offending
// declaration.
func (c *call) chain(idx int) string {
	var hops []string
	for i := idx; i >= 0; i = c.nodes[i].parent {
		hop := label(c.nodes[i].bp)
		if c.nodes[i].parent >= 0 {
			if c.nodes[i].implied {
				hop += " (implied)"
			} else {
				hop += " (embedded)"
			}
		}
		hops = append(hops, hop)
	}
	// hops were collected bottom-up; render root-first.
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	return strings.Join(hops, " > ")
}
