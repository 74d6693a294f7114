package assembly

import (
	"context"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
)

// schedule linearizes the checked components so that every recorded
// pending requirement of a component precedes that component in the
// output order.
//
// The walk follows requirement redirections all the way down (with a
// visited guard breaking ties on cyclic requirement sets), so chains
// deeper than two links are ordered correctly as well. Determinism comes
// from the checked-index order, which follows forest order, which
// follows the caller's root order.
func (c *call) schedule(ctx context.Context) []*component.Type {
	logger := ctxlog.FromContext(ctx)
	order := make([]*component.Type, 0, len(c.checkedOrder))

	for _, start := range c.checkedOrder {
		for !c.checked[start].placed {
			pick := c.descend(start)
			c.checked[pick].placed = true
			order = append(order, pick)
		}
	}

	logger.Debug("Expansion order resolved.", "components", len(order))
	return order
}

// descend follows the pending-requirement chain from start to a
// component with no unplaced providers left, and returns it as the next
// component to place. Cyclic requirement sets terminate because each
// component is visited at most once per descent; the entry component
// then wins, matching the first-remaining-entry rule.
func (c *call) descend(start *component.Type) *component.Type {
	visited := map[*component.Type]struct{}{start: {}}
	cur := start
	for {
		next := c.unplacedProvider(cur, visited)
		if next == nil {
			return cur
		}
		visited[next] = struct{}{}
		cur = next
	}
}

// unplacedProvider returns a checked, not-yet-placed component
// satisfying one of cur's pending requirements, skipping components
// already visited in this descent. Requirements satisfied only by the
// live system have no provider here and impose no ordering.
func (c *call) unplacedProvider(cur *component.Type, visited map[*component.Type]struct{}) *component.Type {
	for _, req := range c.checked[cur].pending {
		for _, cand := range c.checkedOrder {
			if c.checked[cand].placed {
				continue
			}
			if _, seen := visited[cand]; seen {
				continue
			}
			if cand.Satisfies(req) {
				return cand
			}
		}
	}
	return nil
}
