package assembly

import (
	"context"
	"strings"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
)

// expand applies the scheduled components in order, each recipe exactly
// once, mutating the live system and its bookkeeping, and fires every
// trigger whose combination becomes complete along the way.
//
// This is the only phase touching the system. A live-check failure
// before a node's own mutation is still recoverable (the system is
// safely incomplete); an error from a recipe's expansion routine or from
// a trigger callback is escalated as *FatalError without wrapping.
func (c *call) expand(ctx context.Context, order []*component.Type) error {
	logger := ctxlog.FromContext(ctx)

	for _, t := range order {
		entry := c.checked[t]
		n := &c.nodes[entry.node]
		if n.expanded {
			// A multi-component recipe is applied once; its remaining
			// components were added together with the first.
			continue
		}

		if err := checkPhase("live", c.chain(entry.node), func() error { return n.bp.CheckLive(ctx, c.sys) }); err != nil {
			return err
		}

		logger.Debug("Expanding recipe.", "recipe", label(n.bp))
		if err := n.bp.Expand(ctx, c.sys); err != nil {
			return &FatalError{Stage: "expansion", Source: c.chain(entry.node), Err: err}
		}
		n.expanded = true

		added := n.bp.Components()
		for _, ct := range added {
			c.sys.AddComponent(ct)
		}
		if err := c.fireTriggers(ctx, added); err != nil {
			return err
		}
	}
	return nil
}

// initTriggers derives the call-local trigger working table from the
// registry snapshot, pruned of combinations the system already fully
// satisfies (those never fire).
func (c *call) initTriggers() {
	if c.opts.Triggers == nil {
		return
	}
	for _, entry := range c.opts.Triggers.Entries() {
		unmet := make(map[*component.Type]struct{})
		for _, m := range entry.Combination {
			if !c.sys.Has(m) {
				unmet[m] = struct{}{}
			}
		}
		if len(unmet) == 0 {
			continue
		}
		c.triggers = append(c.triggers, &pendingTrigger{
			unmet:       unmet,
			callbacks:   entry.Callbacks,
			combination: entry.Combination,
		})
	}
}

// fireTriggers removes the just-added components from every pending
// combination's unmet subset and runs the callbacks of combinations that
// just became complete, dropping them from the table afterwards.
func (c *call) fireTriggers(ctx context.Context, added []*component.Type) error {
	logger := ctxlog.FromContext(ctx)

	remaining := c.triggers[:0]
	for _, pt := range c.triggers {
		for m := range pt.unmet {
			for _, a := range added {
				if a.Satisfies(m) {
					delete(pt.unmet, m)
					break
				}
			}
		}
		if len(pt.unmet) > 0 {
			remaining = append(remaining, pt)
			continue
		}
		logger.Debug("Trigger combination complete, firing callbacks.", "combination", comboString(pt.combination))
		for _, cb := range pt.callbacks {
			if err := cb(ctx, c.sys); err != nil {
				return &FatalError{Stage: "trigger", Source: comboString(pt.combination), Err: err}
			}
		}
	}
	c.triggers = remaining
	return nil
}

func comboString(combo []*component.Type) string {
	names := make([]string, len(combo))
	for i, t := range combo {
		names[i] = t.Name()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
