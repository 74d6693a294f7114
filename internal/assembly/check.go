package assembly

import (
	"context"
	"errors"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
)

// checkedEntry records a validated component: the node producing it and
// the subset of its requirements not yet present on the live system.
// Requirements satisfied by other recipes in the forest stay in the
// pending set on purpose: they are handled by ordering, not by direct
// presence.
type checkedEntry struct {
	node    int
	pending []*component.Type
	placed  bool
}

// checkForest validates every node exactly once, post-order. The outer
// loop treats the forest's root list as a growing worklist: hook
// injection appends new roots mid-pass, and those must be checked too.
func (c *call) checkForest(ctx context.Context) error {
	for i := 0; i < len(c.roots); i++ {
		if err := c.checkNode(ctx, c.roots[i]); err != nil {
			return err
		}
	}
	return nil
}

// checkNode validates one node after all its children.
func (c *call) checkNode(ctx context.Context, idx int) error {
	for _, child := range c.nodes[idx].children {
		if err := c.checkNode(ctx, child); err != nil {
			return err
		}
	}

	logger := ctxlog.FromContext(ctx)
	bp := c.nodes[idx].bp
	logger.Debug("Checking recipe.", "recipe", label(bp))

	pending, err := c.resolveRequirements(ctx, idx)
	if err != nil {
		return err
	}
	if err := c.checkConflicts(idx); err != nil {
		return err
	}
	if err := checkPhase("isolated", c.chain(idx), func() error { return bp.CheckIsolated(ctx) }); err != nil {
		return err
	}

	for _, t := range bp.Components() {
		if _, done := c.checked[t]; done {
			// A merged equal producer was checked earlier; the component
			// keeps its first record and is applied exactly once.
			continue
		}
		c.checked[t] = &checkedEntry{node: idx, pending: pending}
		c.checkedOrder = append(c.checkedOrder, t)
	}
	return nil
}

// resolveRequirements collects the union of per-component hard
// requirements and blueprint-level extras, resolving each against the
// live system, the forest, and finally the hooks table. It returns the
// requirement targets not already present on the system.
func (c *call) resolveRequirements(ctx context.Context, idx int) ([]*component.Type, error) {
	bp := c.nodes[idx].bp

	type tagged struct {
		req      component.Requirement
		requirer *component.Type // nil for blueprint-level requirements
	}
	var reqs []tagged
	for _, t := range bp.Components() {
		for _, r := range t.Requirements() {
			reqs = append(reqs, tagged{req: r, requirer: t})
		}
	}
	for _, r := range bp.Requirements() {
		reqs = append(reqs, tagged{req: r})
	}

	var pending []*component.Type
	seen := make(map[*component.Type]struct{})
	for _, tr := range reqs {
		target := tr.req.Target
		if c.sys.Has(target) {
			continue
		}
		if !c.broughtSatisfies(target) {
			if err := c.pullHook(ctx, target); err != nil {
				var missing *hookMiss
				if errors.As(err, &missing) {
					return nil, &MissingRequirementError{
						Required: target,
						Requirer: tr.requirer,
						Chain:    c.chain(idx),
						Reason:   tr.req.Reason,
					}
				}
				return nil, err
			}
		}
		if _, dup := seen[target]; !dup {
			seen[target] = struct{}{}
			pending = append(pending, target)
		}
	}
	return pending, nil
}

// hookMiss is an internal sentinel: no hook provides the target.
type hookMiss struct{ target *component.Type }

func (e *hookMiss) Error() string { return "no hook for component " + e.target.Name() }

// pullHook searches the hooks table for a provider of the target (by
// subtype match), consumes it, and runs the forest builder on it as a
// new root. The appended root is picked up by checkForest's growing
// worklist.
func (c *call) pullHook(ctx context.Context, target *component.Type) error {
	logger := ctxlog.FromContext(ctx)
	for i := range c.hooks {
		h := &c.hooks[i]
		if h.taken {
			continue
		}
		if !c.providesTarget(h.bp, target) {
			continue
		}
		h.taken = true
		logger.Debug("Hook consumed to fill missing requirement.", "required", target.Name(), "hook", label(h.bp))
		return c.buildRoot(ctx, h.bp)
	}
	return &hookMiss{target: target}
}

// providesTarget reports whether a hook blueprint brings a component
// satisfying the (possibly abstract) target. Hooks targeting an excluded
// component are never offered, so an excluded requirement surfaces as
// missing rather than as an exclusion violation.
func (c *call) providesTarget(bp component.Blueprint, target *component.Type) bool {
	provides := false
	for _, t := range bp.Components() {
		if _, excluded := c.excluded[t]; excluded {
			return false
		}
		if t.Satisfies(target) {
			provides = true
		}
	}
	return provides
}

// checkConflicts validates every component the node targets against the
// system's current components and against every already-checked node in
// this call. Conflict declarations match symmetrically, possibly through
// an abstract ancestor on either side.
func (c *call) checkConflicts(idx int) error {
	bp := c.nodes[idx].bp
	for _, t := range bp.Components() {
		for _, present := range c.sys.Components() {
			if declarer, declared, ok := component.Conflicting(t, present); ok {
				return &ConflictError{
					Component: t,
					Other:     present,
					Declarer:  declarer,
					Declared:  declared,
					Chain:     c.chain(idx),
				}
			}
		}
		for _, other := range c.checkedOrder {
			if other == t {
				continue
			}
			if declarer, declared, ok := component.Conflicting(t, other); ok {
				return &ConflictError{
					Component:  t,
					Other:      other,
					Declarer:   declarer,
					Declared:   declared,
					Chain:      c.chain(idx),
					OtherChain: c.chain(c.checked[other].node),
				}
			}
		}
	}
	return nil
}

// checkPhase runs one blueprint check and classifies its failure: a
// domain-raised CheckError becomes a recoverable diagnostic with the
// user's message, anything else is surfaced as an unexpected failure.
func checkPhase(phase, chain string, check func() error) error {
	err := check()
	if err == nil {
		return nil
	}
	var ce *component.CheckError
	if errors.As(err, &ce) {
		return &BlueprintCheckError{Phase: phase, Chain: chain, Message: ce.Message}
	}
	return &UnexpectedCheckError{Phase: phase, Chain: chain, Err: err}
}
