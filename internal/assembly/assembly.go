package assembly

import (
	"context"
	"errors"

	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
	"github.com/specialistvlad/assemblygo/internal/system"
)

// call holds the ephemeral state of one Add invocation. Everything here
// is discarded when the call returns, success or failure; the live
// system is the only state that outlives it.
type call struct {
	sys  *system.System
	opts Options

	// nodes is the forest arena; roots indexes its root nodes in
	// processing order.
	nodes []node
	roots []int
	// brought maps each concrete component to the nodes planning to
	// produce it.
	brought map[*component.Type][]int
	// hooks is the consumable table of spare recipes.
	hooks []hookEntry
	// excluded components may not be introduced by any recipe in this
	// call.
	excluded map[*component.Type]struct{}
	// checked and checkedOrder form the ordered checked-index feeding
	// the scheduler.
	checked      map[*component.Type]*checkedEntry
	checkedOrder []*component.Type
	// triggers is the pruned, decrementing working copy of the trigger
	// registry.
	triggers []*pendingTrigger
}

// Add validates and applies the given root blueprints (and everything
// they transitively bring) to the system in one atomic-feeling
// operation, then returns the same system.
//
// On a recoverable validation failure the returned error is an
// *AddError wrapping the precise cause; the system is unchanged, except
// that a live-check failure during the expansion phase leaves it safely
// incomplete (recipes expanded before the failing one stay applied). On
// a fatal expansion-phase failure the error is an unwrapped *FatalError
// and the system must be discarded.
func Add(ctx context.Context, sys *system.System, opts Options, blueprints ...component.Blueprint) (*system.System, error) {
	logger := ctxlog.FromContext(ctx)
	c := &call{
		sys:      sys,
		opts:     opts,
		brought:  make(map[*component.Type][]int),
		excluded: make(map[*component.Type]struct{}),
		checked:  make(map[*component.Type]*checkedEntry),
	}
	for _, t := range opts.Without {
		c.excluded[t] = struct{}{}
	}

	if err := c.run(ctx, blueprints); err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) {
			logger.Error("Assembly failed during expansion; the system must be discarded.",
				"stage", fatal.Stage, "source", fatal.Source, "error", fatal.Err)
			return sys, err
		}
		logger.Debug("Assembly rejected; the system is unchanged or safely incomplete.", "error", err)
		return sys, &AddError{Cause: err}
	}
	return sys, nil
}

// AddCopy is the copy-then-add convenience: it clones the system, runs
// Add against the clone, and returns it, leaving the original untouched
// even on fatal failures.
func AddCopy(ctx context.Context, sys *system.System, opts Options, blueprints ...component.Blueprint) (*system.System, error) {
	return Add(ctx, sys.Clone(), opts, blueprints...)
}

// run executes the call's phases in order. All validation happens before
// the first mutation.
func (c *call) run(ctx context.Context, blueprints []component.Blueprint) error {
	logger := ctxlog.FromContext(ctx)

	if err := c.initHooks(); err != nil {
		return err
	}

	// Initial forest pass over the caller's roots, bundles flattened in
	// order first.
	for _, bp := range flatten(blueprints) {
		if err := c.buildRoot(ctx, bp); err != nil {
			return err
		}
	}
	logger.Debug("Initial forest pass complete.", "roots", len(c.roots), "nodes", len(c.nodes))

	if err := c.applyDefaults(ctx); err != nil {
		return err
	}

	if err := c.checkForest(ctx); err != nil {
		return err
	}
	logger.Debug("Forest checked.", "components", len(c.checkedOrder))

	c.initTriggers()
	order := c.schedule(ctx)
	return c.expand(ctx, order)
}

// initHooks builds the consumable hooks table, rejecting two hooks that
// provide the same component type.
func (c *call) initHooks() error {
	provided := make(map[*component.Type]struct{})
	for _, bp := range c.opts.Hooks {
		for _, t := range bp.Components() {
			if _, dup := provided[t]; dup {
				return &DuplicateHookError{Component: t}
			}
			provided[t] = struct{}{}
		}
		c.hooks = append(c.hooks, hookEntry{bp: bp})
	}
	return nil
}

// applyDefaults synthesizes default recipes after the initial forest
// pass. The status snapshot is taken once, from the caller-supplied
// DefaultsStatus function, and threaded into every builder together with
// the if-still-unbrought helper.
func (c *call) applyDefaults(ctx context.Context) error {
	if len(c.opts.Defaults) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	bringing := func(t *component.Type) bool {
		return c.sys.Has(t) || c.broughtSatisfies(t)
	}
	var status any
	if c.opts.DefaultsStatus != nil {
		status = c.opts.DefaultsStatus(bringing)
	}

	for _, d := range c.opts.Defaults {
		if _, excluded := c.excluded[d.Component]; excluded {
			continue
		}
		if bringing(d.Component) {
			continue
		}
		bp := d.Build(status, ifUnbrought)
		if bp == nil {
			continue
		}
		logger.Debug("Default recipe synthesized.", "component", d.Component.Name(), "recipe", label(bp))
		if err := c.buildRoot(ctx, bp); err != nil {
			return err
		}
	}
	return nil
}

// flatten expands bundle values into their members, in order, before
// processing. Bundles may nest.
func flatten(blueprints []component.Blueprint) []component.Blueprint {
	var out []component.Blueprint
	for _, bp := range blueprints {
		if bundle, ok := bp.(component.Bundle); ok {
			out = append(out, flatten(bundle)...)
			continue
		}
		out = append(out, bp)
	}
	return out
}
