// Package assembly implements the model-assembly engine: one call takes
// a live system and a set of root blueprints, validates the whole forest
// of recipes they transitively bring against each other and against the
// system, resolves an application order that respects every requirement,
// and applies the recipes, firing triggers whose component combination
// has just become complete.
//
// A call runs in four phases over call-scoped state:
//
//  1. forest construction (pre-order, forest.go): wrap every root and
//     transitively brought blueprint into nodes, resolving implied
//     sub-recipes on demand and merging equal producers of the same
//     component.
//  2. checking (post-order, check.go): validate requirements (pulling
//     spare hook blueprints in as new roots when they fill a gap),
//     conflicts and isolated self-checks, recording each component's
//     still-pending requirements.
//  3. scheduling (schedule.go): linearize the checked components so that
//     every pending requirement precedes its requirer.
//  4. expansion (expand.go): apply each recipe exactly once, update the
//     system's bookkeeping and fire ready triggers.
//
// Phases 1-3 never touch the live system; any failure there leaves it
// bit-for-bit unchanged and is reported as a recoverable *AddError. A
// failure during phase 4 is escalated unwrapped as *FatalError: the
// system's consistency is no longer guaranteed and it must be discarded.
//
// The engine is single-threaded by design. The caller must not run two
// assembly calls against the same system concurrently; no locking is
// performed.
package assembly
