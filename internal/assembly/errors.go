package assembly

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/assemblygo/internal/component"
)

// AddError is the uniform wrapper for every recoverable validation
// failure raised by Add. The original cause is preserved so callers can
// match on the concrete cause type with errors.As without knowing the
// engine's internal structure. When an AddError is returned, the live
// system is either unchanged (the failure preceded any expansion) or
// safely incomplete: recipes expanded earlier in the call are fully
// applied with their bookkeeping, and the failing recipe touched
// nothing. It is never left mid-mutation; that case is *FatalError.
type AddError struct {
	Cause error
}

// Error implements the error interface.
func (e *AddError) Error() string {
	return fmt.Sprintf("cannot assemble components: %v", e.Cause)
}

// Unwrap exposes the original cause.
func (e *AddError) Unwrap() error { return e.Cause }

// FatalError reports a failure during the expansion phase: a recipe's
// mutation step or a trigger callback raised after the system had
// already been partially mutated. It is never wrapped in AddError; the
// system's consistency is no longer guaranteed and it must be discarded.
type FatalError struct {
	// Stage is "expansion" or "trigger".
	Stage string
	// Source names the offending recipe chain or trigger combination.
	Source string
	Err    error
}

// Error implements the error interface with an explicit warning so the
// failure cannot be mistaken for a recoverable validation error.
func (e *FatalError) Error() string {
	return fmt.Sprintf(
		"FATAL: %s failed for %s: %v -- the system is left in an inconsistent state and must be discarded",
		e.Stage, e.Source, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *FatalError) Unwrap() error { return e.Err }

// AlreadyPresentError reports an embedded recipe targeting a component
// the live system already has.
type AlreadyPresentError struct {
	Component *component.Type
	Chain     string
}

func (e *AlreadyPresentError) Error() string {
	return fmt.Sprintf("component %s (brought by %s) is already present on the system", e.Component, e.Chain)
}

// ExcludedError reports a recipe targeting a component the caller
// forbade with Without.
type ExcludedError struct {
	Component *component.Type
	Chain     string
}

func (e *ExcludedError) Error() string {
	return fmt.Sprintf("component %s (brought by %s) was explicitly excluded from this call", e.Component, e.Chain)
}

// InconsistencyError reports two recipes in the same call claiming the
// same component with unequal blueprint values.
type InconsistencyError struct {
	Component  *component.Type
	Chain      string
	OtherChain string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("component %s is brought by two inconsistent recipes: %s and %s",
		e.Component, e.OtherChain, e.Chain)
}

// ImpliedConstructionError reports a failure to auto-construct a recipe
// for an implied component.
type ImpliedConstructionError struct {
	Component *component.Type
	Chain     string
	Err       error
}

func (e *ImpliedConstructionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("component %s (implied by %s) has no implied constructor", e.Component, e.Chain)
	}
	return fmt.Sprintf("cannot construct implied recipe for component %s (implied by %s): %v", e.Component, e.Chain, e.Err)
}

func (e *ImpliedConstructionError) Unwrap() error { return e.Err }

// MissingRequirementError reports a requirement that neither the system,
// nor any recipe in the call, nor any hook could satisfy.
type MissingRequirementError struct {
	Required *component.Type
	// Requirer is the component declaring the requirement, or nil when
	// the requirement is carried by the blueprint itself.
	Requirer *component.Type
	Chain    string
	Reason   string
}

func (e *MissingRequirementError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing required component %s", e.Required)
	if e.Requirer != nil {
		fmt.Fprintf(&b, " for component %s", e.Requirer)
	}
	fmt.Fprintf(&b, " (required by %s)", e.Chain)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// ConflictError reports a newly brought component that is mutually
// exclusive with one already present on the system or brought by another
// recipe in the same call.
type ConflictError struct {
	// Component is the concrete component being brought.
	Component *component.Type
	// Other is the concrete component on the opposing side.
	Other *component.Type
	// Declarer is the side carrying the conflict declaration, and
	// Declared its (possibly abstract) declared target.
	Declarer *component.Type
	Declared *component.Type
	Chain    string
	// OtherChain names the opposing recipe's chain, empty when the
	// conflict is with a component already present on the system.
	OtherChain string
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "component %s (brought by %s) conflicts with component %s", e.Component, e.Chain, e.Other)
	if e.OtherChain != "" {
		fmt.Fprintf(&b, " (brought by %s)", e.OtherChain)
	} else {
		fmt.Fprintf(&b, " already present on the system")
	}
	if e.Declared != e.Other && e.Declared != e.Component {
		fmt.Fprintf(&b, " (%s declares a conflict with %s)", e.Declarer, e.Declared)
	}
	return b.String()
}

// BlueprintCheckError reports a domain-authored check failure from a
// recipe's isolated or live self-check.
type BlueprintCheckError struct {
	// Phase is "isolated" or "live".
	Phase   string
	Chain   string
	Message string
}

func (e *BlueprintCheckError) Error() string {
	return fmt.Sprintf("%s check failed for %s: %s", e.Phase, e.Chain, e.Message)
}

// UnexpectedCheckError reports a recipe check that failed with anything
// other than a component.CheckError. This signals a bug in the blueprint
// implementation rather than invalid user data.
type UnexpectedCheckError struct {
	Phase string
	Chain string
	Err   error
}

func (e *UnexpectedCheckError) Error() string {
	return fmt.Sprintf("%s check failed unexpectedly for %s (this is a bug in the blueprint): %v", e.Phase, e.Chain, e.Err)
}

func (e *UnexpectedCheckError) Unwrap() error { return e.Err }

// DuplicateHookError reports two hooks offered for the same component
// type in one call.
type DuplicateHookError struct {
	Component *component.Type
}

func (e *DuplicateHookError) Error() string {
	return fmt.Sprintf("two hooks offered for component %s in the same call", e.Component)
}
