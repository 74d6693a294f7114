package component

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// System is the view of the live object a blueprint is given during
// checks and expansion. The concrete implementation lives in the system
// package; blueprints must not assume more than this contract.
type System interface {
	// Has reports whether the component is present: directly for a
	// concrete type, or through any satisfying descendant for an
	// abstract one.
	Has(t *Type) bool
	// Payload returns the data a previously expanded component stored.
	Payload(t *Type) (cty.Value, bool)
	// SetPayload stores a component's data on the live object.
	SetPayload(t *Type, v cty.Value)
}

// Blueprint is a user-supplied recipe that, when expanded, adds one or
// more concrete components to a live system. Identity is by value: two
// blueprints bringing the same component are merged when Equal, rejected
// as inconsistent otherwise.
type Blueprint interface {
	// Components returns the concrete types this blueprint expands into.
	// The set is fixed at construction time.
	Components() []*Type

	// Brings returns the sub-recipes this blueprint carries, in the
	// order they should be processed.
	Brings() []Brought

	// Requirements returns blueprint-level requirements, on top of the
	// ones declared on the target types themselves.
	Requirements() []Requirement

	// CheckIsolated validates the blueprint's own data, without looking
	// at the live system. Domain failures are reported with Checkf.
	CheckIsolated(ctx context.Context) error

	// CheckLive validates the blueprint against the live system just
	// before expansion. It may observe components expanded earlier in
	// the same call.
	CheckLive(ctx context.Context, sys System) error

	// Expand mutates the live system to add the blueprint's components.
	// An error here is non-recoverable: the system must be discarded.
	Expand(ctx context.Context, sys System) error

	// Equal reports value equality with another blueprint.
	Equal(other Blueprint) bool

	// Clone returns a private copy for the engine to work on, so callers
	// holding the original never observe partial mutation.
	Clone() Blueprint
}

// Brought is one sub-recipe reported by a blueprint. Exactly one field is
// set: Embedded carries a literal, authoritative blueprint; Implied names
// a component to auto-construct only if nothing else brings it.
type Brought struct {
	Embedded Blueprint
	Implied  *Type
}

// Embed wraps a literal sub-blueprint.
func Embed(bp Blueprint) Brought { return Brought{Embedded: bp} }

// Imply brings a component by type only.
func Imply(t *Type) Brought { return Brought{Implied: t} }

// CheckError is the error type blueprints use to report domain-level
// check failures. The engine treats it as a recoverable diagnostic with a
// user-authored message; any other error from a check is surfaced as an
// unexpected failure, which signals a bug in the blueprint.
type CheckError struct {
	Message string
}

// Error implements the error interface.
func (e *CheckError) Error() string { return e.Message }

// Checkf builds a CheckError from a format string.
func Checkf(format string, args ...any) error {
	return &CheckError{Message: fmt.Sprintf(format, args...)}
}
