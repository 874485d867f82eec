package mesh

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, matched against with errors.Is. Each wraps
// additional context through fmt.Errorf's %w where the call site has it.
var (
	// ErrInvalidArgument covers null/NaN coordinates, too many
	// constraints, an out-of-range refinement angle, or splitEdge
	// against an unknown edge.
	ErrInvalidArgument = errors.New("tinmesh: invalid argument")

	// ErrInvalidState covers mutation on a disposed or constraint-locked
	// mesh, remove on a locked mesh, or addConstraints called twice.
	ErrInvalidState = errors.New("tinmesh: invalid mesh state")

	// ErrNumericDegeneracy marks a point where the extended-precision
	// predicate still returned zero on a critical test. The core treats
	// zero as "do not flip" and keeps going; this error is only
	// surfaced as a diagnostic, never as an abort.
	ErrNumericDegeneracy = errors.New("tinmesh: numeric degeneracy")

	// ErrNotConverged is returned by Refine when the iteration cap is
	// reached before the quality threshold is met.
	ErrNotConverged = errors.New("tinmesh: refinement did not converge")

	// errImplementationFailure marks an internal invariant violation.
	// It is never returned to callers directly; Mesh locks itself and
	// wraps this into an ErrInvalidState so the caller knows to discard
	// the mesh rather than retry.
	errImplementationFailure = errors.New("tinmesh: internal invariant violated")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidState}, args...)...)
}

func implementationFailuref(format string, args ...any) error {
	return fmt.Errorf("%w: %w: "+format, append([]any{ErrInvalidState, errImplementationFailure}, args...)...)
}
