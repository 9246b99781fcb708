// Package calcerr holds the error kinds shared by the calculators. Callers
// test for them with errors.Is; calculators wrap them with context.
package calcerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers unsupported enum values (shape, finish,
	// material, criterion, end type) and ambiguous or unsolvable inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUndefined marks a mathematically undefined result. Safety factors
	// never return it; they report infinite life instead.
	ErrUndefined = errors.New("undefined result")

	// ErrNoConvergence is returned when a bounded iterative solve runs out
	// of iterations.
	ErrNoConvergence = errors.New("no convergence")
)

// Invalid wraps ErrInvalidArgument with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
