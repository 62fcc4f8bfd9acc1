package fixpoint

import "errors"

// Arithmetic failure kinds. Quote code matches these with errors.Is and treats
// them as candidate-local diagnostics rather than request failures.
var (
	ErrOverflow            = errors.New("fixpoint: overflow")
	ErrUnderflow           = errors.New("fixpoint: underflow")
	ErrDivisionByZero      = errors.New("fixpoint: division by zero")
	ErrDivInterval         = errors.New("fixpoint: division interval check failed")
	ErrSqrtConvergence     = errors.New("fixpoint: sqrt did not converge")
	ErrExponentOutOfBounds = errors.New("fixpoint: exponent out of bounds")
)
