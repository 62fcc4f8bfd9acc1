package poolmath

import "errors"

var (
	// ErrAmountExceedsBalance rejects swaps whose size breaches the reserve
	// or ratio guards of the reference math.
	ErrAmountExceedsBalance = errors.New("poolmath: amount exceeds balance")
	// ErrNotConverged reports a Newton iteration that failed to settle.
	ErrNotConverged = errors.New("poolmath: iteration did not converge")
	// ErrInvalidFee rejects fees at or above 100%.
	ErrInvalidFee = errors.New("poolmath: invalid fee")
)
