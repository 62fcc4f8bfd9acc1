package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
)

// Swap fees are rationals straight from the snapshot. Fee rounding is adverse
// to the user: the charged fee is rounded up on both directions.

// SubtractFee removes the swap fee from an input amount before it enters the
// pool math.
func SubtractFee(amount *uint256.Int, fee model.Rational) (*uint256.Int, error) {
	if fee.IsZero() {
		return amount.Clone(), nil
	}
	if fee.AtLeastOne() {
		return nil, ErrInvalidFee
	}
	feeAmount, err := fixpoint.MulDivUp(amount, fee.Num, fee.Den)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Sub(amount, feeAmount), nil
}

// AddFee grosses up a computed input amount so that the pool's fee comes out
// of what the user pays: result = ceil(amount * den / (den - num)).
func AddFee(amount *uint256.Int, fee model.Rational) (*uint256.Int, error) {
	if fee.IsZero() {
		return amount.Clone(), nil
	}
	if fee.AtLeastOne() {
		return nil, ErrInvalidFee
	}
	keep := new(uint256.Int).Sub(fee.Den, fee.Num)
	return fixpoint.MulDivUp(amount, fee.Den, keep)
}

// FeeToWad converts a rational fee to 18-decimal fixed point, rounded up.
func FeeToWad(fee model.Rational) (*uint256.Int, error) {
	return fixpoint.MulDivUp(fee.Num, fixpoint.One, fee.Den)
}
