package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
)

// Constant-product (x*y=k) quoting with a rational fee taken on the input.

// ConstantProductOutGivenIn returns the output for an exact input.
func ConstantProductOutGivenIn(reserveIn, reserveOut, amountIn *uint256.Int, fee model.Rational) (*uint256.Int, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrAmountExceedsBalance
	}
	inAfterFee, err := SubtractFee(amountIn, fee)
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.Add(reserveIn, inAfterFee)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDivDown(reserveOut, inAfterFee, denominator)
}

// ConstantProductInGivenOut returns the input needed for an exact output.
func ConstantProductInGivenOut(reserveIn, reserveOut, amountOut *uint256.Int, fee model.Rational) (*uint256.Int, error) {
	if !amountOut.Lt(reserveOut) {
		return nil, ErrAmountExceedsBalance
	}
	remaining := new(uint256.Int).Sub(reserveOut, amountOut)
	inBeforeFee, err := fixpoint.MulDivUp(reserveIn, amountOut, remaining)
	if err != nil {
		return nil, err
	}
	return AddFee(inBeforeFee, fee)
}
