package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Weighted pool math on 18-decimal-scaled balances, matching the reference
// contract wei for wei. Fees and token scaling are applied by the caller.

// maxRatio bounds single-swap size to 30% of the traded reserve, as the
// reference does.
var maxRatio = uint256.NewInt(3e17)

// WeightedOutGivenIn computes the amount out for an exact fee-less input.
//
//	out = balanceOut * (1 - (balanceIn / (balanceIn + amountIn))^(weightIn / weightOut))
func WeightedOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *uint256.Int) (*uint256.Int, error) {
	maxIn, err := fixpoint.MulDown(balanceIn, maxRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Gt(maxIn) {
		return nil, ErrAmountExceedsBalance
	}

	denominator, err := fixpoint.Add(balanceIn, amountIn)
	if err != nil {
		return nil, err
	}
	base, err := fixpoint.DivUp(balanceIn, denominator)
	if err != nil {
		return nil, err
	}
	exponent, err := fixpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	power, err := fixpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDown(balanceOut, fixpoint.Complement(power))
}

// WeightedInGivenOut computes the fee-less input needed for an exact output.
//
//	in = balanceIn * ((balanceOut / (balanceOut - amountOut))^(weightOut / weightIn) - 1)
func WeightedInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *uint256.Int) (*uint256.Int, error) {
	maxOut, err := fixpoint.MulDown(balanceOut, maxRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(maxOut) {
		return nil, ErrAmountExceedsBalance
	}

	remaining, err := fixpoint.Sub(balanceOut, amountOut)
	if err != nil {
		return nil, err
	}
	base, err := fixpoint.DivUp(balanceOut, remaining)
	if err != nil {
		return nil, err
	}
	exponent, err := fixpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}
	power, err := fixpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	ratio, err := fixpoint.Sub(power, fixpoint.One)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulUp(balanceIn, ratio)
}
