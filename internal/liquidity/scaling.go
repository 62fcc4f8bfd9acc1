package liquidity

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
)

// Token amounts enter the pool math normalized to 18 decimals: first the
// rational scaling factor (the token's decimal deficit), then the rate.
// Rounding follows the adverse direction chosen by the caller.

func upscaleDown(amount *uint256.Int, sf model.Rational, rate *uint256.Int) (*uint256.Int, error) {
	scaled, err := fixpoint.MulDivDown(amount, sf.Num, sf.Den)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDown(scaled, rate)
}

func upscaleUp(amount *uint256.Int, sf model.Rational, rate *uint256.Int) (*uint256.Int, error) {
	scaled, err := fixpoint.MulDivUp(amount, sf.Num, sf.Den)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulUp(scaled, rate)
}

func downscaleDown(amount *uint256.Int, sf model.Rational, rate *uint256.Int) (*uint256.Int, error) {
	unrated, err := fixpoint.DivDown(amount, rate)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDivDown(unrated, sf.Den, sf.Num)
}

func downscaleUp(amount *uint256.Int, sf model.Rational, rate *uint256.Int) (*uint256.Int, error) {
	unrated, err := fixpoint.DivUp(amount, rate)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDivUp(unrated, sf.Den, sf.Num)
}
