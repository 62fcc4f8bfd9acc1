package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Gyroscope 2-CLP: a constant-product curve restricted to the price interval
// [alpha, beta] through virtual reserve offsets derived from the invariant.
// All values are 18-decimal scaled; the pool stores sqrt(alpha) and
// sqrt(beta).

var (
	two18         = uint256.NewInt(2e18)
	four18        = uint256.NewInt(4e18)
	sqrtTolerance = uint256.NewInt(5)
	onePlusTwoWei = uint256.NewInt(1e18 + 2)
	oneMinusWei   = uint256.NewInt(1e18 - 1)
)

// Gyro2Invariant computes the invariant L as the positive root of
// a*L^2 - mb*L - mc = 0 with a = 1 - sqrtAlpha/sqrtBeta,
// mb = y/sqrtBeta + x*sqrtAlpha, mc = x*y.
func Gyro2Invariant(balances [2]*uint256.Int, sqrtAlpha, sqrtBeta *uint256.Int) (*uint256.Int, error) {
	ratio, err := fixpoint.DivDown(sqrtAlpha, sqrtBeta)
	if err != nil {
		return nil, err
	}
	a := fixpoint.Complement(ratio)
	if a.IsZero() {
		return nil, fixpoint.ErrDivisionByZero
	}

	term0, err := fixpoint.DivDown(balances[1], sqrtBeta)
	if err != nil {
		return nil, err
	}
	term1, err := fixpoint.MulDown(balances[0], sqrtAlpha)
	if err != nil {
		return nil, err
	}
	mb, err := fixpoint.Add(term0, term1)
	if err != nil {
		return nil, err
	}
	mc, err := fixpoint.MulDown(balances[0], balances[1])
	if err != nil {
		return nil, err
	}

	// b^2 expanded in three terms to limit precision loss.
	xSq, err := fixpoint.MulDown(balances[0], balances[0])
	if err != nil {
		return nil, err
	}
	bSquare, err := fixpoint.MulDown(xSq, sqrtAlpha)
	if err != nil {
		return nil, err
	}
	bSquare, err = fixpoint.MulDown(bSquare, sqrtAlpha)
	if err != nil {
		return nil, err
	}

	bSq2, err := fixpoint.MulDown(mc, two18)
	if err != nil {
		return nil, err
	}
	bSq2, err = fixpoint.MulDown(bSq2, sqrtAlpha)
	if err != nil {
		return nil, err
	}
	bSq2, err = fixpoint.DivDown(bSq2, sqrtBeta)
	if err != nil {
		return nil, err
	}

	ySq, err := fixpoint.MulDown(balances[1], balances[1])
	if err != nil {
		return nil, err
	}
	betaSq, err := fixpoint.MulUp(sqrtBeta, sqrtBeta)
	if err != nil {
		return nil, err
	}
	bSq3, err := fixpoint.DivDown(ySq, betaSq)
	if err != nil {
		return nil, err
	}

	bSquare, err = fixpoint.Add(bSquare, bSq2)
	if err != nil {
		return nil, err
	}
	bSquare, err = fixpoint.Add(bSquare, bSq3)
	if err != nil {
		return nil, err
	}

	addTerm, err := fixpoint.MulDown(mc, four18)
	if err != nil {
		return nil, err
	}
	addTerm, err = fixpoint.MulDown(addTerm, a)
	if err != nil {
		return nil, err
	}
	radicand, err := fixpoint.Add(bSquare, addTerm)
	if err != nil {
		return nil, err
	}

	sqrtResult, err := fixpoint.Sqrt(radicand, sqrtTolerance)
	if err != nil {
		return nil, err
	}

	numerator, err := fixpoint.Add(mb, sqrtResult)
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.MulUp(a, two18)
	if err != nil {
		return nil, err
	}
	return fixpoint.DivDown(numerator, denominator)
}

// Gyro2VirtualOffsets derives the virtual reserve offsets for token0 and
// token1 from the invariant, rounding both down.
func Gyro2VirtualOffsets(invariant, sqrtAlpha, sqrtBeta *uint256.Int) (offset0, offset1 *uint256.Int, err error) {
	offset0, err = fixpoint.DivDown(invariant, sqrtBeta)
	if err != nil {
		return nil, nil, err
	}
	offset1, err = fixpoint.MulDown(invariant, sqrtAlpha)
	if err != nil {
		return nil, nil, err
	}
	return offset0, offset1, nil
}

// virtualReserves applies the reference safety margins: the in-side virtual
// reserve is nudged up, the out-side down, making every quote adverse.
func virtualReserves(balanceIn, balanceOut, virtualIn, virtualOut *uint256.Int) (virtInOver, virtOutUnder *uint256.Int, err error) {
	padIn, err := fixpoint.MulUp(virtualIn, onePlusTwoWei)
	if err != nil {
		return nil, nil, err
	}
	virtInOver, err = fixpoint.Add(balanceIn, padIn)
	if err != nil {
		return nil, nil, err
	}
	padOut, err := fixpoint.MulDown(virtualOut, oneMinusWei)
	if err != nil {
		return nil, nil, err
	}
	virtOutUnder, err = fixpoint.Add(balanceOut, padOut)
	if err != nil {
		return nil, nil, err
	}
	return virtInOver, virtOutUnder, nil
}

// VirtualOutGivenIn runs the constant-product formula over virtual reserves.
// Shared by the 2-CLP and 3-CLP swap paths.
func VirtualOutGivenIn(balanceIn, balanceOut, virtualIn, virtualOut, amountIn *uint256.Int) (*uint256.Int, error) {
	virtInOver, virtOutUnder, err := virtualReserves(balanceIn, balanceOut, virtualIn, virtualOut)
	if err != nil {
		return nil, err
	}
	numerator, err := fixpoint.MulDown(virtOutUnder, amountIn)
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.Add(virtInOver, amountIn)
	if err != nil {
		return nil, err
	}
	amountOut, err := fixpoint.DivDown(numerator, denominator)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(balanceOut) {
		return nil, ErrAmountExceedsBalance
	}
	return amountOut, nil
}

// VirtualInGivenOut is the exact-output counterpart of VirtualOutGivenIn.
func VirtualInGivenOut(balanceIn, balanceOut, virtualIn, virtualOut, amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.Gt(balanceOut) {
		return nil, ErrAmountExceedsBalance
	}
	virtInOver, virtOutUnder, err := virtualReserves(balanceIn, balanceOut, virtualIn, virtualOut)
	if err != nil {
		return nil, err
	}
	numerator, err := fixpoint.MulUp(virtInOver, amountOut)
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.Sub(virtOutUnder, amountOut)
	if err != nil {
		return nil, err
	}
	return fixpoint.DivUp(numerator, denominator)
}
