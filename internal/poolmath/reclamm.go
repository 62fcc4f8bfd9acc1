package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Readjusting concentrated liquidity AMM: a two-token constant-product curve
// whose virtual balances move over time, both to interpolate the price ratio
// toward a target and to chase the market price when the pool is off-center.

var secondsPerDay18 = new(uint256.Int).Mul(uint256.NewInt(86400), uint256.NewInt(1e18))

// ReClammCenteredness measures how close the pool is to its price-range
// center. It returns min(rho, 1/rho) for rho = (balA*virtB)/(balB*virtA),
// plus whether the pool sits above center (relatively rich in token A).
func ReClammCenteredness(balances, virtuals [2]*uint256.Int) (*uint256.Int, bool, error) {
	if balances[0].IsZero() {
		return new(uint256.Int), false, nil
	}
	if balances[1].IsZero() {
		return new(uint256.Int), true, nil
	}
	numerator, overflow := new(uint256.Int).MulOverflow(balances[0], virtuals[1])
	if overflow {
		return nil, false, fixpoint.ErrOverflow
	}
	denominator, overflow := new(uint256.Int).MulOverflow(balances[1], virtuals[0])
	if overflow {
		return nil, false, fixpoint.ErrOverflow
	}
	if numerator.Gt(denominator) {
		c, err := fixpoint.MulDivDown(denominator, fixpoint.One, numerator)
		return c, true, err
	}
	c, err := fixpoint.MulDivDown(numerator, fixpoint.One, denominator)
	return c, false, err
}

// ReClammFourthRootPriceRatio interpolates the fourth root of the price ratio
// geometrically between its start and end values over the update window.
func ReClammFourthRootPriceRatio(currentTime, startTime, endTime uint64, startValue, endValue *uint256.Int) (*uint256.Int, error) {
	if currentTime >= endTime || startTime >= endTime {
		return endValue.Clone(), nil
	}
	if currentTime <= startTime {
		return startValue.Clone(), nil
	}
	exponent, err := fixpoint.DivDown(
		uint256.NewInt(currentTime-startTime),
		uint256.NewInt(endTime-startTime),
	)
	if err != nil {
		return nil, err
	}
	// One of the operands may be the larger; Pow handles bases below one.
	base, err := fixpoint.DivDown(endValue, startValue)
	if err != nil {
		return nil, err
	}
	power, err := fixpoint.Pow(base, exponent)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDown(startValue, power)
}

// ReClammVirtualsForPriceRatio recomputes both virtual balances for a new
// fourth-root price ratio while preserving the pool's centeredness. The
// undervalued (scarcer) side gets the closed-form quadratic root; the other
// follows from the preserved ratio. A fully one-sided pool is left untouched.
func ReClammVirtualsForPriceRatio(fourthRootPriceRatio *uint256.Int, balances, virtuals [2]*uint256.Int) ([2]*uint256.Int, error) {
	centeredness, aboveCenter, err := ReClammCenteredness(balances, virtuals)
	if err != nil {
		return virtuals, err
	}
	if centeredness.IsZero() {
		return [2]*uint256.Int{virtuals[0].Clone(), virtuals[1].Clone()}, nil
	}

	under, over := 0, 1
	if aboveCenter {
		under, over = 1, 0
	}

	sqrtPriceRatio, err := fixpoint.MulDown(fourthRootPriceRatio, fourthRootPriceRatio)
	if err != nil {
		return virtuals, err
	}
	sqrtMinusOne, err := fixpoint.Sub(sqrtPriceRatio, fixpoint.One)
	if err != nil {
		return virtuals, err
	}
	if sqrtMinusOne.IsZero() {
		return virtuals, fixpoint.ErrDivisionByZero
	}

	onePlusC, err := fixpoint.Add(fixpoint.One, centeredness)
	if err != nil {
		return virtuals, err
	}
	discriminant, err := fixpoint.MulUp(onePlusC, onePlusC)
	if err != nil {
		return virtuals, err
	}
	crossTerm, err := fixpoint.MulUp(four18, centeredness)
	if err != nil {
		return virtuals, err
	}
	crossTerm, err = fixpoint.MulUp(crossTerm, sqrtMinusOne)
	if err != nil {
		return virtuals, err
	}
	discriminant, err = fixpoint.Add(discriminant, crossTerm)
	if err != nil {
		return virtuals, err
	}
	root, err := fixpoint.Sqrt(discriminant, sqrtTolerance)
	if err != nil {
		return virtuals, err
	}

	numerator, err := fixpoint.Add(onePlusC, root)
	if err != nil {
		return virtuals, err
	}
	denominator, err := fixpoint.MulDown(two18, centeredness)
	if err != nil {
		return virtuals, err
	}
	denominator, err = fixpoint.MulDown(denominator, sqrtMinusOne)
	if err != nil {
		return virtuals, err
	}
	ratio, err := fixpoint.DivDown(numerator, denominator)
	if err != nil {
		return virtuals, err
	}
	virtualUnder, err := fixpoint.MulDown(balances[under], ratio)
	if err != nil {
		return virtuals, err
	}

	// centeredness = (balUnder * virtOver) / (balOver * virtUnder)
	crossProduct, overflow := new(uint256.Int).MulOverflow(balances[over], virtualUnder)
	if overflow {
		return virtuals, fixpoint.ErrOverflow
	}
	scaledCross, err := fixpoint.MulDown(crossProduct, centeredness)
	if err != nil {
		return virtuals, err
	}
	virtualOver := scaledCross.Div(scaledCross, balances[under])

	var result [2]*uint256.Int
	result[under] = virtualUnder
	result[over] = virtualOver
	return result, nil
}

// ReClammVirtualsForTimeShift drifts the price range toward the market when
// the pool's centeredness is below margin. The overvalued side's virtual
// balance decays by dailyShiftBase per day elapsed, and the other side is
// re-solved so the price ratio stays fixed.
func ReClammVirtualsForTimeShift(
	balances, virtuals [2]*uint256.Int,
	sqrtPriceRatio, dailyShiftBase *uint256.Int,
	elapsedSeconds uint64,
) ([2]*uint256.Int, error) {
	if elapsedSeconds == 0 {
		return [2]*uint256.Int{virtuals[0].Clone(), virtuals[1].Clone()}, nil
	}
	_, aboveCenter, err := ReClammCenteredness(balances, virtuals)
	if err != nil {
		return virtuals, err
	}
	under, over := 0, 1
	if aboveCenter {
		under, over = 1, 0
	}

	elapsed18, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(elapsedSeconds), fixpoint.One)
	if overflow {
		return virtuals, fixpoint.ErrOverflow
	}
	exponent, err := fixpoint.DivDown(elapsed18, secondsPerDay18)
	if err != nil {
		return virtuals, err
	}
	decay, err := fixpoint.Pow(dailyShiftBase, exponent)
	if err != nil {
		return virtuals, err
	}
	virtualOver, err := fixpoint.MulDown(virtuals[over], decay)
	if err != nil {
		return virtuals, err
	}

	// virtUnder = balUnder * (balOver + virtOver) / ((sqrtPriceRatio-1)*virtOver - balOver)
	sqrtMinusOne, err := fixpoint.Sub(sqrtPriceRatio, fixpoint.One)
	if err != nil {
		return virtuals, err
	}
	scaledOver, err := fixpoint.MulDown(sqrtMinusOne, virtualOver)
	if err != nil {
		return virtuals, err
	}
	denominator, err := fixpoint.Sub(scaledOver, balances[over])
	if err != nil {
		return virtuals, err
	}
	if denominator.IsZero() {
		return virtuals, fixpoint.ErrDivisionByZero
	}
	numerator, err := fixpoint.Add(balances[over], virtualOver)
	if err != nil {
		return virtuals, err
	}
	virtualUnder, err := fixpoint.MulDivDown(balances[under], numerator, denominator)
	if err != nil {
		return virtuals, err
	}

	var result [2]*uint256.Int
	result[under] = virtualUnder
	result[over] = virtualOver
	return result, nil
}

// ReClammOutGivenIn swaps against the total (real plus virtual) balances with
// full-width intermediates.
func ReClammOutGivenIn(balances, virtuals [2]*uint256.Int, indexIn, indexOut int, amountIn *uint256.Int) (*uint256.Int, error) {
	totalIn, err := fixpoint.Add(balances[indexIn], virtuals[indexIn])
	if err != nil {
		return nil, err
	}
	totalOut, err := fixpoint.Add(balances[indexOut], virtuals[indexOut])
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.Add(totalIn, amountIn)
	if err != nil {
		return nil, err
	}
	amountOut, err := fixpoint.MulDivDown(totalOut, amountIn, denominator)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(balances[indexOut]) {
		return nil, ErrAmountExceedsBalance
	}
	return amountOut, nil
}

// ReClammInGivenOut is the exact-output counterpart of ReClammOutGivenIn.
func ReClammInGivenOut(balances, virtuals [2]*uint256.Int, indexIn, indexOut int, amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.Gt(balances[indexOut]) {
		return nil, ErrAmountExceedsBalance
	}
	totalIn, err := fixpoint.Add(balances[indexIn], virtuals[indexIn])
	if err != nil {
		return nil, err
	}
	totalOut, err := fixpoint.Add(balances[indexOut], virtuals[indexOut])
	if err != nil {
		return nil, err
	}
	remaining, err := fixpoint.Sub(totalOut, amountOut)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulDivUp(totalIn, amountOut, remaining)
}
