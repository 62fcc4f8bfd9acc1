package poolmath

import (
	"errors"

	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Gyroscope 3-CLP: a three-asset constant-product curve with a symmetric
// price bound alpha, parameterized by cbrt(alpha). The invariant L is the
// largest real root of the cubic
//
//	a*L^3 - mb*L^2 - mc*L - md = 0
//
// solved by Newton descent from a starting point above the root.

var (
	three18 = uint256.NewInt(3e18)
	half18  = uint256.NewInt(15e17)
)

// Gyro3CubicTerms assembles the cubic coefficients from the balances.
func Gyro3CubicTerms(balances [3]*uint256.Int, root3Alpha *uint256.Int) (a, mb, mc, md *uint256.Int, err error) {
	alpha23, err := fixpoint.MulDown(root3Alpha, root3Alpha)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	alphaFull, err := fixpoint.MulDown(alpha23, root3Alpha)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	a = fixpoint.Complement(alphaFull)
	if a.IsZero() {
		return nil, nil, nil, nil, fixpoint.ErrDivisionByZero
	}

	sum := new(uint256.Int)
	for _, balance := range balances {
		if sum, err = fixpoint.Add(sum, balance); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if mb, err = fixpoint.MulDown(sum, alpha23); err != nil {
		return nil, nil, nil, nil, err
	}

	pairSum := new(uint256.Int)
	for i := 0; i < 3; i++ {
		product, err := fixpoint.MulDown(balances[i], balances[(i+1)%3])
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if pairSum, err = fixpoint.Add(pairSum, product); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if mc, err = fixpoint.MulDown(pairSum, root3Alpha); err != nil {
		return nil, nil, nil, nil, err
	}

	if md, err = fixpoint.MulDown(balances[0], balances[1]); err != nil {
		return nil, nil, nil, nil, err
	}
	if md, err = fixpoint.MulDown(md, balances[2]); err != nil {
		return nil, nil, nil, nil, err
	}
	return a, mb, mc, md, nil
}

// Gyro3Invariant solves the cubic for L.
func Gyro3Invariant(balances [3]*uint256.Int, root3Alpha *uint256.Int) (*uint256.Int, error) {
	a, mb, mc, md, err := Gyro3CubicTerms(balances, root3Alpha)
	if err != nil {
		return nil, err
	}
	if md.IsZero() && mc.IsZero() && mb.IsZero() {
		return new(uint256.Int), nil
	}

	l, err := gyro3StartingPoint(a, mb, mc)
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxStableIterations; i++ {
		f, crossed, err := gyro3CubicValue(a, mb, mc, md, l)
		if err != nil {
			return nil, err
		}
		if crossed {
			// Descended past the root; the previous iterate is within one
			// Newton step of it, which is inside tolerance here.
			return l, nil
		}
		df, err := gyro3CubicSlope(a, mb, mc, l)
		if err != nil {
			return nil, err
		}
		delta, err := fixpoint.DivDown(f, df)
		if err != nil {
			return nil, err
		}
		if delta.IsZero() {
			return l, nil
		}
		l = new(uint256.Int).Sub(l, delta)
		if l.IsZero() {
			return nil, ErrNotConverged
		}
	}
	return nil, ErrNotConverged
}

// gyro3StartingPoint returns 1.5 times the local minimum of the cubic, which
// always sits above the largest root.
func gyro3StartingPoint(a, mb, mc *uint256.Int) (*uint256.Int, error) {
	mbSq, err := fixpoint.MulUp(mb, mb)
	if err != nil {
		return nil, err
	}
	amc, err := fixpoint.MulUp(a, mc)
	if err != nil {
		return nil, err
	}
	amc3, err := fixpoint.MulUp(amc, three18)
	if err != nil {
		return nil, err
	}
	radic, err := fixpoint.Add(mbSq, amc3)
	if err != nil {
		return nil, err
	}
	root, err := fixpoint.Sqrt(radic, sqrtTolerance)
	if err != nil {
		return nil, err
	}
	numerator, err := fixpoint.Add(mb, root)
	if err != nil {
		return nil, err
	}
	threeA, err := fixpoint.MulDown(a, three18)
	if err != nil {
		return nil, err
	}
	lmin, err := fixpoint.DivUp(numerator, threeA)
	if err != nil {
		return nil, err
	}
	return fixpoint.MulUp(lmin, half18)
}

// gyro3CubicValue evaluates the cubic at l. crossed reports a negative value,
// meaning the iteration has stepped below the root.
func gyro3CubicValue(a, mb, mc, md, l *uint256.Int) (*uint256.Int, bool, error) {
	lSq, err := fixpoint.MulDown(l, l)
	if err != nil {
		return nil, false, err
	}
	lCube, err := fixpoint.MulDown(lSq, l)
	if err != nil {
		return nil, false, err
	}
	positive, err := fixpoint.MulDown(a, lCube)
	if err != nil {
		return nil, false, err
	}

	negative, err := fixpoint.MulDown(mb, lSq)
	if err != nil {
		return nil, false, err
	}
	mcl, err := fixpoint.MulDown(mc, l)
	if err != nil {
		return nil, false, err
	}
	if negative, err = fixpoint.Add(negative, mcl); err != nil {
		return nil, false, err
	}
	if negative, err = fixpoint.Add(negative, md); err != nil {
		return nil, false, err
	}

	f, err := fixpoint.Sub(positive, negative)
	if errors.Is(err, fixpoint.ErrUnderflow) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return f, false, nil
}

func gyro3CubicSlope(a, mb, mc, l *uint256.Int) (*uint256.Int, error) {
	lSq, err := fixpoint.MulDown(l, l)
	if err != nil {
		return nil, err
	}
	threeA, err := fixpoint.MulDown(a, three18)
	if err != nil {
		return nil, err
	}
	term, err := fixpoint.MulDown(threeA, lSq)
	if err != nil {
		return nil, err
	}

	twoMb, err := fixpoint.MulDown(mb, two18)
	if err != nil {
		return nil, err
	}
	mbl, err := fixpoint.MulDown(twoMb, l)
	if err != nil {
		return nil, err
	}
	sub, err := fixpoint.Add(mbl, mc)
	if err != nil {
		return nil, err
	}
	return fixpoint.Sub(term, sub)
}

// Gyro3VirtualOffset is the shared virtual reserve offset L*cbrt(alpha).
func Gyro3VirtualOffset(invariant, root3Alpha *uint256.Int) (*uint256.Int, error) {
	return fixpoint.MulDown(invariant, root3Alpha)
}
