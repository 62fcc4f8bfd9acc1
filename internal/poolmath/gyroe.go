package poolmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Gyroscope E-CLP: liquidity on an ellipse, described by a rotation (c, s),
// a stretching factor lambda and the price bounds alpha, beta. The heavy
// lifting happens in 38-decimal extended precision; tau vectors and the
// derived parameters u, v, w, z, dSq arrive precomputed alongside the pool
// and carry an implicit 1/dSq normalization on every tau factor.

// ErrEclpBalances rejects balances or derived values outside the domain the
// extended-precision math is safe for.
var ErrEclpBalances = errors.New("poolmath: e-clp balance out of range")

// EclpParams are the 18-decimal ellipse parameters.
type EclpParams struct {
	Alpha  *big.Int
	Beta   *big.Int
	C      *big.Int
	S      *big.Int
	Lambda *big.Int
}

// Vector2 is a signed two-component vector.
type Vector2 struct {
	X *big.Int
	Y *big.Int
}

// EclpDerived are the 38-decimal derived parameters.
type EclpDerived struct {
	TauAlpha Vector2
	TauBeta  Vector2
	U        *big.Int
	V        *big.Int
	W        *big.Int
	Z        *big.Int
	DSq      *big.Int
}

// eclpMaxBalance bounds per-token balances to 10^34 so that every product in
// the swap path stays inside int256.
var eclpMaxBalance = new(big.Int).Exp(big.NewInt(10), big.NewInt(34), nil)

// chi returns the x and y components of A*chi in 38 decimals, each still
// carrying one 1/dSq normalization.
func eclpChi(p EclpParams, d EclpDerived) (x, y *big.Int, err error) {
	wOverLambda, err := fixpoint.DivDownMagU(d.W, p.Lambda)
	if err != nil {
		return nil, nil, err
	}
	x = new(big.Int).Add(d.Z, wOverLambda)
	y = new(big.Int).Add(fixpoint.MulDownMagU(d.U, p.Lambda), d.V)
	return x, y, nil
}

func eclpCalcAtAChi(x, y *big.Int, p EclpParams, d EclpDerived) (*big.Int, error) {
	chiX, chiY, err := eclpChi(p, d)
	if err != nil {
		return nil, err
	}
	termXp1, err := fixpoint.DivXpU(chiX, d.DSq)
	if err != nil {
		return nil, err
	}
	termXp2, err := fixpoint.DivXpU(chiY, d.DSq)
	if err != nil {
		return nil, err
	}

	// (A t)_x = (c x - s y) / lambda, (A t)_y = s x + c y
	rotated := new(big.Int).Sub(fixpoint.MulDownMagU(x, p.C), fixpoint.MulDownMagU(y, p.S))
	atX, err := fixpoint.DivDownMagU(rotated, p.Lambda)
	if err != nil {
		return nil, err
	}
	atY := new(big.Int).Add(fixpoint.MulDownMagU(x, p.S), fixpoint.MulDownMagU(y, p.C))

	val := fixpoint.MulDownXpToNpU(atX, termXp1)
	return val.Add(val, fixpoint.MulDownXpToNpU(atY, termXp2)), nil
}

func eclpCalcAChiAChiInXp(p EclpParams, d EclpDerived) (*big.Int, error) {
	chiX, chiY, err := eclpChi(p, d)
	if err != nil {
		return nil, err
	}
	sum := new(big.Int).Add(fixpoint.MulXpU(chiX, chiX), fixpoint.MulXpU(chiY, chiY))
	sum, err = fixpoint.DivXpU(sum, d.DSq)
	if err != nil {
		return nil, err
	}
	return fixpoint.DivXpU(sum, d.DSq)
}

func eclpCalcAtAt(x, y *big.Int, p EclpParams) (*big.Int, error) {
	rotated := new(big.Int).Sub(fixpoint.MulDownMagU(x, p.C), fixpoint.MulDownMagU(y, p.S))
	atX, err := fixpoint.DivDownMagU(rotated, p.Lambda)
	if err != nil {
		return nil, err
	}
	atY := new(big.Int).Add(fixpoint.MulDownMagU(x, p.S), fixpoint.MulDownMagU(y, p.C))
	return new(big.Int).Add(fixpoint.MulDownMagU(atX, atX), fixpoint.MulDownMagU(atY, atY)), nil
}

func bigSqrtDown(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, ErrEclpBalances
	}
	radicand, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fixpoint.ErrOverflow
	}
	root, err := fixpoint.Sqrt(radicand, uint256.NewInt(5))
	if err != nil {
		return nil, err
	}
	return root.ToBig(), nil
}

// EclpCalculateInvariantWithError computes the invariant r and a conservative
// error bound. Swaps consume the pair (r + 2*err, r) so that each virtual
// offset can pick the adverse side.
func EclpCalculateInvariantWithError(balances [2]*uint256.Int, p EclpParams, d EclpDerived) (*big.Int, *big.Int, error) {
	x := balances[0].ToBig()
	y := balances[1].ToBig()
	if x.Cmp(eclpMaxBalance) > 0 || y.Cmp(eclpMaxBalance) > 0 {
		return nil, nil, ErrEclpBalances
	}

	atAChi, err := eclpCalcAtAChi(x, y, p, d)
	if err != nil {
		return nil, nil, err
	}
	aChiAChi, err := eclpCalcAChiAChiInXp(p, d)
	if err != nil {
		return nil, nil, err
	}
	denomXp := new(big.Int).Sub(aChiAChi, fixpoint.SOneXp)
	if denomXp.Sign() <= 0 {
		return nil, nil, ErrEclpBalances
	}
	atAt, err := eclpCalcAtAt(x, y, p)
	if err != nil {
		return nil, nil, err
	}

	// r solves (|A chi|^2 - 1) r^2 - 2 (At . A chi) r + |A t|^2 = 0.
	radicand := fixpoint.MulDownMagU(atAChi, atAChi)
	radicand.Sub(radicand, fixpoint.MulDownXpToNpU(atAt, denomXp))
	sqrtPart, err := bigSqrtDown(radicand)
	if err != nil {
		return nil, nil, err
	}

	mulDenominator, err := fixpoint.DivXpU(fixpoint.SOneXp, denomXp)
	if err != nil {
		return nil, nil, err
	}
	invariant := fixpoint.MulDownXpToNpU(new(big.Int).Add(atAChi, sqrtPart), mulDenominator)
	if invariant.Sign() <= 0 {
		return nil, nil, ErrEclpBalances
	}

	errBound := new(big.Int).Div(invariant, eclpErrDivisor)
	errBound.Add(errBound, big.NewInt(2))
	return invariant, errBound, nil
}

var eclpErrDivisor = big.NewInt(1e15)

// EclpInvariantVector packages an invariant and its error bound the way the
// swap functions consume them.
func EclpInvariantVector(invariant, errBound *big.Int) Vector2 {
	over := new(big.Int).Lsh(errBound, 1)
	over.Add(over, invariant)
	return Vector2{X: over, Y: new(big.Int).Set(invariant)}
}

// eclpVirtualOffset0 is the x offset a: the ellipse center's x coordinate
// scaled by the invariant, rounded up.
func eclpVirtualOffset0(p EclpParams, d EclpDerived, r Vector2) (*big.Int, error) {
	termXp, err := fixpoint.DivXpU(d.TauBeta.X, d.DSq)
	if err != nil {
		return nil, err
	}
	var a *big.Int
	if d.TauBeta.X.Sign() > 0 {
		a = fixpoint.MulUpXpToNpU(fixpoint.MulUpMagU(fixpoint.MulUpMagU(r.X, p.Lambda), p.C), termXp)
	} else {
		a = fixpoint.MulUpXpToNpU(fixpoint.MulDownMagU(fixpoint.MulDownMagU(r.Y, p.Lambda), p.C), termXp)
	}
	tailXp, err := fixpoint.DivXpU(d.TauBeta.Y, d.DSq)
	if err != nil {
		return nil, err
	}
	return a.Add(a, fixpoint.MulUpXpToNpU(fixpoint.MulUpMagU(r.X, p.S), tailXp)), nil
}

// eclpVirtualOffset1 is the y offset b, rounded up.
func eclpVirtualOffset1(p EclpParams, d EclpDerived, r Vector2) (*big.Int, error) {
	termXp, err := fixpoint.DivXpU(d.TauAlpha.X, d.DSq)
	if err != nil {
		return nil, err
	}
	var b *big.Int
	if d.TauAlpha.X.Sign() < 0 {
		b = fixpoint.MulUpXpToNpU(
			fixpoint.MulUpMagU(fixpoint.MulUpMagU(r.X, p.Lambda), p.S),
			new(big.Int).Neg(termXp),
		)
	} else {
		b = fixpoint.MulUpXpToNpU(fixpoint.MulDownMagU(fixpoint.MulDownMagU(new(big.Int).Neg(r.Y), p.Lambda), p.S), termXp)
	}
	tailXp, err := fixpoint.DivXpU(d.TauAlpha.Y, d.DSq)
	if err != nil {
		return nil, err
	}
	return b.Add(b, fixpoint.MulUpXpToNpU(fixpoint.MulUpMagU(r.X, p.C), tailXp)), nil
}

// eclpSolveQuadraticSwap finds the new out-side coordinate on the ellipse for
// a given in-side coordinate x. ab holds the (in, out) virtual offsets; s and
// c are swapped by the caller when quoting in the y-to-x direction.
func eclpSolveQuadraticSwap(lambda, x, s, c *big.Int, r Vector2, ab Vector2, dSq *big.Int) (*big.Int, error) {
	// lamBar = 1 - 1/lambda^2, bracketed from both sides.
	inner, err := fixpoint.DivDownMagU(fixpoint.SOneXp, lambda)
	if err != nil {
		return nil, err
	}
	inner, err = fixpoint.DivDownMagU(inner, lambda)
	if err != nil {
		return nil, err
	}
	lamBarX := new(big.Int).Sub(fixpoint.SOneXp, inner)

	innerUp, err := fixpoint.DivUpMagU(fixpoint.SOneXp, lambda)
	if err != nil {
		return nil, err
	}
	innerUp, err = fixpoint.DivUpMagU(innerUp, lambda)
	if err != nil {
		return nil, err
	}
	lamBarY := new(big.Int).Sub(fixpoint.SOneXp, innerUp)

	xp := new(big.Int).Sub(x, ab.X)
	negXp := new(big.Int).Neg(xp)
	var qb *big.Int
	if xp.Sign() > 0 {
		termXp, err := fixpoint.DivXpU(lamBarY, dSq)
		if err != nil {
			return nil, err
		}
		qb = fixpoint.MulUpXpToNpU(fixpoint.MulDownMagU(fixpoint.MulDownMagU(negXp, s), c), termXp)
	} else {
		termXp, err := fixpoint.DivXpU(lamBarX, dSq)
		if err != nil {
			return nil, err
		}
		termXp.Add(termXp, bigOneWei)
		qb = fixpoint.MulUpXpToNpU(fixpoint.MulUpMagU(fixpoint.MulUpMagU(negXp, s), c), termXp)
	}

	// sTerm = 1 - lamBar s^2, smaller estimate in Y.
	sTermX, err := fixpoint.DivXpU(fixpoint.MulDownMagU(fixpoint.MulDownMagU(lamBarY, s), s), dSq)
	if err != nil {
		return nil, err
	}
	sTermX.Sub(fixpoint.SOneXp, sTermX)
	dSqPlusOne := new(big.Int).Add(dSq, bigOneWei)
	sTermY, err := fixpoint.DivXpU(fixpoint.MulUpMagU(fixpoint.MulUpMagU(lamBarX, s), s), dSqPlusOne)
	if err != nil {
		return nil, err
	}
	sTermY.Add(sTermY, bigOneWei)
	sTermY.Sub(fixpoint.SOneXp, sTermY)
	if sTermY.Sign() <= 0 {
		return nil, ErrEclpBalances
	}

	// qc = sqrt(r^2 sTerm - (x - a)^2 / lambda^2), radicand underestimated.
	xpSq := fixpoint.MulUpMagU(xp, xp)
	xpSq, err = fixpoint.DivUpMagU(xpSq, lambda)
	if err != nil {
		return nil, err
	}
	xpSq, err = fixpoint.DivUpMagU(xpSq, lambda)
	if err != nil {
		return nil, err
	}
	qc := fixpoint.MulDownXpToNpU(fixpoint.MulDownMagU(r.Y, r.Y), sTermY)
	qc.Sub(qc, xpSq)
	if qc.Sign() > 0 {
		if qc, err = bigSqrtDown(qc); err != nil {
			return nil, err
		}
	} else {
		qc = new(big.Int)
	}

	// y = (qb - qc) / sTerm + b, rounded up.
	diff := new(big.Int).Sub(qb, qc)
	var val *big.Int
	if diff.Sign() > 0 {
		invSTerm, err := fixpoint.DivXpU(fixpoint.SOneXp, sTermY)
		if err != nil {
			return nil, err
		}
		invSTerm.Add(invSTerm, bigOneWei)
		val = fixpoint.MulUpXpToNpU(diff, invSTerm)
	} else {
		invSTerm, err := fixpoint.DivXpU(fixpoint.SOneXp, sTermX)
		if err != nil {
			return nil, err
		}
		val = fixpoint.MulUpXpToNpU(diff, invSTerm)
	}
	return val.Add(val, ab.Y), nil
}

var bigOneWei = big.NewInt(1)

// eclpCalcYGivenX returns the y balance lying on the curve for a given x.
func eclpCalcYGivenX(x *big.Int, p EclpParams, d EclpDerived, r Vector2) (*big.Int, error) {
	a, err := eclpVirtualOffset0(p, d, r)
	if err != nil {
		return nil, err
	}
	b, err := eclpVirtualOffset1(p, d, r)
	if err != nil {
		return nil, err
	}
	return eclpSolveQuadraticSwap(p.Lambda, x, p.S, p.C, r, Vector2{X: a, Y: b}, d.DSq)
}

func eclpCalcXGivenY(y *big.Int, p EclpParams, d EclpDerived, r Vector2) (*big.Int, error) {
	a, err := eclpVirtualOffset0(p, d, r)
	if err != nil {
		return nil, err
	}
	b, err := eclpVirtualOffset1(p, d, r)
	if err != nil {
		return nil, err
	}
	// Same quadratic with the roles of x/y (and s/c) exchanged.
	return eclpSolveQuadraticSwap(p.Lambda, y, p.C, p.S, r, Vector2{X: b, Y: a}, d.DSq)
}

// EclpCalcOutGivenIn quotes an exact-input swap on scaled balances.
func EclpCalcOutGivenIn(balances [2]*uint256.Int, amountIn *uint256.Int, tokenInIsToken0 bool, p EclpParams, d EclpDerived, r Vector2) (*uint256.Int, error) {
	ixIn, ixOut := 0, 1
	calcGiven := eclpCalcYGivenX
	if !tokenInIsToken0 {
		ixIn, ixOut = 1, 0
		calcGiven = eclpCalcXGivenY
	}

	balInNew := new(big.Int).Add(balances[ixIn].ToBig(), amountIn.ToBig())
	if balInNew.Cmp(eclpMaxBalance) > 0 {
		return nil, ErrEclpBalances
	}
	balOutNew, err := calcGiven(balInNew, p, d, r)
	if err != nil {
		return nil, err
	}
	balOut := balances[ixOut].ToBig()
	if balOutNew.Cmp(balOut) > 0 || balOutNew.Sign() < 0 {
		return nil, ErrAmountExceedsBalance
	}
	out, overflow := uint256.FromBig(new(big.Int).Sub(balOut, balOutNew))
	if overflow {
		return nil, fixpoint.ErrOverflow
	}
	return out, nil
}

// EclpCalcInGivenOut quotes an exact-output swap on scaled balances.
func EclpCalcInGivenOut(balances [2]*uint256.Int, amountOut *uint256.Int, tokenOutIsToken1 bool, p EclpParams, d EclpDerived, r Vector2) (*uint256.Int, error) {
	ixIn, ixOut := 0, 1
	calcGiven := eclpCalcXGivenY
	if !tokenOutIsToken1 {
		ixIn, ixOut = 1, 0
		calcGiven = eclpCalcYGivenX
	}

	if amountOut.Gt(balances[ixOut]) {
		return nil, ErrAmountExceedsBalance
	}
	balOutNew := new(big.Int).Sub(balances[ixOut].ToBig(), amountOut.ToBig())
	balInNew, err := calcGiven(balOutNew, p, d, r)
	if err != nil {
		return nil, err
	}
	if balInNew.Cmp(eclpMaxBalance) > 0 {
		return nil, ErrEclpBalances
	}
	amountIn := new(big.Int).Sub(balInNew, balances[ixIn].ToBig())
	if amountIn.Sign() < 0 {
		return new(uint256.Int), nil
	}
	in, overflow := uint256.FromBig(amountIn)
	if overflow {
		return nil, fixpoint.ErrOverflow
	}
	return in, nil
}
