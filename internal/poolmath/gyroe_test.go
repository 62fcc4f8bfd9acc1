package poolmath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

// eclpTestDerived computes tau vectors and the derived parameters from the
// ellipse parameters, the way the off-chain parameter tooling does. High
// precision floats are fine here: the tests below assert behavioral bounds,
// not wei-exact values.
func eclpTestDerived(t *testing.T, p EclpParams) EclpDerived {
	t.Helper()
	const prec = 256
	oneNp := new(big.Float).SetPrec(prec).SetInt(big.NewInt(1e18))
	toReal := func(v *big.Int) *big.Float {
		f := new(big.Float).SetPrec(prec).SetInt(v)
		return f.Quo(f, oneNp)
	}

	c, s := toReal(p.C), toReal(p.S)
	lambda := toReal(p.Lambda)

	tau := func(price *big.Float) (*big.Float, *big.Float) {
		// tan(theta) = (c + price*s) / (lambda * (price*c - s))
		numerator := new(big.Float).SetPrec(prec).Mul(price, s)
		numerator.Add(numerator, c)
		denominator := new(big.Float).SetPrec(prec).Mul(price, c)
		denominator.Sub(denominator, s)
		denominator.Mul(denominator, lambda)
		tan := new(big.Float).SetPrec(prec).Quo(numerator, denominator)

		norm := new(big.Float).SetPrec(prec).Mul(tan, tan)
		norm.Add(norm, big.NewFloat(1).SetPrec(prec))
		norm.Sqrt(norm)
		x := new(big.Float).SetPrec(prec).Quo(tan, norm)
		y := new(big.Float).SetPrec(prec).Quo(big.NewFloat(1).SetPrec(prec), norm)
		return x, y
	}

	tauAlphaX, tauAlphaY := tau(toReal(p.Alpha))
	tauBetaX, tauBetaY := tau(toReal(p.Beta))

	// dSq is exact integer arithmetic: (c^2 + s^2) brought to 38 decimals.
	dSq := new(big.Int).Mul(p.C, p.C)
	dSq.Add(dSq, new(big.Int).Mul(p.S, p.S))
	dSq.Mul(dSq, big.NewInt(100))
	dSqF := new(big.Float).SetPrec(prec).SetInt(dSq)

	store := func(real *big.Float) *big.Int {
		scaled := new(big.Float).SetPrec(prec).Mul(real, dSqF)
		out, _ := scaled.Int(nil)
		return out
	}

	sc := new(big.Float).SetPrec(prec).Mul(s, c)
	cSq := new(big.Float).SetPrec(prec).Mul(c, c)
	sSq := new(big.Float).SetPrec(prec).Mul(s, s)

	u := new(big.Float).SetPrec(prec).Sub(tauBetaX, tauAlphaX)
	u.Mul(u, sc)
	v := new(big.Float).SetPrec(prec).Mul(sSq, tauBetaY)
	v.Add(v, new(big.Float).SetPrec(prec).Mul(cSq, tauAlphaY))
	w := new(big.Float).SetPrec(prec).Sub(tauBetaY, tauAlphaY)
	w.Mul(w, sc)
	z := new(big.Float).SetPrec(prec).Mul(cSq, tauBetaX)
	z.Add(z, new(big.Float).SetPrec(prec).Mul(sSq, tauAlphaX))

	return EclpDerived{
		TauAlpha: Vector2{X: store(tauAlphaX), Y: store(tauAlphaY)},
		TauBeta:  Vector2{X: store(tauBetaX), Y: store(tauBetaY)},
		U:        store(u),
		V:        store(v),
		W:        store(w),
		Z:        store(z),
		DSq:      dSq,
	}
}

func eclpTestParams() EclpParams {
	return EclpParams{
		Alpha:  big.NewInt(9e17),
		Beta:   big.NewInt(11e17),
		C:      big.NewInt(707106781186547524),
		S:      big.NewInt(707106781186547524),
		Lambda: big.NewInt(2e18),
	}
}

func TestEclpInvariant(t *testing.T) {
	p := eclpTestParams()
	d := eclpTestDerived(t, p)
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}

	invariant, errBound, err := EclpCalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	if invariant.Cmp(big.NewInt(1e18)) < 0 || invariant.Cmp(big.NewInt(2e18)) > 0 {
		t.Fatalf("invariant out of expected bracket: %s", invariant)
	}
	if errBound.Sign() <= 0 {
		t.Fatalf("error bound must be positive")
	}
}

func TestEclpSwapWithinPriceBounds(t *testing.T) {
	p := eclpTestParams()
	d := eclpTestDerived(t, p)
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}

	invariant, errBound, err := EclpCalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := EclpInvariantVector(invariant, errBound)

	amountIn := wad(1e17)
	out, err := EclpCalcOutGivenIn(balances, amountIn, true, p, d, r)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	// Selling token0 inside the price band [0.9, 1.1] near the middle.
	if !out.Gt(wad(88e15)) || !out.Lt(wad(11e16)) {
		t.Fatalf("output %s violates the price band for input %s", out, amountIn)
	}
}

func TestEclpRoundTrip(t *testing.T) {
	p := eclpTestParams()
	d := eclpTestDerived(t, p)
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}

	invariant, errBound, err := EclpCalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := EclpInvariantVector(invariant, errBound)

	amountIn := wad(1e17)
	out, err := EclpCalcOutGivenIn(balances, amountIn, true, p, d, r)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	back, err := EclpCalcInGivenOut(balances, out, true, p, d, r)
	if err != nil {
		t.Fatalf("in given out: %v", err)
	}

	lower := new(uint256.Int).Sub(amountIn, wad(1e11))
	upper := new(uint256.Int).Add(amountIn, wad(1e14))
	if back.Lt(lower) || back.Gt(upper) {
		t.Fatalf("round trip drifted: in %s back %s", amountIn, back)
	}
}

func TestEclpBalanceGuards(t *testing.T) {
	p := eclpTestParams()
	d := eclpTestDerived(t, p)
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}

	invariant, errBound, err := EclpCalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := EclpInvariantVector(invariant, errBound)

	if _, err := EclpCalcInGivenOut(balances, wad(2e18), true, p, d, r); !errors.Is(err, ErrAmountExceedsBalance) {
		t.Fatalf("expected balance guard, got %v", err)
	}

	huge := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(35))
	big0 := [2]*uint256.Int{huge, wad(1e18)}
	if _, _, err := EclpCalculateInvariantWithError(big0, p, d); !errors.Is(err, ErrEclpBalances) {
		t.Fatalf("expected max balance guard, got %v", err)
	}
}
