package fixpoint

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Port of the reference log-exp fixed-point exponentiation. The natural log is
// decomposed over a table of powers of e at 20-decimal precision, multiplied by
// the exponent, and fed back through exp; values of x close to one take a
// 36-decimal log path. Every constant and division below is part of the
// bit-exact compatibility surface.

var (
	sOne20 = newBigInt("100000000000000000000")
	sOne36 = newBigInt("1000000000000000000000000000000000000")

	maxNaturalExponent = newBigInt("130000000000000000000")
	minNaturalExponent = newBigInt("-41000000000000000000")

	ln36LowerBound = new(big.Int).Sub(SOne, newBigInt("100000000000000000"))
	ln36UpperBound = new(big.Int).Add(SOne, newBigInt("100000000000000000"))

	// 2^254 / 10^20, the bound on mild exponents.
	mildExponentBound = new(big.Int).Quo(new(big.Int).Lsh(bigOne, 254), sOne20)

	// x_n = 2^(7-n), a_n = e^(x_n), both at 20 decimals except the first two.
	expX0  = newBigInt("128000000000000000000")
	expA0  = newBigInt("38877084059945950922200000000000000000000000000000000000")
	expX1  = newBigInt("64000000000000000000")
	expA1  = newBigInt("6235149080811616882910000000")
	expX2  = newBigInt("3200000000000000000000")
	expA2  = newBigInt("7896296018268069516100000000000000")
	expX3  = newBigInt("1600000000000000000000")
	expA3  = newBigInt("888611052050787263676000000")
	expX4  = newBigInt("800000000000000000000")
	expA4  = newBigInt("298095798704172827474000")
	expX5  = newBigInt("400000000000000000000")
	expA5  = newBigInt("5459815003314423907810")
	expX6  = newBigInt("200000000000000000000")
	expA6  = newBigInt("738905609893065022723")
	expX7  = newBigInt("100000000000000000000")
	expA7  = newBigInt("271828182845904523536")
	expX8  = newBigInt("50000000000000000000")
	expA8  = newBigInt("164872127070012814685")
	expX9  = newBigInt("25000000000000000000")
	expA9  = newBigInt("128402541668774148407")
	expX10 = newBigInt("12500000000000000000")
	expA10 = newBigInt("113314845306682631683")
	expX11 = newBigInt("6250000000000000000")
	expA11 = newBigInt("106449445891785942956")

	maxPowRelativeError = uint256.NewInt(10000)
)

// Pow computes x^y on 18-decimal fixed point via exp(y * ln(x)), matching the
// reference contract bit for bit. It carries the raw log-exp error; use
// PowDown or PowUp for a guaranteed rounding direction.
func Pow(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		// x^0 = 1, including 0^0.
		return One.Clone(), nil
	}
	if x.IsZero() {
		return new(uint256.Int), nil
	}

	if x.BitLen() >= 256 {
		return nil, ErrExponentOutOfBounds
	}
	xInt := x.ToBig()
	yInt := y.ToBig()
	if yInt.Cmp(mildExponentBound) >= 0 {
		return nil, ErrExponentOutOfBounds
	}

	var logXTimesY *big.Int
	if xInt.Cmp(ln36LowerBound) > 0 && xInt.Cmp(ln36UpperBound) < 0 {
		ln36X := ln36(xInt)
		quotient := new(big.Int).Quo(ln36X, SOne)
		remainder := new(big.Int).Rem(ln36X, SOne)
		logXTimesY = quotient.Mul(quotient, yInt)
		remainder.Mul(remainder, yInt)
		remainder.Quo(remainder, SOne)
		logXTimesY.Add(logXTimesY, remainder)
	} else {
		logXTimesY = new(big.Int).Mul(ln(xInt), yInt)
	}
	logXTimesY.Quo(logXTimesY, SOne)

	if logXTimesY.Cmp(minNaturalExponent) < 0 || logXTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrExponentOutOfBounds
	}

	result, overflow := uint256.FromBig(exp(logXTimesY))
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}

// PowDown returns x^y rounded toward zero by subtracting the maximum relative
// log-exp error from the raw result.
func PowDown(x, y *uint256.Int) (*uint256.Int, error) {
	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return nil, err
	}
	maxError.Add(maxError, u256One)
	if raw.Lt(maxError) {
		return new(uint256.Int), nil
	}
	return raw.Sub(raw, maxError), nil
}

// PowUp returns x^y rounded away from zero by adding the maximum relative
// log-exp error to the raw result.
func PowUp(x, y *uint256.Int) (*uint256.Int, error) {
	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return nil, err
	}
	maxError.Add(maxError, u256One)
	sum, overflow := raw.AddOverflow(raw, maxError)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

// exp computes e^x for x within the natural exponent bounds.
func exp(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		// e^-x = 1 / e^x; the inversion at 18 decimals loses no more precision
		// than the reference.
		denom := exp(new(big.Int).Neg(x))
		numer := new(big.Int).Mul(SOne, SOne)
		return numer.Quo(numer, denom)
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	if x.Cmp(expX0) >= 0 {
		x.Sub(x, expX0)
		firstAN = expA0
	} else if x.Cmp(expX1) >= 0 {
		x.Sub(x, expX1)
		firstAN = expA1
	}

	// Shift to 20-decimal precision for the product and series.
	x.Mul(x, big.NewInt(100))

	product := new(big.Int).Set(sOne20)
	for _, entry := range []struct{ x, a *big.Int }{
		{expX2, expA2}, {expX3, expA3}, {expX4, expA4}, {expX5, expA5},
		{expX6, expA6}, {expX7, expA7}, {expX8, expA8}, {expX9, expA9},
	} {
		if x.Cmp(entry.x) >= 0 {
			x.Sub(x, entry.x)
			product.Mul(product, entry.a)
			product.Quo(product, sOne20)
		}
	}

	seriesSum := new(big.Int).Set(sOne20)
	term := new(big.Int).Set(x)
	seriesSum.Add(seriesSum, term)
	for i := int64(2); i <= 12; i++ {
		term.Mul(term, x)
		term.Quo(term, sOne20)
		term.Quo(term, big.NewInt(i))
		seriesSum.Add(seriesSum, term)
	}

	result := new(big.Int).Mul(product, seriesSum)
	result.Quo(result, sOne20)
	result.Mul(result, firstAN)
	return result.Quo(result, big.NewInt(100))
}

// ln computes the natural log of a positive 18-decimal value.
func ln(a *big.Int) *big.Int {
	if a.Cmp(SOne) < 0 {
		// ln(a) = -ln(1/a) for a < 1.
		inverted := new(big.Int).Mul(SOne, SOne)
		inverted.Quo(inverted, a)
		return new(big.Int).Neg(ln(inverted))
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)
	if threshold := new(big.Int).Mul(expA0, SOne); a.Cmp(threshold) >= 0 {
		a.Quo(a, expA0)
		sum.Add(sum, expX0)
	}
	if threshold := new(big.Int).Mul(expA1, SOne); a.Cmp(threshold) >= 0 {
		a.Quo(a, expA1)
		sum.Add(sum, expX1)
	}

	sum.Mul(sum, big.NewInt(100))
	a.Mul(a, big.NewInt(100))

	for _, entry := range []struct{ x, a *big.Int }{
		{expX2, expA2}, {expX3, expA3}, {expX4, expA4}, {expX5, expA5},
		{expX6, expA6}, {expX7, expA7}, {expX8, expA8}, {expX9, expA9},
		{expX10, expA10}, {expX11, expA11},
	} {
		if a.Cmp(entry.a) >= 0 {
			a.Mul(a, sOne20)
			a.Quo(a, entry.a)
			sum.Add(sum, entry.x)
		}
	}

	// atanh series on z = (a-1)/(a+1) at 20 decimals, 6 odd terms.
	z := new(big.Int).Sub(a, sOne20)
	z.Mul(z, sOne20)
	z.Quo(z, new(big.Int).Add(a, sOne20))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, sOne20)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for i := int64(3); i <= 11; i += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, sOne20)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(i)))
	}
	seriesSum.Mul(seriesSum, big.NewInt(2))

	sum.Add(sum, seriesSum)
	return sum.Quo(sum, big.NewInt(100))
}

// ln36 computes the natural log at 36-decimal precision for x close to one.
func ln36(x *big.Int) *big.Int {
	x = new(big.Int).Mul(x, SOne)

	z := new(big.Int).Sub(x, sOne36)
	z.Mul(z, sOne36)
	z.Quo(z, new(big.Int).Add(x, sOne36))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, sOne36)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for i := int64(3); i <= 15; i += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, sOne36)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(i)))
	}
	return seriesSum.Mul(seriesSum, big.NewInt(2))
}
