package fixpoint

import (
	"github.com/holiman/uint256"
)

// Unsigned 18-decimal fixed point over 256-bit integers. The rounding variants
// mirror the on-chain pool math exactly: results are floor or ceiling of the
// mathematical value, and every overflow path is an explicit error.

// One is 10^18, the unsigned fixed-point unit.
var One = uint256.NewInt(1e18)

var u256One = uint256.NewInt(1)

// Add returns a + b, failing on 256-bit overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

// Sub returns a - b, failing when b > a.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	if b.Gt(a) {
		return nil, ErrUnderflow
	}
	return new(uint256.Int).Sub(a, b), nil
}

// MulDown returns floor(a*b / 10^18).
func MulDown(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, One), nil
}

// MulUp returns ceil(a*b / 10^18).
func MulUp(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	if product.IsZero() {
		return product, nil
	}
	product.Sub(product, u256One)
	product.Div(product, One)
	return product.Add(product, u256One), nil
}

// DivDown returns floor(a * 10^18 / b).
func DivDown(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	if a.IsZero() {
		return new(uint256.Int), nil
	}
	inflated, overflow := new(uint256.Int).MulOverflow(a, One)
	if overflow {
		return nil, ErrDivInterval
	}
	return inflated.Div(inflated, b), nil
}

// DivUp returns ceil(a * 10^18 / b).
func DivUp(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	if a.IsZero() {
		return new(uint256.Int), nil
	}
	inflated, overflow := new(uint256.Int).MulOverflow(a, One)
	if overflow {
		return nil, ErrDivInterval
	}
	inflated.Sub(inflated, u256One)
	inflated.Div(inflated, b)
	return inflated.Add(inflated, u256One), nil
}

// Complement returns 10^18 - x, clamped to [0, 10^18].
func Complement(x *uint256.Int) *uint256.Int {
	if x.Lt(One) {
		return new(uint256.Int).Sub(One, x)
	}
	return new(uint256.Int)
}

// MulDivDown returns floor(a*b / d) with a 512-bit intermediate product. The
// result must still fit 256 bits.
func MulDivDown(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}

// MulDivUp returns ceil(a*b / d) with a 512-bit intermediate product.
func MulDivUp(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	remainder := new(uint256.Int).MulMod(a, b, d)
	if !remainder.IsZero() {
		sum, overflow := result.AddOverflow(result, u256One)
		if overflow {
			return nil, ErrOverflow
		}
		result = sum
	}
	return result, nil
}
