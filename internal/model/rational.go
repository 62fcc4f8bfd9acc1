package model

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrZeroDenominator rejects rationals with denominator zero.
var ErrZeroDenominator = errors.New("model: zero denominator")

// Rational is an unsigned fraction over 256-bit integers, used for swap fees
// and scaling factors as they arrive from the pool snapshot.
type Rational struct {
	Num *uint256.Int
	Den *uint256.Int
}

// NewRational validates and builds a rational.
func NewRational(num, den *uint256.Int) (Rational, error) {
	if den == nil || den.IsZero() {
		return Rational{}, ErrZeroDenominator
	}
	if num == nil {
		num = new(uint256.Int)
	}
	return Rational{Num: num, Den: den}, nil
}

// RationalFromUint64 builds num/den from machine words.
func RationalFromUint64(num, den uint64) (Rational, error) {
	return NewRational(uint256.NewInt(num), uint256.NewInt(den))
}

// IsZero reports a zero numerator.
func (r Rational) IsZero() bool {
	return r.Num == nil || r.Num.IsZero()
}

// AtLeastOne reports num >= den.
func (r Rational) AtLeastOne() bool {
	return !r.Num.Lt(r.Den)
}

// SignedRational is a fraction over signed 256-bit integers, used for the
// Gyro E-CLP and QuantAMM parameters that are genuinely signed.
type SignedRational struct {
	Num *big.Int
	Den *big.Int
}

// NewSignedRational validates and builds a signed rational.
func NewSignedRational(num, den *big.Int) (SignedRational, error) {
	if den == nil || den.Sign() == 0 {
		return SignedRational{}, ErrZeroDenominator
	}
	if num == nil {
		num = new(big.Int)
	}
	return SignedRational{Num: num, Den: den}, nil
}
