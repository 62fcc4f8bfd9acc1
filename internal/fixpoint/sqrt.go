package fixpoint

import (
	"github.com/holiman/uint256"
)

// Newton square root on 18-decimal fixed point, ported from the Gyroscope pool
// math. The iteration count and initial-guess selection are part of the
// compatibility surface and must not change.

var sqrtGuessTable = []struct {
	bound *uint256.Int
	guess *uint256.Int
}{
	{uint256.NewInt(10), uint256.NewInt(3162277660)},
	{uint256.NewInt(1e2), uint256.NewInt(1e10)},
	{uint256.NewInt(1e4), uint256.NewInt(1e11)},
	{uint256.NewInt(1e6), uint256.NewInt(1e12)},
	{uint256.NewInt(1e8), uint256.NewInt(1e13)},
	{uint256.NewInt(1e10), uint256.NewInt(1e14)},
	{uint256.NewInt(1e12), uint256.NewInt(1e15)},
	{uint256.NewInt(1e14), uint256.NewInt(1e16)},
	{uint256.NewInt(1e16), uint256.NewInt(1e17)},
}

// Sqrt computes the square root of an 18-decimal value with exactly 7 Newton
// iterations, then verifies the result against the caller tolerance (in units
// of 10^18 relative to the guess).
func Sqrt(input, tolerance *uint256.Int) (*uint256.Int, error) {
	if input.IsZero() {
		return new(uint256.Int), nil
	}

	guess := makeInitialGuess(input)

	for i := 0; i < 7; i++ {
		inflated, overflow := new(uint256.Int).MulOverflow(input, One)
		if overflow {
			return nil, ErrOverflow
		}
		inflated.Div(inflated, guess)
		guess.Add(guess, inflated)
		guess.Rsh(guess, 1)
	}

	guessSquared, err := MulDown(guess, guess)
	if err != nil {
		return nil, err
	}
	slack, err := MulUp(guess, tolerance)
	if err != nil {
		return nil, err
	}

	upper, overflow := new(uint256.Int).AddOverflow(input, slack)
	if overflow {
		return nil, ErrOverflow
	}
	lower := new(uint256.Int)
	if slack.Lt(input) {
		lower.Sub(input, slack)
	}
	if guessSquared.Gt(upper) || guessSquared.Lt(lower) {
		return nil, ErrSqrtConvergence
	}

	return guess, nil
}

func makeInitialGuess(input *uint256.Int) *uint256.Int {
	if !input.Lt(One) {
		scaled := new(uint256.Int).Div(input, One)
		guess := new(uint256.Int).Lsh(u256One, intLog2Halved(scaled))
		guess, overflow := guess.MulOverflow(guess, One)
		if overflow {
			// Cannot happen for radicands the pool math produces; fall back to
			// the largest representable power-of-two guess.
			guess = new(uint256.Int).Lsh(u256One, 255)
		}
		return guess
	}
	for _, entry := range sqrtGuessTable {
		if !input.Gt(entry.bound) {
			return entry.guess.Clone()
		}
	}
	return One.Clone()
}

func intLog2Halved(x *uint256.Int) uint {
	var n uint
	v := x.Clone()
	for _, step := range []struct {
		bits uint
		add  uint
	}{{128, 64}, {64, 32}, {32, 16}, {16, 8}, {8, 4}, {4, 2}, {2, 1}} {
		if v.BitLen() > int(step.bits) {
			v.Rsh(v, step.bits)
			n += step.add
		}
	}
	return n
}
