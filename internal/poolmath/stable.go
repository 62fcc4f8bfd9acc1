package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// StableSwap math on 18-decimal-scaled balances. The amplification parameter
// arrives pre-multiplied by the pool's own precision factor; both the factor
// and the precision are snapshot data, so neither is hardcoded here.

const maxStableIterations = 255

// Amplification carries the scaled amplification coefficient and the precision
// it was scaled by.
type Amplification struct {
	Factor    *uint256.Int
	Precision *uint256.Int
}

func mulChecked(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, fixpoint.ErrOverflow
	}
	return product, nil
}

// StableInvariant solves for D with Newton's iteration, rounding down and
// converging to within one wei.
func StableInvariant(amp Amplification, balances []*uint256.Int) (*uint256.Int, error) {
	sum := new(uint256.Int)
	for _, balance := range balances {
		next, err := fixpoint.Add(sum, balance)
		if err != nil {
			return nil, err
		}
		sum = next
	}
	if sum.IsZero() {
		return sum, nil
	}

	numTokens := uint256.NewInt(uint64(len(balances)))
	numTokensPlusOne := uint256.NewInt(uint64(len(balances)) + 1)
	ampTimesTotal, err := mulChecked(amp.Factor, numTokens)
	if err != nil {
		return nil, err
	}
	ampMinusPrecision := new(uint256.Int).Sub(ampTimesTotal, amp.Precision)

	invariant := sum.Clone()
	for i := 0; i < maxStableIterations; i++ {
		dP := new(uint256.Int).Mul(balances[0], numTokens)
		for _, balance := range balances[1:] {
			product, err := mulChecked(dP, balance)
			if err != nil {
				return nil, err
			}
			product, err = mulChecked(product, numTokens)
			if err != nil {
				return nil, err
			}
			dP = product.Div(product, invariant)
		}

		// numerator = n*D*D + ampTimesTotal*sum*dP / precision
		numerator, err := mulChecked(numTokens, invariant)
		if err != nil {
			return nil, err
		}
		numerator, err = mulChecked(numerator, invariant)
		if err != nil {
			return nil, err
		}
		ampSum, err := mulChecked(ampTimesTotal, sum)
		if err != nil {
			return nil, err
		}
		ampSumDP, err := fixpoint.MulDivDown(ampSum, dP, amp.Precision)
		if err != nil {
			return nil, err
		}
		numerator, err = fixpoint.Add(numerator, ampSumDP)
		if err != nil {
			return nil, err
		}

		// denominator = (n+1)*D + (ampTimesTotal - precision)*dP / precision
		denominator, err := mulChecked(numTokensPlusOne, invariant)
		if err != nil {
			return nil, err
		}
		ampDP, err := fixpoint.MulDivDown(ampMinusPrecision, dP, amp.Precision)
		if err != nil {
			return nil, err
		}
		denominator, err = fixpoint.Add(denominator, ampDP)
		if err != nil {
			return nil, err
		}

		prev := invariant
		invariant = numerator.Div(numerator, denominator)

		var diff uint256.Int
		if invariant.Gt(prev) {
			diff.Sub(invariant, prev)
		} else {
			diff.Sub(prev, invariant)
		}
		if !diff.Gt(u256OneWei) {
			return invariant, nil
		}
	}
	return nil, ErrNotConverged
}

var u256OneWei = uint256.NewInt(1)

// stableTokenBalance solves for balances[tokenIndex] given the invariant and
// every other balance, rounding up.
func stableTokenBalance(amp Amplification, balances []*uint256.Int, invariant *uint256.Int, tokenIndex int) (*uint256.Int, error) {
	numTokens := uint256.NewInt(uint64(len(balances)))
	ampTimesTotal, err := mulChecked(amp.Factor, numTokens)
	if err != nil {
		return nil, err
	}

	sum := balances[0].Clone()
	dP := new(uint256.Int).Mul(balances[0], numTokens)
	for _, balance := range balances[1:] {
		product, err := mulChecked(dP, balance)
		if err != nil {
			return nil, err
		}
		product, err = mulChecked(product, numTokens)
		if err != nil {
			return nil, err
		}
		dP = product.Div(product, invariant)
		sum, err = fixpoint.Add(sum, balance)
		if err != nil {
			return nil, err
		}
	}
	sum.Sub(sum, balances[tokenIndex])

	invariantSquared, err := mulChecked(invariant, invariant)
	if err != nil {
		return nil, err
	}

	// c = ceil(D^2 / (ampTimesTotal * dP)) * precision * balances[tokenIndex]
	ampDP, err := mulChecked(ampTimesTotal, dP)
	if err != nil {
		return nil, err
	}
	c, err := divUpRaw(invariantSquared, ampDP)
	if err != nil {
		return nil, err
	}
	c, err = mulChecked(c, amp.Precision)
	if err != nil {
		return nil, err
	}
	c, err = mulChecked(c, balances[tokenIndex])
	if err != nil {
		return nil, err
	}

	// b = sum + floor(D / ampTimesTotal) * precision
	b := new(uint256.Int).Div(invariant, ampTimesTotal)
	b, err = mulChecked(b, amp.Precision)
	if err != nil {
		return nil, err
	}
	b, err = fixpoint.Add(b, sum)
	if err != nil {
		return nil, err
	}

	// y = ceil((D^2 + c) / (D + b)), then Newton on y = (y^2 + c) / (2y + b - D)
	numerator, err := fixpoint.Add(invariantSquared, c)
	if err != nil {
		return nil, err
	}
	denominator, err := fixpoint.Add(invariant, b)
	if err != nil {
		return nil, err
	}
	tokenBalance, err := divUpRaw(numerator, denominator)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxStableIterations; i++ {
		numerator, err := mulChecked(tokenBalance, tokenBalance)
		if err != nil {
			return nil, err
		}
		numerator, err = fixpoint.Add(numerator, c)
		if err != nil {
			return nil, err
		}
		denominator := new(uint256.Int).Lsh(tokenBalance, 1)
		denominator, err = fixpoint.Add(denominator, b)
		if err != nil {
			return nil, err
		}
		denominator, err = fixpoint.Sub(denominator, invariant)
		if err != nil {
			return nil, err
		}

		prev := tokenBalance
		tokenBalance, err = divUpRaw(numerator, denominator)
		if err != nil {
			return nil, err
		}

		var diff uint256.Int
		if tokenBalance.Gt(prev) {
			diff.Sub(tokenBalance, prev)
		} else {
			diff.Sub(prev, tokenBalance)
		}
		if !diff.Gt(u256OneWei) {
			return tokenBalance, nil
		}
	}
	return nil, ErrNotConverged
}

func divUpRaw(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, fixpoint.ErrDivisionByZero
	}
	if a.IsZero() {
		return new(uint256.Int), nil
	}
	result := new(uint256.Int).Sub(a, u256OneWei)
	result.Div(result, b)
	return result.Add(result, u256OneWei), nil
}

// StableOutGivenIn computes the fee-less output for an exact input.
func StableOutGivenIn(amp Amplification, balances []*uint256.Int, indexIn, indexOut int, amountIn *uint256.Int) (*uint256.Int, error) {
	invariant, err := StableInvariant(amp, balances)
	if err != nil {
		return nil, err
	}

	updated := cloneBalances(balances)
	updated[indexIn], err = fixpoint.Add(updated[indexIn], amountIn)
	if err != nil {
		return nil, err
	}

	finalBalanceOut, err := stableTokenBalance(amp, updated, invariant, indexOut)
	if err != nil {
		return nil, err
	}
	if finalBalanceOut.Gt(balances[indexOut]) {
		return nil, ErrAmountExceedsBalance
	}
	out := new(uint256.Int).Sub(balances[indexOut], finalBalanceOut)
	if out.IsZero() {
		return out, nil
	}
	return out.Sub(out, u256OneWei), nil
}

// StableInGivenOut computes the fee-less input for an exact output.
func StableInGivenOut(amp Amplification, balances []*uint256.Int, indexIn, indexOut int, amountOut *uint256.Int) (*uint256.Int, error) {
	if amountOut.Gt(balances[indexOut]) {
		return nil, ErrAmountExceedsBalance
	}
	invariant, err := StableInvariant(amp, balances)
	if err != nil {
		return nil, err
	}

	updated := cloneBalances(balances)
	updated[indexOut] = new(uint256.Int).Sub(updated[indexOut], amountOut)

	finalBalanceIn, err := stableTokenBalance(amp, updated, invariant, indexIn)
	if err != nil {
		return nil, err
	}
	if finalBalanceIn.Lt(balances[indexIn]) {
		return new(uint256.Int), nil
	}
	in := new(uint256.Int).Sub(finalBalanceIn, balances[indexIn])
	return in.Add(in, u256OneWei), nil
}

func cloneBalances(balances []*uint256.Int) []*uint256.Int {
	out := make([]*uint256.Int, len(balances))
	for i, b := range balances {
		out[i] = b.Clone()
	}
	return out
}
