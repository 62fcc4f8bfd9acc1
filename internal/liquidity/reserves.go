package liquidity

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
)

// TokenReserve is one per-token entry of a pool: the raw on-chain balance,
// the decimal scaling factor and an optional 18-decimal rate from a rate
// provider. A nil rate means one.
type TokenReserve struct {
	Token         common.Address
	Balance       *uint256.Int
	ScalingFactor model.Rational
	Rate          *uint256.Int
}

// Reserves is a pool's token set, sorted by address.
type Reserves []TokenReserve

// NewReserves validates token uniqueness and scaling factors and sorts the
// entries by token address.
func NewReserves(entries []TokenReserve) (Reserves, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 tokens, have %d", ErrInvalidReserves, len(entries))
	}
	out := make(Reserves, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].Balance == nil {
			out[i].Balance = new(uint256.Int)
		}
		if out[i].ScalingFactor.Num == nil || out[i].ScalingFactor.Num.IsZero() ||
			out[i].ScalingFactor.Den == nil || out[i].ScalingFactor.Den.IsZero() {
			return nil, fmt.Errorf("%w: token %s", ErrZeroScalingFactor, out[i].Token.Hex())
		}
		if out[i].Rate == nil {
			out[i].Rate = fixpoint.One.Clone()
		} else if out[i].Rate.IsZero() {
			return nil, fmt.Errorf("%w: zero rate for token %s", ErrInvalidReserves, out[i].Token.Hex())
		}
	}

	// Insertion sort keeps construction allocation-free; reserve sets are
	// tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && bytes.Compare(out[j].Token.Bytes(), out[j-1].Token.Bytes()) < 0; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	for i := 1; i < len(out); i++ {
		if out[i].Token == out[i-1].Token {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, out[i].Token.Hex())
		}
	}
	return out, nil
}

// Index returns the position of token, or -1.
func (r Reserves) Index(token common.Address) int {
	for i := range r {
		if r[i].Token == token {
			return i
		}
	}
	return -1
}

// IndexPair resolves both sides of a swap, failing when either token is
// absent or the two coincide.
func (r Reserves) IndexPair(tokenIn, tokenOut common.Address) (in, out int, err error) {
	in, out = r.Index(tokenIn), r.Index(tokenOut)
	if in < 0 || out < 0 || in == out {
		return 0, 0, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, tokenIn.Hex(), tokenOut.Hex())
	}
	return in, out, nil
}

// Pairs expands all C(n,2) token pair combinations.
func (r Reserves) Pairs() []model.TokenPair {
	pairs := make([]model.TokenPair, 0, len(r)*(len(r)-1)/2)
	for i := 0; i < len(r); i++ {
		for j := i + 1; j < len(r); j++ {
			pair, err := model.NewTokenPair(r[i].Token, r[j].Token)
			if err != nil {
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// ScaledBalances upscales every reserve balance to 18 decimals.
func (r Reserves) ScaledBalances() ([]*uint256.Int, error) {
	balances := make([]*uint256.Int, len(r))
	for i := range r {
		scaled, err := upscaleDown(r[i].Balance, r[i].ScalingFactor, r[i].Rate)
		if err != nil {
			return nil, err
		}
		balances[i] = scaled
	}
	return balances, nil
}
