package poolmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// QuantAMM weighted pools re-target their weights continuously: the stored
// weight is a snapshot at the last update, and a signed per-second multiplier
// extrapolates it forward. Swaps then use standard weighted math, with an
// additional cap on trade size relative to the traded reserves.

// ErrWeightOutOfRange reports an extrapolated weight leaving (0, 1).
var ErrWeightOutOfRange = errors.New("poolmath: interpolated weight out of range")

// ErrMaxTradeSize rejects trades beyond the pool's size cap.
var ErrMaxTradeSize = errors.New("poolmath: amount exceeds max trade size")

// QuantAMMWeightDelta bounds the interpolation window: time past the last
// oracle interoperability deadline does not move weights further.
func QuantAMMWeightDelta(currentTimestamp, lastUpdateTime, lastInteropTime uint64) uint64 {
	effective := currentTimestamp
	if lastInteropTime < effective {
		effective = lastInteropTime
	}
	if effective <= lastUpdateTime {
		return 0
	}
	return effective - lastUpdateTime
}

// QuantAMMInterpolateWeight extrapolates a stored weight by its signed
// per-second multiplier over the elapsed time.
func QuantAMMInterpolateWeight(weight *uint256.Int, multiplier *big.Int, elapsedSeconds uint64) (*uint256.Int, error) {
	shift := new(big.Int).Mul(multiplier, new(big.Int).SetUint64(elapsedSeconds))
	result := new(big.Int).Add(weight.ToBig(), shift)
	if result.Sign() <= 0 || result.Cmp(fixpoint.SOne) >= 0 {
		return nil, ErrWeightOutOfRange
	}
	out, overflow := uint256.FromBig(result)
	if overflow {
		return nil, fixpoint.ErrOverflow
	}
	return out, nil
}

// QuantAMMOutGivenIn applies the trade-size cap and delegates to weighted
// math with the interpolated weights.
func QuantAMMOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn, maxTradeSizeRatio *uint256.Int) (*uint256.Int, error) {
	maxIn, err := fixpoint.MulDown(balanceIn, maxTradeSizeRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Gt(maxIn) {
		return nil, ErrMaxTradeSize
	}
	amountOut, err := WeightedOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn)
	if err != nil {
		return nil, err
	}
	maxOut, err := fixpoint.MulDown(balanceOut, maxTradeSizeRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(maxOut) {
		return nil, ErrMaxTradeSize
	}
	return amountOut, nil
}

// QuantAMMInGivenOut is the exact-output counterpart of QuantAMMOutGivenIn.
func QuantAMMInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut, maxTradeSizeRatio *uint256.Int) (*uint256.Int, error) {
	maxOut, err := fixpoint.MulDown(balanceOut, maxTradeSizeRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Gt(maxOut) {
		return nil, ErrMaxTradeSize
	}
	amountIn, err := WeightedInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut)
	if err != nil {
		return nil, err
	}
	maxIn, err := fixpoint.MulDown(balanceIn, maxTradeSizeRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Gt(maxIn) {
		return nil, ErrMaxTradeSize
	}
	return amountIn, nil
}
