package poolmath

import (
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
)

// Surging swap fees for stable pools: when the pool drifts away from a
// balanced state, the fee ramps linearly from the static fee toward a maximum.

// SurgeFee returns the 18-decimal swap fee for the given pre-swap balances.
// Imbalance is the total absolute deviation from the per-token average,
// normalized by the total balance. At or below the threshold the static fee
// applies unchanged; above it the surcharge grows linearly and tops out at
// staticFee + maxSurgeFee when the imbalance reaches one.
func SurgeFee(balances []*uint256.Int, staticFee, threshold, maxSurgeFee *uint256.Int) (*uint256.Int, error) {
	if !threshold.Lt(fixpoint.One) {
		return staticFee.Clone(), nil
	}

	total := new(uint256.Int)
	for _, balance := range balances {
		next, err := fixpoint.Add(total, balance)
		if err != nil {
			return nil, err
		}
		total = next
	}
	if total.IsZero() {
		return staticFee.Clone(), nil
	}

	average := new(uint256.Int).Div(total, uint256.NewInt(uint64(len(balances))))
	totalDiff := new(uint256.Int)
	for _, balance := range balances {
		var diff uint256.Int
		if balance.Gt(average) {
			diff.Sub(balance, average)
		} else {
			diff.Sub(average, balance)
		}
		next, err := fixpoint.Add(totalDiff, &diff)
		if err != nil {
			return nil, err
		}
		totalDiff = next
	}

	imbalance, err := fixpoint.DivDown(totalDiff, total)
	if err != nil {
		return nil, err
	}
	if !imbalance.Gt(threshold) {
		return staticFee.Clone(), nil
	}

	// With more than two tokens the deviation sum can exceed the total.
	excess := new(uint256.Int).Sub(imbalance, threshold)
	headroom := fixpoint.Complement(threshold)
	ramp, err := fixpoint.DivUp(excess, headroom)
	if err != nil {
		return nil, err
	}
	if ramp.Gt(fixpoint.One) {
		ramp = fixpoint.One.Clone()
	}
	surcharge, err := fixpoint.MulUp(maxSurgeFee, ramp)
	if err != nil {
		return nil, err
	}
	return fixpoint.Add(staticFee, surcharge)
}
