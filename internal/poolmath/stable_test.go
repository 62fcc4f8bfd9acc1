package poolmath

import (
	"testing"

	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
)

func stableAmp(factor, precision uint64) Amplification {
	return Amplification{Factor: uint256.NewInt(factor), Precision: uint256.NewInt(precision)}
}

func TestStableInvariantBalanced(t *testing.T) {
	balances := []*uint256.Int{wad(1e18), wad(1e18), wad(1e18)}
	invariant, err := StableInvariant(stableAmp(60, 1), balances)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	if invariant.Cmp(wad(3e18)) != 0 {
		t.Fatalf("balanced invariant: got %s want 3e18", invariant)
	}
}

func TestStableOutGivenInReference(t *testing.T) {
	// Three-token pool, amp 60 at precision 1, 0.04% fee, 1e17 of token0 in.
	fee := model.Rational{Num: uint256.NewInt(4), Den: uint256.NewInt(10000)}
	inAfterFee, err := SubtractFee(wad(1e17), fee)
	if err != nil {
		t.Fatalf("subtract fee: %v", err)
	}
	if inAfterFee.Cmp(wad(99960000000000000)) != 0 {
		t.Fatalf("after fee: got %s", inAfterFee)
	}

	balances := []*uint256.Int{wad(1e18), wad(1e18), wad(1e18)}
	out, err := StableOutGivenIn(stableAmp(60, 1), balances, 0, 1, inAfterFee)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}

	want := wad(99610000000000000)
	var diff uint256.Int
	if out.Gt(want) {
		diff.Sub(out, want)
	} else {
		diff.Sub(want, out)
	}
	if diff.Gt(uint256.NewInt(1)) {
		t.Fatalf("out: got %s want %s +-1", out, want)
	}
}

func TestStableRoundTrip(t *testing.T) {
	balances := []*uint256.Int{wad(2e18), wad(1e18), wad(15e17)}
	amp := stableAmp(200, 1000)
	amountIn := wad(1e17)

	out, err := StableOutGivenIn(amp, balances, 0, 2, amountIn)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	if !out.Lt(amountIn) {
		// Token2 is scarcer than token0 here, so the quote must discount.
		t.Fatalf("expected out %s < in %s", out, amountIn)
	}
	back, err := StableInGivenOut(amp, balances, 0, 2, out)
	if err != nil {
		t.Fatalf("in given out: %v", err)
	}
	var diff uint256.Int
	if back.Gt(amountIn) {
		diff.Sub(back, amountIn)
	} else {
		diff.Sub(amountIn, back)
	}
	if diff.Gt(wad(100)) {
		t.Fatalf("round trip drifted: in %s back %s", amountIn, back)
	}
}

func TestStableInGivenOutExceedsBalance(t *testing.T) {
	balances := []*uint256.Int{wad(1e18), wad(1e18)}
	if _, err := StableInGivenOut(stableAmp(100, 1), balances, 0, 1, wad(2e18)); err == nil {
		t.Fatalf("expected balance guard")
	}
}

func TestSurgeFeeBalancedPool(t *testing.T) {
	balances := []*uint256.Int{wad(1e18), wad(1e18)}
	fee, err := SurgeFee(balances, wad(1e15), wad(2e17), wad(5e16))
	if err != nil {
		t.Fatalf("surge fee: %v", err)
	}
	if fee.Cmp(wad(1e15)) != 0 {
		t.Fatalf("balanced pool should use the static fee, got %s", fee)
	}
}

func TestSurgeFeeImbalancedPool(t *testing.T) {
	// Imbalance 1/3, threshold 0.2: ramp = ceil(0.1333/0.8), surcharge on top
	// of the static fee.
	balances := []*uint256.Int{wad(2e18), wad(1e18)}
	fee, err := SurgeFee(balances, wad(1e15), wad(2e17), wad(5e16))
	if err != nil {
		t.Fatalf("surge fee: %v", err)
	}
	want := wad(1e15 + 8333333333333334)
	if fee.Cmp(want) != 0 {
		t.Fatalf("surged fee: got %s want %s", fee, want)
	}
}

func TestSurgeFeeCapped(t *testing.T) {
	// Fully one-sided three-token pool: deviation sum exceeds the total, the
	// ramp clamps at one.
	balances := []*uint256.Int{wad(3e18), new(uint256.Int), new(uint256.Int)}
	static, maxSurge := wad(1e15), wad(5e16)
	fee, err := SurgeFee(balances, static, wad(2e17), maxSurge)
	if err != nil {
		t.Fatalf("surge fee: %v", err)
	}
	cap := wad(1e15 + 5e16)
	if fee.Cmp(cap) != 0 {
		t.Fatalf("capped fee: got %s want %s", fee, cap)
	}
}
