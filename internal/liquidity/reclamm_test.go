package liquidity

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

func reclammTestState() ReClammState {
	return ReClammState{
		VirtualBalances:           [2]*uint256.Int{wad(2e18), wad(5e17)},
		DailyShiftBase:            wad(95e16),
		CenterednessMargin:        new(uint256.Int),
		StartFourthRootPriceRatio: wad(2828427124746190097),
		EndFourthRootPriceRatio:   wad(2828427124746190097),
		PriceRatioUpdateStart:     0,
		PriceRatioUpdateEnd:       1,
		LastTimestamp:             1000,
		CurrentTimestamp:          1000,
	}
}

func TestReClammPoolStaticQuote(t *testing.T) {
	// With the clock at the last update and margin zero neither adjustment
	// runs, so the pool must reduce to the bare swap math.
	pool, err := NewReClammPool("rc-1", []TokenReserve{
		entry(addr(1), wad(8e18)),
		entry(addr(2), wad(2e17)),
	}, reclammTestState(), noFee())
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	got, err := pool.AmountOut(testCtx, addr(2), model.NewAsset(addr(1), wad(1e17)))
	if err != nil {
		t.Fatalf("pool quote: %v", err)
	}
	want, err := poolmath.ReClammOutGivenIn(
		[2]*uint256.Int{wad(8e18), wad(2e17)},
		[2]*uint256.Int{wad(2e18), wad(5e17)},
		0, 1, wad(1e17),
	)
	if err != nil {
		t.Fatalf("math quote: %v", err)
	}
	if got.Amount.Cmp(want) != 0 {
		t.Fatalf("pipeline diverged from math: %s vs %s", got.Amount, want)
	}
}

func TestReClammPoolDriftMovesQuote(t *testing.T) {
	// Centeredness here is 0.1; a margin of 0.5 puts the pool out of range,
	// so a day of elapsed time drifts the virtual balances and the quote.
	entries := []TokenReserve{
		entry(addr(1), wad(8e18)),
		entry(addr(2), wad(2e17)),
	}
	static, err := NewReClammPool("rc-2", entries, reclammTestState(), noFee())
	if err != nil {
		t.Fatalf("new static pool: %v", err)
	}
	drifting := reclammTestState()
	drifting.CenterednessMargin = wad(5e17)
	drifting.CurrentTimestamp = drifting.LastTimestamp + 86400
	drifted, err := NewReClammPool("rc-3", entries, drifting, noFee())
	if err != nil {
		t.Fatalf("new drifted pool: %v", err)
	}

	a, err := static.AmountOut(testCtx, addr(2), model.NewAsset(addr(1), wad(1e17)))
	if err != nil {
		t.Fatalf("static quote: %v", err)
	}
	b, err := drifted.AmountOut(testCtx, addr(2), model.NewAsset(addr(1), wad(1e17)))
	if err != nil {
		t.Fatalf("drifted quote: %v", err)
	}
	if a.Amount.Cmp(b.Amount) == 0 {
		t.Fatalf("drift did not change the quote: %s", a.Amount)
	}
}

func TestReClammPoolRoundTrip(t *testing.T) {
	pool, err := NewReClammPool("rc-4", []TokenReserve{
		entry(addr(1), wad(8e18)),
		entry(addr(2), wad(2e17)),
	}, reclammTestState(), feeOf(3, 1000))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	amountIn := wad(1e17)
	out, err := pool.AmountOut(testCtx, addr(2), model.NewAsset(addr(1), amountIn))
	if err != nil {
		t.Fatalf("amount out: %v", err)
	}
	back, err := pool.AmountIn(testCtx, addr(1), out)
	if err != nil {
		t.Fatalf("amount in: %v", err)
	}
	var diff uint256.Int
	if back.Amount.Gt(amountIn) {
		diff.Sub(back.Amount, amountIn)
	} else {
		diff.Sub(amountIn, back.Amount)
	}
	if diff.Gt(wad(1e7)) {
		t.Fatalf("round trip drifted: in %s back %s", amountIn, back.Amount)
	}
}

func TestReClammPoolValidation(t *testing.T) {
	entries := []TokenReserve{
		entry(addr(1), wad(8e18)),
		entry(addr(2), wad(2e17)),
	}
	state := reclammTestState()
	state.CurrentTimestamp = state.LastTimestamp - 1
	if _, err := NewReClammPool("rc-5", entries, state, noFee()); !errors.Is(err, ErrInvalidPoolParameters) {
		t.Fatalf("clock behind last update: got %v", err)
	}

	state = reclammTestState()
	state.DailyShiftBase = wad(2e18)
	if _, err := NewReClammPool("rc-6", entries, state, noFee()); !errors.Is(err, ErrInvalidPoolParameters) {
		t.Fatalf("shift base above one: got %v", err)
	}

	three := append(entries, entry(addr(3), wad(1e18)))
	if _, err := NewReClammPool("rc-7", three, reclammTestState(), noFee()); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("three tokens: got %v", err)
	}
}
