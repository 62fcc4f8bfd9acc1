package poolmath

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestReClammCenteredness(t *testing.T) {
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}
	virtuals := [2]*uint256.Int{wad(2e18), wad(2e18)}
	c, above, err := ReClammCenteredness(balances, virtuals)
	if err != nil {
		t.Fatalf("centeredness: %v", err)
	}
	if above || c.Cmp(wad(1e18)) != 0 {
		t.Fatalf("centered pool: got c=%s above=%v", c, above)
	}

	balances = [2]*uint256.Int{wad(8e18), wad(2e17)}
	virtuals = [2]*uint256.Int{wad(2e18), wad(5e17)}
	c, above, err = ReClammCenteredness(balances, virtuals)
	if err != nil {
		t.Fatalf("centeredness: %v", err)
	}
	if !above {
		t.Fatalf("pool rich in token0 should be above center")
	}
	if c.Cmp(wad(1e17)) != 0 {
		t.Fatalf("centeredness: got %s want 1e17", c)
	}
}

func TestReClammFourthRootPriceRatioEndpoints(t *testing.T) {
	start, end := wad(15e17), wad(2e18)
	v, err := ReClammFourthRootPriceRatio(50, 100, 200, start, end)
	if err != nil {
		t.Fatalf("before window: %v", err)
	}
	if v.Cmp(start) != 0 {
		t.Fatalf("before window: got %s", v)
	}
	v, err = ReClammFourthRootPriceRatio(250, 100, 200, start, end)
	if err != nil {
		t.Fatalf("after window: %v", err)
	}
	if v.Cmp(end) != 0 {
		t.Fatalf("after window: got %s", v)
	}
	v, err = ReClammFourthRootPriceRatio(150, 100, 200, start, end)
	if err != nil {
		t.Fatalf("mid window: %v", err)
	}
	if !v.Gt(start) || !v.Lt(end) {
		t.Fatalf("mid window value %s not between %s and %s", v, start, end)
	}
}

func TestReClammVirtualsForPriceRatioPreservesCenter(t *testing.T) {
	// Perfectly centered pool, sqrt(priceRatio) = 2: the closed form gives
	// V = R / (sqrt(2) - 1) on both sides.
	balances := [2]*uint256.Int{wad(1e18), wad(1e18)}
	virtuals := [2]*uint256.Int{wad(1e18), wad(1e18)}
	frpr := wad(1414213562373095049)

	updated, err := ReClammVirtualsForPriceRatio(frpr, balances, virtuals)
	if err != nil {
		t.Fatalf("update virtuals: %v", err)
	}
	want := wad(2414213562373095049)
	for i, v := range updated {
		var diff uint256.Int
		if v.Gt(want) {
			diff.Sub(v, want)
		} else {
			diff.Sub(want, v)
		}
		if diff.Gt(wad(1e8)) {
			t.Fatalf("virtual %d: got %s want ~%s", i, v, want)
		}
	}

	c, _, err := ReClammCenteredness(balances, updated)
	if err != nil {
		t.Fatalf("centeredness: %v", err)
	}
	if c.Lt(wad(1e18 - 1e6)) {
		t.Fatalf("centeredness not preserved: %s", c)
	}
}

func TestReClammTimeShiftChangesQuote(t *testing.T) {
	// Off-center pool rich in token0: one day of drift at base 0.95 shrinks
	// the token0 virtual balance and moves the quote.
	balances := [2]*uint256.Int{wad(8e18), wad(2e17)}
	virtuals := [2]*uint256.Int{wad(2e18), wad(5e17)}
	sqrtPriceRatio := wad(8e18)
	dailyBase := wad(95e16)

	static, err := ReClammOutGivenIn(balances, virtuals, 0, 1, wad(1e17))
	if err != nil {
		t.Fatalf("static quote: %v", err)
	}

	drifted, err := ReClammVirtualsForTimeShift(balances, virtuals, sqrtPriceRatio, dailyBase, 86400)
	if err != nil {
		t.Fatalf("time shift: %v", err)
	}
	if !drifted[0].Lt(virtuals[0]) {
		t.Fatalf("overvalued virtual should decay: %s vs %s", drifted[0], virtuals[0])
	}
	moved, err := ReClammOutGivenIn(balances, drifted, 0, 1, wad(1e17))
	if err != nil {
		t.Fatalf("drifted quote: %v", err)
	}
	if static.Cmp(moved) == 0 {
		t.Fatalf("drift did not change the quote: %s", static)
	}
}

func TestReClammTimeShiftZeroElapsed(t *testing.T) {
	balances := [2]*uint256.Int{wad(8e18), wad(2e17)}
	virtuals := [2]*uint256.Int{wad(2e18), wad(5e17)}
	same, err := ReClammVirtualsForTimeShift(balances, virtuals, wad(8e18), wad(95e16), 0)
	if err != nil {
		t.Fatalf("time shift: %v", err)
	}
	if same[0].Cmp(virtuals[0]) != 0 || same[1].Cmp(virtuals[1]) != 0 {
		t.Fatalf("zero elapsed time must not move virtuals")
	}
}

func TestReClammSwapGuards(t *testing.T) {
	balances := [2]*uint256.Int{wad(1e18), wad(1e16)}
	virtuals := [2]*uint256.Int{wad(2e18), wad(5e17)}
	if _, err := ReClammOutGivenIn(balances, virtuals, 0, 1, wad(5e17)); err == nil {
		t.Fatalf("expected balance guard on exact-in")
	}
	if _, err := ReClammInGivenOut(balances, virtuals, 0, 1, wad(2e16)); err == nil {
		t.Fatalf("expected balance guard on exact-out")
	}
}
