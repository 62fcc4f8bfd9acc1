package poolmath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestQuantAMMWeightDelta(t *testing.T) {
	if d := QuantAMMWeightDelta(1000, 400, 1000); d != 600 {
		t.Fatalf("delta: got %d", d)
	}
	// Interop deadline caps the window.
	if d := QuantAMMWeightDelta(1000, 400, 700); d != 300 {
		t.Fatalf("capped delta: got %d", d)
	}
	if d := QuantAMMWeightDelta(300, 400, 1000); d != 0 {
		t.Fatalf("pre-update delta: got %d", d)
	}
}

func TestQuantAMMInterpolateWeight(t *testing.T) {
	// Raw multipliers are wei-per-second: +1000 over one hour moves the
	// weight by 3.6e6 wei.
	up, err := QuantAMMInterpolateWeight(wad(5e17), big.NewInt(1000), 3600)
	if err != nil {
		t.Fatalf("interpolate up: %v", err)
	}
	if up.Cmp(wad(500000000003600000)) != 0 {
		t.Fatalf("up: got %s", up)
	}
	down, err := QuantAMMInterpolateWeight(wad(5e17), big.NewInt(-1000), 3600)
	if err != nil {
		t.Fatalf("interpolate down: %v", err)
	}
	if down.Cmp(wad(499999999996400000)) != 0 {
		t.Fatalf("down: got %s", down)
	}

	sum := new(uint256.Int).Add(up, down)
	if sum.Cmp(wad(1e18)) != 0 {
		t.Fatalf("weights no longer sum to one: %s", sum)
	}
}

func TestQuantAMMInterpolateWeightOutOfRange(t *testing.T) {
	if _, err := QuantAMMInterpolateWeight(wad(1e15), big.NewInt(-1e9), 3600000); !errors.Is(err, ErrWeightOutOfRange) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestQuantAMMSwapUsesInterpolatedWeights(t *testing.T) {
	up, err := QuantAMMInterpolateWeight(wad(5e17), big.NewInt(1000), 3600)
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	down, err := QuantAMMInterpolateWeight(wad(5e17), big.NewInt(-1000), 3600)
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}

	ratio := wad(3e17)
	got, err := QuantAMMOutGivenIn(wad(1e18), up, wad(1e18), down, wad(1e17), ratio)
	if err != nil {
		t.Fatalf("quantamm out: %v", err)
	}
	want, err := WeightedOutGivenIn(wad(1e18), up, wad(1e18), down, wad(1e17))
	if err != nil {
		t.Fatalf("weighted out: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Fatalf("quantamm %s != weighted %s at same weights", got, want)
	}

	flat, err := WeightedOutGivenIn(wad(1e18), wad(5e17), wad(1e18), wad(5e17), wad(1e17))
	if err != nil {
		t.Fatalf("flat weighted out: %v", err)
	}
	if got.Cmp(flat) == 0 {
		t.Fatalf("interpolation had no effect on the quote")
	}
}

func TestQuantAMMMaxTradeSize(t *testing.T) {
	ratio := wad(1e17)
	if _, err := QuantAMMOutGivenIn(wad(1e18), wad(5e17), wad(1e18), wad(5e17), wad(2e17), ratio); !errors.Is(err, ErrMaxTradeSize) {
		t.Fatalf("expected trade size guard, got %v", err)
	}
	if _, err := QuantAMMInGivenOut(wad(1e18), wad(5e17), wad(1e18), wad(5e17), wad(2e17), ratio); !errors.Is(err, ErrMaxTradeSize) {
		t.Fatalf("expected trade size guard, got %v", err)
	}
}
