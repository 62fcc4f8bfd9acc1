package liquidity

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
)

func TestGyro2PoolQuote(t *testing.T) {
	pool, err := NewGyro2CLPPool("g2-1", []TokenReserve{
		entry(addr(1), wad(1e18)),
		entry(addr(2), wad(1e18)),
	}, wad(9e17), wad(11e17), noFee())
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	out, err := pool.AmountOut(testCtx, addr(2), model.NewAsset(addr(1), wad(1e17)))
	if err != nil {
		t.Fatalf("amount out: %v", err)
	}
	if out.Amount.IsZero() || !out.Amount.Lt(wad(1e17)) {
		t.Fatalf("output must be positive and adverse: got %s", out.Amount)
	}

	back, err := pool.AmountIn(testCtx, addr(1), out)
	if err != nil {
		t.Fatalf("amount in: %v", err)
	}
	var diff uint256.Int
	if back.Amount.Gt(wad(1e17)) {
		diff.Sub(back.Amount, wad(1e17))
	} else {
		diff.Sub(wad(1e17), back.Amount)
	}
	if diff.Gt(wad(1e7)) {
		t.Fatalf("round trip drifted: back %s", back.Amount)
	}
}

func TestGyro2PoolValidation(t *testing.T) {
	entries := []TokenReserve{
		entry(addr(1), wad(1e18)),
		entry(addr(2), wad(1e18)),
	}
	if _, err := NewGyro2CLPPool("g2-2", entries, wad(11e17), wad(9e17), noFee()); !errors.Is(err, ErrInvalidPoolParameters) {
		t.Fatalf("reversed price bounds: got %v", err)
	}
	three := append(entries, entry(addr(3), wad(1e18)))
	if _, err := NewGyro2CLPPool("g2-3", three, wad(9e17), wad(11e17), noFee()); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("three tokens: got %v", err)
	}
}

func TestGyro3PoolQuote(t *testing.T) {
	pool, err := NewGyro3CLPPool("g3-1", []TokenReserve{
		entry(addr(1), wad(1e18)),
		entry(addr(2), wad(1e18)),
		entry(addr(3), wad(1e18)),
	}, wad(99e16), noFee())
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	out, err := pool.AmountOut(testCtx, addr(3), model.NewAsset(addr(1), wad(1e17)))
	if err != nil {
		t.Fatalf("amount out: %v", err)
	}
	// Near the symmetric point the price is close to one.
	if !out.Amount.Gt(wad(9e16)) || !out.Amount.Lt(wad(1e17)) {
		t.Fatalf("output out of range: got %s", out.Amount)
	}

	back, err := pool.AmountIn(testCtx, addr(1), out)
	if err != nil {
		t.Fatalf("amount in: %v", err)
	}
	if back.Amount.Lt(out.Amount) {
		t.Fatalf("in %s below out %s despite adverse rounding", back.Amount, out.Amount)
	}
}

func TestGyro3PoolValidation(t *testing.T) {
	entries := []TokenReserve{
		entry(addr(1), wad(1e18)),
		entry(addr(2), wad(1e18)),
	}
	if _, err := NewGyro3CLPPool("g3-2", entries, wad(99e16), noFee()); !errors.Is(err, ErrInvalidReserves) {
		t.Fatalf("two tokens: got %v", err)
	}
	three := append(entries, entry(addr(3), wad(1e18)))
	if _, err := NewGyro3CLPPool("g3-3", three, wad(1e18), noFee()); !errors.Is(err, ErrInvalidPoolParameters) {
		t.Fatalf("root3Alpha at one: got %v", err)
	}
}
