package poolmath

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
)

func TestConstantProductOutGivenInNoFee(t *testing.T) {
	out, err := ConstantProductOutGivenIn(wadM(100), wadM(100), wad(1e18), model.Rational{})
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	// floor(1e20 * 1e18 / 1.01e20)
	want := wad(990099009900990099)
	if out.Cmp(want) != 0 {
		t.Fatalf("out: got %s want %s", out, want)
	}
}

func TestConstantProductFeeReducesOutput(t *testing.T) {
	fee := model.Rational{Num: uint256.NewInt(3), Den: uint256.NewInt(1000)}
	withFee, err := ConstantProductOutGivenIn(wadM(100), wadM(100), wad(1e18), fee)
	if err != nil {
		t.Fatalf("with fee: %v", err)
	}
	noFee, err := ConstantProductOutGivenIn(wadM(100), wadM(100), wad(1e18), model.Rational{})
	if err != nil {
		t.Fatalf("no fee: %v", err)
	}
	if !withFee.Lt(noFee) {
		t.Fatalf("fee must reduce output: %s vs %s", withFee, noFee)
	}
}

func TestConstantProductRoundTrip(t *testing.T) {
	fee := model.Rational{Num: uint256.NewInt(3), Den: uint256.NewInt(1000)}
	amountIn := wad(1e18)
	out, err := ConstantProductOutGivenIn(wadM(100), wadM(100), amountIn, fee)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	back, err := ConstantProductInGivenOut(wadM(100), wadM(100), out, fee)
	if err != nil {
		t.Fatalf("in given out: %v", err)
	}
	var diff uint256.Int
	if back.Gt(amountIn) {
		diff.Sub(back, amountIn)
	} else {
		diff.Sub(amountIn, back)
	}
	if diff.Gt(wad(10)) {
		t.Fatalf("round trip drifted: in %s back %s", amountIn, back)
	}
}

func TestConstantProductOutputAboveReserve(t *testing.T) {
	if _, err := ConstantProductInGivenOut(wadM(100), wad(1e18), wad(1e18), model.Rational{}); !errors.Is(err, ErrAmountExceedsBalance) {
		t.Fatalf("expected balance guard, got %v", err)
	}
}

func TestAddSubtractFeeInverse(t *testing.T) {
	fee := model.Rational{Num: uint256.NewInt(3), Den: uint256.NewInt(1000)}
	amount := wad(1e18)
	gross, err := AddFee(amount, fee)
	if err != nil {
		t.Fatalf("add fee: %v", err)
	}
	net, err := SubtractFee(gross, fee)
	if err != nil {
		t.Fatalf("subtract fee: %v", err)
	}
	if net.Lt(amount) {
		t.Fatalf("gross-up must cover the fee: net %s < %s", net, amount)
	}
	slack := new(uint256.Int).Sub(net, amount)
	if slack.Gt(wad(2)) {
		t.Fatalf("gross-up overshoots: net %s", net)
	}
}

func TestFeeAtOrAboveOneRejected(t *testing.T) {
	fee := model.Rational{Num: uint256.NewInt(1000), Den: uint256.NewInt(1000)}
	if _, err := SubtractFee(wad(1e18), fee); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("expected invalid fee, got %v", err)
	}
	if _, err := AddFee(wad(1e18), fee); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("expected invalid fee, got %v", err)
	}
}
