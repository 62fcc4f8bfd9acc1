package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/liquidity"
	"auctionSolver/internal/model"
	"auctionSolver/internal/snapshot"
)

func bal(dec string) *uint256.Int { return uint256.MustFromDecimal(dec) }

func cpPool(t *testing.T, id string, x, y common.Address, balX, balY *uint256.Int) liquidity.Quoter {
	t.Helper()
	fee := model.Rational{Num: new(uint256.Int), Den: uint256.NewInt(1)}
	pool, err := liquidity.NewConstantProductPool(id, x, y, balX, balY, fee)
	if err != nil {
		t.Fatalf("pool %s: %v", id, err)
	}
	return pool
}

func sellOrder(sell, buy common.Address, amount, min *uint256.Int) model.Order {
	return model.Order{
		Side: model.SideSell,
		Sell: model.Asset{Token: sell, Amount: amount},
		Buy:  model.Asset{Token: buy, Amount: min},
	}
}

func TestSolveTwoHopThroughBase(t *testing.T) {
	a, w, b := addr(1), addr(2), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "aw", a, w, bal("1000000000000000000000000"), bal("1000000000000000000000")),
		cpPool(t, "wb", w, b, bal("1000000000000000000000"), bal("1000000000000000000000000")),
	})
	r := New(ix, Config{BaseTokens: []string{w.Hex()}, MaxHops: 2}, nil)

	route, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e18), uint256.NewInt(9e17)))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(route.Segments) != 2 {
		t.Fatalf("segments: got %d want 2", len(route.Segments))
	}
	if route.Segments[0].EdgeID != "aw" || route.Segments[1].EdgeID != "wb" {
		t.Fatalf("route: %s then %s", route.Segments[0].EdgeID, route.Segments[1].EdgeID)
	}
	if route.Segments[0].Output.Token != w {
		t.Fatalf("interior token: got %s want %s", route.Segments[0].Output.Token.Hex(), w.Hex())
	}
	out := route.BuyAmount().Amount
	if out.Lt(uint256.NewInt(9e17)) || out.Gt(uint256.NewInt(1e18)) {
		t.Fatalf("output out of range: %s", out)
	}
}

func TestSolvePicksBestDirectPool(t *testing.T) {
	a, b := addr(1), addr(3)
	deep := cpPool(t, "deep", a, b, bal("100000000000000000000000"), bal("100000000000000000000000"))
	thin := cpPool(t, "thin", a, b, uint256.NewInt(1e19), uint256.NewInt(1e19))
	ix := snapshot.Build([]liquidity.Quoter{thin, deep})
	r := New(ix, Config{MaxHops: 2}, nil)

	route, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e18), nil))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(route.Segments) != 1 || route.Segments[0].EdgeID != "deep" {
		t.Fatalf("deep pool must win: %v", route.Segments)
	}
}

func TestSolveTieBreaksOnEdgeID(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "p-b", a, b, uint256.NewInt(1e18), uint256.NewInt(1e18)),
		cpPool(t, "p-a", a, b, uint256.NewInt(1e18), uint256.NewInt(1e18)),
	})
	r := New(ix, Config{MaxHops: 1}, nil)

	for i := 0; i < 3; i++ {
		route, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e15), nil))
		if err != nil {
			t.Fatalf("solve: %v", err)
		}
		if route.Segments[0].EdgeID != "p-a" {
			t.Fatalf("equal quotes must break ties by identifier, got %s", route.Segments[0].EdgeID)
		}
	}
}

func TestSolveBuySide(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "ab", a, b, bal("100000000000000000000"), bal("100000000000000000000")),
	})
	r := New(ix, Config{MaxHops: 1}, nil)

	order := model.Order{
		Side: model.SideBuy,
		Sell: model.Asset{Token: a, Amount: uint256.NewInt(2e18)},
		Buy:  model.Asset{Token: b, Amount: uint256.NewInt(1e18)},
	}
	route, err := r.Solve(context.Background(), order)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if got := route.BuyAmount().Amount; !got.Eq(uint256.NewInt(1e18)) {
		t.Fatalf("buy amount must be exact: %s", got)
	}
	want := uint256.MustFromDecimal("1010101010101010102")
	if got := route.SellAmount().Amount; !got.Eq(want) {
		t.Fatalf("sell amount: got %s want %s", got, want)
	}
}

func TestSolveBuySideRespectsMaxSell(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "ab", a, b, bal("100000000000000000000"), bal("100000000000000000000")),
	})
	r := New(ix, Config{MaxHops: 1}, nil)

	order := model.Order{
		Side: model.SideBuy,
		Sell: model.Asset{Token: a, Amount: uint256.NewInt(1e18)},
		Buy:  model.Asset{Token: b, Amount: uint256.NewInt(1e18)},
	}
	if _, err := r.Solve(context.Background(), order); !errors.Is(err, ErrLimitPriceNotMet) {
		t.Fatalf("want ErrLimitPriceNotMet, got %v", err)
	}
}

func TestSolveLimitNotMet(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "ab", a, b, bal("100000000000000000000"), bal("100000000000000000000")),
	})
	r := New(ix, Config{MaxHops: 1}, nil)

	_, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e18), uint256.NewInt(2e18)))
	if !errors.Is(err, ErrLimitPriceNotMet) {
		t.Fatalf("want ErrLimitPriceNotMet, got %v", err)
	}
}

func TestSolveNoValidRoute(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		cpPool(t, "ab", a, b, bal("100000000000000000000"), bal("100000000000000000000")),
	})
	r := New(ix, Config{MaxHops: 2}, nil)

	_, err := r.Solve(context.Background(), sellOrder(a, addr(9), uint256.NewInt(1e18), nil))
	if !errors.Is(err, ErrNoValidRoute) {
		t.Fatalf("want ErrNoValidRoute, got %v", err)
	}
	_, err = r.Solve(context.Background(), sellOrder(a, b, new(uint256.Int), nil))
	if !errors.Is(err, ErrNoValidRoute) {
		t.Fatalf("zero amount must be rejected, got %v", err)
	}
}

// slowQuoter blocks until the context expires.
type slowQuoter struct {
	id string
	x  common.Address
	y  common.Address
}

func (s *slowQuoter) ID() string { return s.id }

func (s *slowQuoter) Pairs() []model.TokenPair {
	pair, err := model.NewTokenPair(s.x, s.y)
	if err != nil {
		return nil
	}
	return []model.TokenPair{pair}
}

func (s *slowQuoter) GasCost() uint64 { return 1 }

func (s *slowQuoter) AmountOut(ctx context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	<-ctx.Done()
	return model.Asset{}, ctx.Err()
}

func (s *slowQuoter) AmountIn(ctx context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	<-ctx.Done()
	return model.Asset{}, ctx.Err()
}

func TestSolveTimeout(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{&slowQuoter{id: "slow", x: a, y: b}})
	r := New(ix, Config{MaxHops: 1, Deadline: 20 * time.Millisecond}, nil)

	_, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e18), nil))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
}

func TestSolveReturnsBestCompletedOnTimeout(t *testing.T) {
	a, b := addr(1), addr(3)
	ix := snapshot.Build([]liquidity.Quoter{
		&slowQuoter{id: "slow", x: a, y: b},
		cpPool(t, "fast", a, b, bal("100000000000000000000"), bal("100000000000000000000")),
	})
	r := New(ix, Config{MaxHops: 1, Deadline: 50 * time.Millisecond}, nil)

	route, err := r.Solve(context.Background(), sellOrder(a, b, uint256.NewInt(1e18), nil))
	if err != nil {
		t.Fatalf("completed candidate must win over the timed-out one: %v", err)
	}
	if route.Segments[0].EdgeID != "fast" {
		t.Fatalf("route: %s", route.Segments[0].EdgeID)
	}
}
