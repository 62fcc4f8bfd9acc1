package model

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	tokenA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokenB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	tokenW = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func TestTokenPairCanonical(t *testing.T) {
	p1, err := NewTokenPair(tokenA, tokenB)
	if err != nil {
		t.Fatalf("new pair: %v", err)
	}
	p2, err := NewTokenPair(tokenB, tokenA)
	if err != nil {
		t.Fatalf("new pair: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("pair not canonical: %s vs %s", p1, p2)
	}
	if p1.A != tokenA {
		t.Fatalf("lower address first: got %s", p1.A.Hex())
	}
}

func TestTokenPairRejectsIdentical(t *testing.T) {
	if _, err := NewTokenPair(tokenA, tokenA); err == nil {
		t.Fatalf("expected error for identical tokens")
	}
}

func TestTokenPairOther(t *testing.T) {
	p, err := NewTokenPair(tokenA, tokenB)
	if err != nil {
		t.Fatalf("new pair: %v", err)
	}
	other, ok := p.Other(tokenA)
	if !ok || other != tokenB {
		t.Fatalf("other of A: got %s ok=%v", other.Hex(), ok)
	}
	if _, ok := p.Other(tokenW); ok {
		t.Fatalf("other of absent token should fail")
	}
}

func TestRouteValidateChaining(t *testing.T) {
	order := Order{
		Side: SideSell,
		Sell: NewAsset(tokenA, uint256.NewInt(100)),
		Buy:  NewAsset(tokenB, uint256.NewInt(90)),
	}
	route := Route{Segments: []Segment{
		{EdgeID: "p1", Input: NewAsset(tokenA, uint256.NewInt(100)), Output: NewAsset(tokenW, uint256.NewInt(95)), Gas: 90000},
		{EdgeID: "p2", Input: NewAsset(tokenW, uint256.NewInt(95)), Output: NewAsset(tokenB, uint256.NewInt(93)), Gas: 90000},
	}}
	if err := route.Validate(order); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if route.Gas() != 180000 {
		t.Fatalf("gas sum: got %d", route.Gas())
	}
}

func TestRouteValidateBrokenChain(t *testing.T) {
	order := Order{
		Side: SideSell,
		Sell: NewAsset(tokenA, uint256.NewInt(100)),
		Buy:  NewAsset(tokenB, uint256.NewInt(90)),
	}
	route := Route{Segments: []Segment{
		{EdgeID: "p1", Input: NewAsset(tokenA, uint256.NewInt(100)), Output: NewAsset(tokenW, uint256.NewInt(95))},
		{EdgeID: "p2", Input: NewAsset(tokenA, uint256.NewInt(95)), Output: NewAsset(tokenB, uint256.NewInt(93))},
	}}
	if err := route.Validate(order); !errors.Is(err, ErrInvalidTraversal) {
		t.Fatalf("expected traversal error, got %v", err)
	}
}

func TestOrderValidate(t *testing.T) {
	bad := Order{
		Side: SideSell,
		Sell: NewAsset(tokenA, uint256.NewInt(1)),
		Buy:  NewAsset(tokenA, uint256.NewInt(1)),
	}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected self-trade rejection")
	}

	zero := Order{
		Side: SideBuy,
		Sell: NewAsset(tokenA, uint256.NewInt(1)),
		Buy:  NewAsset(tokenB, new(uint256.Int)),
	}
	if err := zero.Validate(); err == nil {
		t.Fatalf("expected zero-amount rejection")
	}
}
