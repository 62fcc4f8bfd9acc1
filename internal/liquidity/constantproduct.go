package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

// ConstantProductPool is a two-token x*y=k pool quoted on raw reserves.
type ConstantProductPool struct {
	id       string
	pair     model.TokenPair
	reserves [2]*uint256.Int // aligned with pair.A, pair.B
	fee      model.Rational
}

func NewConstantProductPool(id string, tokenA, tokenB common.Address, balanceA, balanceB *uint256.Int, fee model.Rational) (*ConstantProductPool, error) {
	pair, err := model.NewTokenPair(tokenA, tokenB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateToken, err)
	}
	if fee.Den == nil || fee.Den.IsZero() {
		return nil, model.ErrZeroDenominator
	}
	reserves := [2]*uint256.Int{balanceA, balanceB}
	if pair.A != tokenA {
		reserves[0], reserves[1] = reserves[1], reserves[0]
	}
	for _, r := range reserves {
		if r == nil || r.IsZero() {
			return nil, fmt.Errorf("%w: empty constant-product reserve", ErrInvalidReserves)
		}
	}
	return &ConstantProductPool{id: id, pair: pair, reserves: reserves, fee: fee}, nil
}

func (p *ConstantProductPool) ID() string               { return p.id }
func (p *ConstantProductPool) GasCost() uint64          { return gasConstantProduct }
func (p *ConstantProductPool) Pairs() []model.TokenPair { return []model.TokenPair{p.pair} }

func (p *ConstantProductPool) orient(tokenIn, tokenOut common.Address) (reserveIn, reserveOut *uint256.Int, err error) {
	switch {
	case tokenIn == p.pair.A && tokenOut == p.pair.B:
		return p.reserves[0], p.reserves[1], nil
	case tokenIn == p.pair.B && tokenOut == p.pair.A:
		return p.reserves[1], p.reserves[0], nil
	default:
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, tokenIn.Hex(), tokenOut.Hex())
	}
}

func (p *ConstantProductPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	reserveIn, reserveOut, err := p.orient(in.Token, tokenOut)
	if err != nil {
		return model.Asset{}, err
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}
	out, err := poolmath.ConstantProductOutGivenIn(reserveIn, reserveOut, in.Amount, p.fee)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, out), nil
}

func (p *ConstantProductPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	reserveIn, reserveOut, err := p.orient(tokenIn, out.Token)
	if err != nil {
		return model.Asset{}, err
	}
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}
	in, err := poolmath.ConstantProductInGivenOut(reserveIn, reserveOut, out.Amount, p.fee)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenIn, in), nil
}
