package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
)

// LimitOrder is a fill-or-partial maker order quoted at a fixed price. The
// maker offers up to MakerAmount of the maker token for the taker token at
// the ratio makerAmount/takerAmount.
type LimitOrder struct {
	id          string
	makerToken  common.Address
	takerToken  common.Address
	makerAmount *uint256.Int
	takerAmount *uint256.Int
	pair        model.TokenPair
}

func NewLimitOrder(id string, makerToken, takerToken common.Address, makerAmount, takerAmount *uint256.Int) (*LimitOrder, error) {
	pair, err := model.NewTokenPair(makerToken, takerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateToken, err)
	}
	if makerAmount == nil || makerAmount.IsZero() || takerAmount == nil || takerAmount.IsZero() {
		return nil, fmt.Errorf("%w: empty order side", ErrInvalidReserves)
	}
	return &LimitOrder{
		id:          id,
		makerToken:  makerToken,
		takerToken:  takerToken,
		makerAmount: makerAmount.Clone(),
		takerAmount: takerAmount.Clone(),
		pair:        pair,
	}, nil
}

func (o *LimitOrder) ID() string               { return o.id }
func (o *LimitOrder) GasCost() uint64          { return gasLimitOrder }
func (o *LimitOrder) Pairs() []model.TokenPair { return []model.TokenPair{o.pair} }

// AmountOut fills taker tokens in, maker tokens out. The output is capped at
// the order's remaining maker amount; input past the cap buys nothing extra.
func (o *LimitOrder) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	if in.Token != o.takerToken || tokenOut != o.makerToken {
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, in.Token.Hex(), tokenOut.Hex())
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}
	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(in.Amount, o.makerAmount); overflow {
		return model.NewAsset(tokenOut, o.makerAmount.Clone()), nil
	}
	out := product.Div(product, o.takerAmount)
	if out.Gt(o.makerAmount) {
		out = o.makerAmount.Clone()
	}
	return model.NewAsset(tokenOut, out), nil
}

// AmountIn prices an exact maker-token output; requests beyond the maker
// amount cannot be filled.
func (o *LimitOrder) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	if tokenIn != o.takerToken || out.Token != o.makerToken {
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, tokenIn.Hex(), out.Token.Hex())
	}
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}
	if out.Amount.Gt(o.makerAmount) {
		return model.Asset{}, fmt.Errorf("%w: order %s filled beyond maker amount", ErrInvalidReserves, o.id)
	}
	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(out.Amount, o.takerAmount); overflow {
		return model.Asset{}, fmt.Errorf("%w: order %s amount", ErrInvalidReserves, o.id)
	}
	remainder := new(uint256.Int)
	product.DivMod(product, o.makerAmount, remainder)
	if !remainder.IsZero() {
		product.AddUint64(product, 1)
	}
	return model.NewAsset(tokenIn, product), nil
}
