package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

// WeightedPool quotes Balancer weighted-math pools of any arity.
type WeightedPool struct {
	id       string
	reserves Reserves
	weights  []*uint256.Int // aligned with reserves
	fee      model.Rational
}

// NewWeightedPool validates reserves and normalized weights. Weights are
// keyed by token; each must lie in (0, 1) and they must sum to one.
func NewWeightedPool(id string, entries []TokenReserve, weights map[common.Address]*uint256.Int, fee model.Rational) (*WeightedPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	aligned := make([]*uint256.Int, len(reserves))
	sum := new(uint256.Int)
	for i := range reserves {
		w, ok := weights[reserves[i].Token]
		if !ok || w.IsZero() || !w.Lt(fixpoint.One) {
			return nil, fmt.Errorf("%w: weight for token %s", ErrInvalidPoolParameters, reserves[i].Token.Hex())
		}
		aligned[i] = w.Clone()
		sum.Add(sum, w)
	}
	if sum.Cmp(fixpoint.One) != 0 {
		return nil, fmt.Errorf("%w: weights sum to %s", ErrInvalidPoolParameters, sum)
	}
	return &WeightedPool{id: id, reserves: reserves, weights: aligned, fee: fee}, nil
}

func (p *WeightedPool) ID() string               { return p.id }
func (p *WeightedPool) GasCost() uint64          { return gasWeighted }
func (p *WeightedPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

func (p *WeightedPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	idxIn, idxOut, err := p.reserves.IndexPair(in.Token, tokenOut)
	if err != nil {
		return model.Asset{}, err
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}

	afterFee, err := poolmath.SubtractFee(in.Amount, p.fee)
	if err != nil {
		return model.Asset{}, err
	}
	rIn, rOut := &p.reserves[idxIn], &p.reserves[idxOut]
	scaledIn, err := upscaleDown(afterFee, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balIn, err := upscaleDown(rIn.Balance, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balOut, err := upscaleDown(rOut.Balance, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}

	out, err := poolmath.WeightedOutGivenIn(balIn, p.weights[idxIn], balOut, p.weights[idxOut], scaledIn)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func (p *WeightedPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	idxIn, idxOut, err := p.reserves.IndexPair(tokenIn, out.Token)
	if err != nil {
		return model.Asset{}, err
	}
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}

	rIn, rOut := &p.reserves[idxIn], &p.reserves[idxOut]
	scaledOut, err := upscaleUp(out.Amount, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balIn, err := upscaleDown(rIn.Balance, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balOut, err := upscaleDown(rOut.Balance, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}

	in, err := poolmath.WeightedInGivenOut(balIn, p.weights[idxIn], balOut, p.weights[idxOut], scaledOut)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleUp(in, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	withFee, err := poolmath.AddFee(raw, p.fee)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenIn, withFee), nil
}
