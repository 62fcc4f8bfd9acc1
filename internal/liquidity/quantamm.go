package liquidity

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/fixpoint"
	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

// QuantAMMWeights holds one token's stored weight and its per-second drift
// multiplier in 18-decimal wei.
type QuantAMMWeights struct {
	Weight     *uint256.Int
	Multiplier *big.Int
}

// QuantAMMState is the weight-update schedule captured with the snapshot.
type QuantAMMState struct {
	Weights           map[common.Address]QuantAMMWeights
	LastUpdateTime    uint64
	LastInteropTime   uint64
	CurrentTimestamp  uint64
	MaxTradeSizeRatio *uint256.Int
}

// QuantAMMPool quotes the drifting-weight pool. Weights are interpolated to
// the current timestamp before delegating to weighted math.
type QuantAMMPool struct {
	id          string
	reserves    Reserves
	weights     []*uint256.Int // aligned with reserves
	multipliers []*big.Int
	state       QuantAMMState
	fee         model.Rational
}

func NewQuantAMMPool(id string, entries []TokenReserve, state QuantAMMState, fee model.Rational) (*QuantAMMPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if state.MaxTradeSizeRatio == nil || state.MaxTradeSizeRatio.IsZero() || state.MaxTradeSizeRatio.Gt(fixpoint.One) {
		return nil, fmt.Errorf("%w: max trade size ratio", ErrInvalidPoolParameters)
	}
	weights := make([]*uint256.Int, len(reserves))
	multipliers := make([]*big.Int, len(reserves))
	for i := range reserves {
		w, ok := state.Weights[reserves[i].Token]
		if !ok || w.Weight == nil || w.Weight.IsZero() || !w.Weight.Lt(fixpoint.One) {
			return nil, fmt.Errorf("%w: weight for token %s", ErrInvalidPoolParameters, reserves[i].Token.Hex())
		}
		weights[i] = w.Weight.Clone()
		multipliers[i] = w.Multiplier
		if multipliers[i] == nil {
			multipliers[i] = new(big.Int)
		}
	}
	return &QuantAMMPool{
		id:          id,
		reserves:    reserves,
		weights:     weights,
		multipliers: multipliers,
		state:       state,
		fee:         fee,
	}, nil
}

func (p *QuantAMMPool) ID() string               { return p.id }
func (p *QuantAMMPool) GasCost() uint64          { return gasQuantAMM }
func (p *QuantAMMPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

// weightAt interpolates the stored weight for one reserve slot to the
// current clock, clamped to the interop window.
func (p *QuantAMMPool) weightAt(index int) (*uint256.Int, error) {
	elapsed := poolmath.QuantAMMWeightDelta(p.state.CurrentTimestamp, p.state.LastUpdateTime, p.state.LastInteropTime)
	return poolmath.QuantAMMInterpolateWeight(p.weights[index], p.multipliers[index], elapsed)
}

func (p *QuantAMMPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	idxIn, idxOut, err := p.reserves.IndexPair(in.Token, tokenOut)
	if err != nil {
		return model.Asset{}, err
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}

	netIn, err := poolmath.SubtractFee(in.Amount, p.fee)
	if err != nil {
		return model.Asset{}, err
	}
	rIn, rOut := &p.reserves[idxIn], &p.reserves[idxOut]
	scaledIn, err := upscaleDown(netIn, rIn.ScalingFactor, rIn.Rate)
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
	weightIn, err := p.weightAt(idxIn)
	if err != nil {
		return model.Asset{}, err
	}
	weightOut, err := p.weightAt(idxOut)
	if err != nil {
		return model.Asset{}, err
	}

	out, err := poolmath.QuantAMMOutGivenIn(balIn, weightIn, balOut, weightOut, scaledIn, p.state.MaxTradeSizeRatio)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func (p *QuantAMMPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
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
	weightIn, err := p.weightAt(idxIn)
	if err != nil {
		return model.Asset{}, err
	}
	weightOut, err := p.weightAt(idxOut)
	if err != nil {
		return model.Asset{}, err
	}

	in, err := poolmath.QuantAMMInGivenOut(balIn, weightIn, balOut, weightOut, scaledOut, p.state.MaxTradeSizeRatio)
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
