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

// ReClammState carries the rebalancing state captured with the snapshot.
// Virtual balances follow the sorted token order. CurrentTimestamp is the
// quote-time clock, normally the snapshot block timestamp.
type ReClammState struct {
	VirtualBalances           [2]*uint256.Int
	DailyShiftBase            *uint256.Int
	CenterednessMargin        *uint256.Int
	StartFourthRootPriceRatio *uint256.Int
	EndFourthRootPriceRatio   *uint256.Int
	PriceRatioUpdateStart     uint64
	PriceRatioUpdateEnd       uint64
	LastTimestamp             uint64
	CurrentTimestamp          uint64
}

// ReClammPool quotes the readjusting concentrated pool. Each quote first
// rolls the virtual balances forward to the current timestamp, then swaps
// against real plus virtual totals.
type ReClammPool struct {
	id       string
	reserves Reserves
	state    ReClammState
	fee      model.Rational
}

func NewReClammPool(id string, entries []TokenReserve, state ReClammState, fee model.Rational) (*ReClammPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if len(reserves) != 2 {
		return nil, fmt.Errorf("%w: reclamm needs exactly 2 tokens, have %d", ErrInvalidReserves, len(reserves))
	}
	for _, v := range state.VirtualBalances {
		if v == nil || v.IsZero() {
			return nil, fmt.Errorf("%w: empty virtual balance", ErrInvalidPoolParameters)
		}
	}
	if state.DailyShiftBase == nil || state.DailyShiftBase.IsZero() || state.DailyShiftBase.Gt(fixpoint.One) {
		return nil, fmt.Errorf("%w: daily shift base", ErrInvalidPoolParameters)
	}
	if state.CenterednessMargin == nil || state.CenterednessMargin.Gt(fixpoint.One) {
		return nil, fmt.Errorf("%w: centeredness margin", ErrInvalidPoolParameters)
	}
	if state.StartFourthRootPriceRatio == nil || state.EndFourthRootPriceRatio == nil {
		return nil, fmt.Errorf("%w: price ratio bounds", ErrInvalidPoolParameters)
	}
	if state.CurrentTimestamp < state.LastTimestamp {
		return nil, fmt.Errorf("%w: clock behind last update", ErrInvalidPoolParameters)
	}
	return &ReClammPool{id: id, reserves: reserves, state: state, fee: fee}, nil
}

func (p *ReClammPool) ID() string               { return p.id }
func (p *ReClammPool) GasCost() uint64          { return gasReClamm }
func (p *ReClammPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

// currentVirtuals rolls the snapshot virtual balances forward: first the
// price-ratio update if one is in progress, then the range drift when the
// pool sits outside its centeredness margin.
func (p *ReClammPool) currentVirtuals(balances [2]*uint256.Int) ([2]*uint256.Int, error) {
	s := &p.state
	virtuals := [2]*uint256.Int{s.VirtualBalances[0].Clone(), s.VirtualBalances[1].Clone()}

	frpr, err := poolmath.ReClammFourthRootPriceRatio(
		s.CurrentTimestamp, s.PriceRatioUpdateStart, s.PriceRatioUpdateEnd,
		s.StartFourthRootPriceRatio, s.EndFourthRootPriceRatio,
	)
	if err != nil {
		return virtuals, err
	}
	if s.CurrentTimestamp > s.PriceRatioUpdateStart && s.LastTimestamp < s.PriceRatioUpdateEnd {
		virtuals, err = poolmath.ReClammVirtualsForPriceRatio(frpr, balances, virtuals)
		if err != nil {
			return virtuals, err
		}
	}

	centeredness, _, err := poolmath.ReClammCenteredness(balances, virtuals)
	if err != nil {
		return virtuals, err
	}
	if centeredness.Lt(s.CenterednessMargin) {
		sqrtPriceRatio, err := fixpoint.MulDown(frpr, frpr)
		if err != nil {
			return virtuals, err
		}
		virtuals, err = poolmath.ReClammVirtualsForTimeShift(
			balances, virtuals, sqrtPriceRatio, s.DailyShiftBase,
			s.CurrentTimestamp-s.LastTimestamp,
		)
		if err != nil {
			return virtuals, err
		}
	}
	return virtuals, nil
}

func (p *ReClammPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
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
	scaled, err := p.reserves.ScaledBalances()
	if err != nil {
		return model.Asset{}, err
	}
	balances := [2]*uint256.Int{scaled[0], scaled[1]}
	virtuals, err := p.currentVirtuals(balances)
	if err != nil {
		return model.Asset{}, err
	}

	out, err := poolmath.ReClammOutGivenIn(balances, virtuals, idxIn, idxOut, scaledIn)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func (p *ReClammPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
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
	scaled, err := p.reserves.ScaledBalances()
	if err != nil {
		return model.Asset{}, err
	}
	balances := [2]*uint256.Int{scaled[0], scaled[1]}
	virtuals, err := p.currentVirtuals(balances)
	if err != nil {
		return model.Asset{}, err
	}

	in, err := poolmath.ReClammInGivenOut(balances, virtuals, idxIn, idxOut, scaledOut)
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
