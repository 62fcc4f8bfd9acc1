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

// Gyro2CLPPool is a two-token concentrated constant-product pool with a
// price interval given by sqrt(alpha) and sqrt(beta).
type Gyro2CLPPool struct {
	id        string
	reserves  Reserves
	sqrtAlpha *uint256.Int
	sqrtBeta  *uint256.Int
	fee       model.Rational
}

func NewGyro2CLPPool(id string, entries []TokenReserve, sqrtAlpha, sqrtBeta *uint256.Int, fee model.Rational) (*Gyro2CLPPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if len(reserves) != 2 {
		return nil, fmt.Errorf("%w: 2-CLP needs exactly 2 tokens, have %d", ErrInvalidReserves, len(reserves))
	}
	if sqrtAlpha == nil || sqrtBeta == nil || sqrtAlpha.IsZero() || !sqrtAlpha.Lt(sqrtBeta) {
		return nil, fmt.Errorf("%w: sqrt price bounds", ErrInvalidPoolParameters)
	}
	return &Gyro2CLPPool{
		id:        id,
		reserves:  reserves,
		sqrtAlpha: sqrtAlpha.Clone(),
		sqrtBeta:  sqrtBeta.Clone(),
		fee:       fee,
	}, nil
}

func (p *Gyro2CLPPool) ID() string               { return p.id }
func (p *Gyro2CLPPool) GasCost() uint64          { return gasGyro2CLP }
func (p *Gyro2CLPPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

// virtuals returns the virtual reserve offsets aligned with the sorted
// reserve order.
func (p *Gyro2CLPPool) virtuals(balances []*uint256.Int) ([2]*uint256.Int, error) {
	invariant, err := poolmath.Gyro2Invariant([2]*uint256.Int{balances[0], balances[1]}, p.sqrtAlpha, p.sqrtBeta)
	if err != nil {
		return [2]*uint256.Int{}, err
	}
	offset0, offset1, err := poolmath.Gyro2VirtualOffsets(invariant, p.sqrtAlpha, p.sqrtBeta)
	if err != nil {
		return [2]*uint256.Int{}, err
	}
	return [2]*uint256.Int{offset0, offset1}, nil
}

func (p *Gyro2CLPPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	return gyroAmountOut(p.reserves, p.fee, tokenOut, in, p.virtuals)
}

func (p *Gyro2CLPPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	return gyroAmountIn(p.reserves, p.fee, tokenIn, out, p.virtuals)
}

// Gyro3CLPPool is the three-token sibling with a single cube-root price
// bound.
type Gyro3CLPPool struct {
	id         string
	reserves   Reserves
	root3Alpha *uint256.Int
	fee        model.Rational
}

func NewGyro3CLPPool(id string, entries []TokenReserve, root3Alpha *uint256.Int, fee model.Rational) (*Gyro3CLPPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if len(reserves) != 3 {
		return nil, fmt.Errorf("%w: 3-CLP needs exactly 3 tokens, have %d", ErrInvalidReserves, len(reserves))
	}
	if root3Alpha == nil || root3Alpha.IsZero() || !root3Alpha.Lt(fixpoint.One) {
		return nil, fmt.Errorf("%w: root3Alpha", ErrInvalidPoolParameters)
	}
	return &Gyro3CLPPool{id: id, reserves: reserves, root3Alpha: root3Alpha.Clone(), fee: fee}, nil
}

func (p *Gyro3CLPPool) ID() string               { return p.id }
func (p *Gyro3CLPPool) GasCost() uint64          { return gasGyro3CLP }
func (p *Gyro3CLPPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

func (p *Gyro3CLPPool) virtuals(balances []*uint256.Int) ([3]*uint256.Int, error) {
	invariant, err := poolmath.Gyro3Invariant([3]*uint256.Int{balances[0], balances[1], balances[2]}, p.root3Alpha)
	if err != nil {
		return [3]*uint256.Int{}, err
	}
	offset, err := poolmath.Gyro3VirtualOffset(invariant, p.root3Alpha)
	if err != nil {
		return [3]*uint256.Int{}, err
	}
	return [3]*uint256.Int{offset, offset, offset}, nil
}

func (p *Gyro3CLPPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	virtuals := func(balances []*uint256.Int) ([2]*uint256.Int, error) {
		offsets, err := p.virtuals(balances)
		if err != nil {
			return [2]*uint256.Int{}, err
		}
		return [2]*uint256.Int{offsets[0], offsets[1]}, nil
	}
	return gyroAmountOut(p.reserves, p.fee, tokenOut, in, virtuals)
}

func (p *Gyro3CLPPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	virtuals := func(balances []*uint256.Int) ([2]*uint256.Int, error) {
		offsets, err := p.virtuals(balances)
		if err != nil {
			return [2]*uint256.Int{}, err
		}
		return [2]*uint256.Int{offsets[0], offsets[1]}, nil
	}
	return gyroAmountIn(p.reserves, p.fee, tokenIn, out, virtuals)
}

// gyroAmountOut runs the shared scale-fee-swap pipeline for the CLP pools.
// The virtuals callback maps scaled balances to virtual offsets for the in
// and out positions; the 3-CLP offset is uniform across tokens.
func gyroAmountOut(reserves Reserves, fee model.Rational, tokenOut common.Address, in model.Asset, virtuals func([]*uint256.Int) ([2]*uint256.Int, error)) (model.Asset, error) {
	idxIn, idxOut, err := reserves.IndexPair(in.Token, tokenOut)
	if err != nil {
		return model.Asset{}, err
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}

	netIn, err := poolmath.SubtractFee(in.Amount, fee)
	if err != nil {
		return model.Asset{}, err
	}
	rIn, rOut := &reserves[idxIn], &reserves[idxOut]
	scaledIn, err := upscaleDown(netIn, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balances, err := reserves.ScaledBalances()
	if err != nil {
		return model.Asset{}, err
	}
	offsets, err := virtuals(balances)
	if err != nil {
		return model.Asset{}, err
	}

	virtualIn, virtualOut := offsetFor(offsets, idxIn), offsetFor(offsets, idxOut)
	out, err := poolmath.VirtualOutGivenIn(balances[idxIn], balances[idxOut], virtualIn, virtualOut, scaledIn)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func gyroAmountIn(reserves Reserves, fee model.Rational, tokenIn common.Address, out model.Asset, virtuals func([]*uint256.Int) ([2]*uint256.Int, error)) (model.Asset, error) {
	idxIn, idxOut, err := reserves.IndexPair(tokenIn, out.Token)
	if err != nil {
		return model.Asset{}, err
	}
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}

	rIn, rOut := &reserves[idxIn], &reserves[idxOut]
	scaledOut, err := upscaleUp(out.Amount, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	balances, err := reserves.ScaledBalances()
	if err != nil {
		return model.Asset{}, err
	}
	offsets, err := virtuals(balances)
	if err != nil {
		return model.Asset{}, err
	}

	virtualIn, virtualOut := offsetFor(offsets, idxIn), offsetFor(offsets, idxOut)
	in, err := poolmath.VirtualInGivenOut(balances[idxIn], balances[idxOut], virtualIn, virtualOut, scaledOut)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleUp(in, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	withFee, err := poolmath.AddFee(raw, fee)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenIn, withFee), nil
}

func offsetFor(offsets [2]*uint256.Int, index int) *uint256.Int {
	if index < 2 {
		return offsets[index]
	}
	// Uniform offsets (3-CLP): any slot works.
	return offsets[0]
}
