package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

// GyroECLPPool quotes the elliptic concentrated pool. Derived parameters
// come from the snapshot in 38 decimals and are trusted as consistent with
// the ellipse parameters.
type GyroECLPPool struct {
	id       string
	reserves Reserves
	params   poolmath.EclpParams
	derived  poolmath.EclpDerived
	fee      model.Rational
}

func NewGyroECLPPool(id string, entries []TokenReserve, params poolmath.EclpParams, derived poolmath.EclpDerived, fee model.Rational) (*GyroECLPPool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if len(reserves) != 2 {
		return nil, fmt.Errorf("%w: E-CLP needs exactly 2 tokens, have %d", ErrInvalidReserves, len(reserves))
	}
	if params.Lambda == nil || params.Lambda.Sign() <= 0 || params.C == nil || params.S == nil {
		return nil, fmt.Errorf("%w: ellipse rotation", ErrInvalidPoolParameters)
	}
	if derived.DSq == nil || derived.DSq.Sign() <= 0 {
		return nil, fmt.Errorf("%w: dSq", ErrInvalidPoolParameters)
	}
	return &GyroECLPPool{id: id, reserves: reserves, params: params, derived: derived, fee: fee}, nil
}

func (p *GyroECLPPool) ID() string               { return p.id }
func (p *GyroECLPPool) GasCost() uint64          { return gasGyroE }
func (p *GyroECLPPool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

// invariantVector recomputes the invariant with its error bound from the
// current scaled balances.
func (p *GyroECLPPool) invariantVector(balances [2]*uint256.Int) (poolmath.Vector2, error) {
	invariant, errBound, err := poolmath.EclpCalculateInvariantWithError(balances, p.params, p.derived)
	if err != nil {
		return poolmath.Vector2{}, err
	}
	return poolmath.EclpInvariantVector(invariant, errBound), nil
}

func (p *GyroECLPPool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
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
	r, err := p.invariantVector(balances)
	if err != nil {
		return model.Asset{}, err
	}

	out, err := poolmath.EclpCalcOutGivenIn(balances, scaledIn, idxIn == 0, p.params, p.derived, r)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func (p *GyroECLPPool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
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
	r, err := p.invariantVector(balances)
	if err != nil {
		return model.Asset{}, err
	}

	in, err := poolmath.EclpCalcInGivenOut(balances, scaledOut, idxOut == 1, p.params, p.derived, r)
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
