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

// StablePool quotes Curve-style stable-math pools.
type StablePool struct {
	id       string
	reserves Reserves
	amp      poolmath.Amplification
	fee      model.Rational
}

func NewStablePool(id string, entries []TokenReserve, ampFactor, ampPrecision *uint256.Int, fee model.Rational) (*StablePool, error) {
	reserves, err := NewReserves(entries)
	if err != nil {
		return nil, err
	}
	if ampPrecision == nil || ampPrecision.IsZero() {
		return nil, ErrInvalidAmplificationPrecision
	}
	if ampFactor == nil || ampFactor.IsZero() {
		return nil, fmt.Errorf("%w: zero amplification factor", ErrInvalidPoolParameters)
	}
	return &StablePool{
		id:       id,
		reserves: reserves,
		amp:      poolmath.Amplification{Factor: ampFactor.Clone(), Precision: ampPrecision.Clone()},
		fee:      fee,
	}, nil
}

func (p *StablePool) ID() string               { return p.id }
func (p *StablePool) GasCost() uint64          { return gasStable }
func (p *StablePool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

func (p *StablePool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	afterFee := func(amount *uint256.Int) (*uint256.Int, error) {
		return poolmath.SubtractFee(amount, p.fee)
	}
	return stableAmountOut(p.reserves, p.amp, tokenOut, in, afterFee)
}

func (p *StablePool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	withFee := func(amount *uint256.Int) (*uint256.Int, error) {
		return poolmath.AddFee(amount, p.fee)
	}
	return stableAmountIn(p.reserves, p.amp, tokenIn, out, withFee)
}

// stableAmountOut is shared between plain stable pools and the surge-fee
// variant; the fee policy is passed in.
func stableAmountOut(reserves Reserves, amp poolmath.Amplification, tokenOut common.Address, in model.Asset, subtractFee func(*uint256.Int) (*uint256.Int, error)) (model.Asset, error) {
	idxIn, idxOut, err := reserves.IndexPair(in.Token, tokenOut)
	if err != nil {
		return model.Asset{}, err
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}

	netIn, err := subtractFee(in.Amount)
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

	out, err := poolmath.StableOutGivenIn(amp, balances, idxIn, idxOut, scaledIn)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleDown(out, rOut.ScalingFactor, rOut.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenOut, raw), nil
}

func stableAmountIn(reserves Reserves, amp poolmath.Amplification, tokenIn common.Address, out model.Asset, addFee func(*uint256.Int) (*uint256.Int, error)) (model.Asset, error) {
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

	in, err := poolmath.StableInGivenOut(amp, balances, idxIn, idxOut, scaledOut)
	if err != nil {
		return model.Asset{}, err
	}
	raw, err := downscaleUp(in, rIn.ScalingFactor, rIn.Rate)
	if err != nil {
		return model.Asset{}, err
	}
	withFee, err := addFee(raw)
	if err != nil {
		return model.Asset{}, err
	}
	return model.NewAsset(tokenIn, withFee), nil
}

// StableSurgePool is a stable pool whose fee surges with pool imbalance.
type StableSurgePool struct {
	id          string
	reserves    Reserves
	amp         poolmath.Amplification
	staticFee   *uint256.Int // 18-decimal
	threshold   *uint256.Int
	maxSurgeFee *uint256.Int
}

func NewStableSurgePool(id string, entries []TokenReserve, ampFactor, ampPrecision *uint256.Int, fee model.Rational, threshold, maxSurgeFee *uint256.Int) (*StableSurgePool, error) {
	base, err := NewStablePool(id, entries, ampFactor, ampPrecision, fee)
	if err != nil {
		return nil, err
	}
	if threshold == nil || maxSurgeFee == nil || threshold.Gt(fixpoint.One) || maxSurgeFee.Gt(fixpoint.One) {
		return nil, ErrSurgeParameterOutOfRange
	}
	staticFee, err := poolmath.FeeToWad(fee)
	if err != nil {
		return nil, err
	}
	return &StableSurgePool{
		id:          id,
		reserves:    base.reserves,
		amp:         base.amp,
		staticFee:   staticFee,
		threshold:   threshold.Clone(),
		maxSurgeFee: maxSurgeFee.Clone(),
	}, nil
}

func (p *StableSurgePool) ID() string               { return p.id }
func (p *StableSurgePool) GasCost() uint64          { return gasStableSurge }
func (p *StableSurgePool) Pairs() []model.TokenPair { return p.reserves.Pairs() }

// surgeFee derives the current 18-decimal fee from the pre-swap balances.
func (p *StableSurgePool) surgeFee() (*uint256.Int, error) {
	balances, err := p.reserves.ScaledBalances()
	if err != nil {
		return nil, err
	}
	return poolmath.SurgeFee(balances, p.staticFee, p.threshold, p.maxSurgeFee)
}

func (p *StableSurgePool) AmountOut(_ context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	fee, err := p.surgeFee()
	if err != nil {
		return model.Asset{}, err
	}
	subtract := func(amount *uint256.Int) (*uint256.Int, error) {
		feeAmount, err := fixpoint.MulUp(amount, fee)
		if err != nil {
			return nil, err
		}
		return fixpoint.Sub(amount, feeAmount)
	}
	return stableAmountOut(p.reserves, p.amp, tokenOut, in, subtract)
}

func (p *StableSurgePool) AmountIn(_ context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	fee, err := p.surgeFee()
	if err != nil {
		return model.Asset{}, err
	}
	add := func(amount *uint256.Int) (*uint256.Int, error) {
		keep := fixpoint.Complement(fee)
		return fixpoint.DivUp(amount, keep)
	}
	return stableAmountIn(p.reserves, p.amp, tokenIn, out, add)
}
