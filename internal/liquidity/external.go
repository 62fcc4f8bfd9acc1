package liquidity

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/model"
)

// ConcentratedOracle quotes tick-based concentrated liquidity off-process,
// typically through an on-chain quoter contract.
type ConcentratedOracle interface {
	QuoteExactIn(ctx context.Context, pool common.Address, tokenIn, tokenOut common.Address, amountIn *uint256.Int, feeTier uint32) (*uint256.Int, error)
	QuoteExactOut(ctx context.Context, pool common.Address, tokenIn, tokenOut common.Address, amountOut *uint256.Int, feeTier uint32) (*uint256.Int, error)
}

// ConcentratedPool delegates quoting to a ConcentratedOracle. Oracle
// failures surface as ErrQuoterUnavailable so the router can drop the edge
// without failing the whole search.
type ConcentratedPool struct {
	id      string
	address common.Address
	pair    model.TokenPair
	feeTier uint32
	oracle  ConcentratedOracle
}

func NewConcentratedPool(id string, address, tokenA, tokenB common.Address, feeTier uint32, oracle ConcentratedOracle) (*ConcentratedPool, error) {
	pair, err := model.NewTokenPair(tokenA, tokenB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateToken, err)
	}
	if oracle == nil {
		return nil, fmt.Errorf("%w: nil oracle", ErrInvalidPoolParameters)
	}
	return &ConcentratedPool{id: id, address: address, pair: pair, feeTier: feeTier, oracle: oracle}, nil
}

func (p *ConcentratedPool) ID() string               { return p.id }
func (p *ConcentratedPool) GasCost() uint64          { return gasConcentrated }
func (p *ConcentratedPool) Pairs() []model.TokenPair { return []model.TokenPair{p.pair} }

func (p *ConcentratedPool) contains(token common.Address) bool {
	return token == p.pair.A || token == p.pair.B
}

func (p *ConcentratedPool) AmountOut(ctx context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	if !p.contains(in.Token) || !p.contains(tokenOut) || in.Token == tokenOut {
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, in.Token.Hex(), tokenOut.Hex())
	}
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}
	out, err := p.oracle.QuoteExactIn(ctx, p.address, in.Token, tokenOut, in.Amount, p.feeTier)
	if err != nil {
		return model.Asset{}, fmt.Errorf("%w: pool %s: %v", ErrQuoterUnavailable, p.id, err)
	}
	return model.NewAsset(tokenOut, out), nil
}

func (p *ConcentratedPool) AmountIn(ctx context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	if !p.contains(tokenIn) || !p.contains(out.Token) || tokenIn == out.Token {
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, tokenIn.Hex(), out.Token.Hex())
	}
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}
	in, err := p.oracle.QuoteExactOut(ctx, p.address, tokenIn, out.Token, out.Amount, p.feeTier)
	if err != nil {
		return model.Asset{}, fmt.Errorf("%w: pool %s: %v", ErrQuoterUnavailable, p.id, err)
	}
	return model.NewAsset(tokenIn, in), nil
}

// VaultPreviewer exposes the four ERC-4626 preview views of a vault.
type VaultPreviewer interface {
	PreviewDeposit(ctx context.Context, vault common.Address, assets *uint256.Int) (*uint256.Int, error)
	PreviewMint(ctx context.Context, vault common.Address, shares *uint256.Int) (*uint256.Int, error)
	PreviewRedeem(ctx context.Context, vault common.Address, shares *uint256.Int) (*uint256.Int, error)
	PreviewWithdraw(ctx context.Context, vault common.Address, assets *uint256.Int) (*uint256.Int, error)
}

const defaultEpsilonBps = 5

// VaultEdge is a wrap/unwrap edge between an ERC-4626 vault share token and
// its underlying asset. Exact-output quotes are padded by epsilonBps to
// absorb preview rounding drift between quote time and settlement.
type VaultEdge struct {
	id         string
	asset      common.Address
	vault      common.Address
	epsilonBps uint64
	previewer  VaultPreviewer
}

func NewVaultEdge(id string, asset, vault common.Address, epsilonBps uint64, previewer VaultPreviewer) (*VaultEdge, error) {
	if asset == vault {
		return nil, fmt.Errorf("%w: vault equals asset", ErrDuplicateToken)
	}
	if previewer == nil {
		return nil, fmt.Errorf("%w: nil previewer", ErrInvalidPoolParameters)
	}
	if epsilonBps == 0 {
		epsilonBps = defaultEpsilonBps
	}
	return &VaultEdge{id: id, asset: asset, vault: vault, epsilonBps: epsilonBps, previewer: previewer}, nil
}

func (e *VaultEdge) ID() string      { return e.id }
func (e *VaultEdge) GasCost() uint64 { return gasERC4626 }

func (e *VaultEdge) Pairs() []model.TokenPair {
	pair, _ := model.NewTokenPair(e.asset, e.vault)
	return []model.TokenPair{pair}
}

// padBps rounds amount up by the edge's epsilon in basis points.
func (e *VaultEdge) padBps(amount *uint256.Int) *uint256.Int {
	const bpsDenominator = 10_000
	padded := new(uint256.Int).Mul(amount, uint256.NewInt(bpsDenominator+e.epsilonBps))
	remainder := new(uint256.Int)
	padded.DivMod(padded, uint256.NewInt(bpsDenominator), remainder)
	if !remainder.IsZero() {
		padded.AddUint64(padded, 1)
	}
	return padded
}

func (e *VaultEdge) AmountOut(ctx context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error) {
	if in.Amount.IsZero() {
		return model.NewAsset(tokenOut, nil), nil
	}
	var (
		out *uint256.Int
		err error
	)
	switch {
	case in.Token == e.asset && tokenOut == e.vault:
		out, err = e.previewer.PreviewDeposit(ctx, e.vault, in.Amount)
	case in.Token == e.vault && tokenOut == e.asset:
		out, err = e.previewer.PreviewRedeem(ctx, e.vault, in.Amount)
	default:
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, in.Token.Hex(), tokenOut.Hex())
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("%w: vault %s: %v", ErrQuoterUnavailable, e.vault.Hex(), err)
	}
	return model.NewAsset(tokenOut, out), nil
}

func (e *VaultEdge) AmountIn(ctx context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error) {
	if out.Amount.IsZero() {
		return model.NewAsset(tokenIn, nil), nil
	}
	var (
		in  *uint256.Int
		err error
	)
	switch {
	case tokenIn == e.asset && out.Token == e.vault:
		in, err = e.previewer.PreviewMint(ctx, e.vault, out.Amount)
	case tokenIn == e.vault && out.Token == e.asset:
		in, err = e.previewer.PreviewWithdraw(ctx, e.vault, out.Amount)
	default:
		return model.Asset{}, fmt.Errorf("%w: %s/%s", ErrUnknownTokenPair, tokenIn.Hex(), out.Token.Hex())
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("%w: vault %s: %v", ErrQuoterUnavailable, e.vault.Hex(), err)
	}
	return model.NewAsset(tokenIn, e.padBps(in)), nil
}
