package dex

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"auctionSolver/internal/chain"
)

// VaultPreviewer reads ERC-4626 preview views via eth_call. It implements
// liquidity.VaultPreviewer.
type VaultPreviewer struct {
	client  *chain.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// NewVaultPreviewer creates a previewer over the chain client.
func NewVaultPreviewer(client *chain.Client, timeout time.Duration, retries int, backoff time.Duration, logger *zap.Logger) (*VaultPreviewer, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	if retries < 0 {
		retries = defaultCallRetries
	}
	if backoff <= 0 {
		backoff = defaultCallBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VaultPreviewer{client: client, timeout: timeout, retries: retries, backoff: backoff, logger: logger}, nil
}

// PreviewDeposit returns the shares minted for depositing assets.
func (p *VaultPreviewer) PreviewDeposit(ctx context.Context, vault common.Address, assets *uint256.Int) (*uint256.Int, error) {
	return p.preview(ctx, vault, "previewDeposit", assets)
}

// PreviewMint returns the assets needed to mint shares.
func (p *VaultPreviewer) PreviewMint(ctx context.Context, vault common.Address, shares *uint256.Int) (*uint256.Int, error) {
	return p.preview(ctx, vault, "previewMint", shares)
}

// PreviewRedeem returns the assets released by redeeming shares.
func (p *VaultPreviewer) PreviewRedeem(ctx context.Context, vault common.Address, shares *uint256.Int) (*uint256.Int, error) {
	return p.preview(ctx, vault, "previewRedeem", shares)
}

// PreviewWithdraw returns the shares burned to withdraw assets.
func (p *VaultPreviewer) PreviewWithdraw(ctx context.Context, vault common.Address, assets *uint256.Int) (*uint256.Int, error) {
	return p.preview(ctx, vault, "previewWithdraw", assets)
}

func (p *VaultPreviewer) preview(ctx context.Context, vault common.Address, method string, amount *uint256.Int) (*uint256.Int, error) {
	parsed, err := ERC4626ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc4626 abi: %w", err)
	}
	data, err := parsed.Pack(method, amount.ToBig())
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var resp []byte
	err = chain.WithRetry(ctx, p.retries, p.backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		msg := ethereum.CallMsg{To: &vault, Data: data}
		resp, err = p.client.CallContract(callCtx, msg, nil)
		return err
	})
	if err != nil {
		p.logger.Debug("preview call failed",
			zap.String("vault", vault.Hex()),
			zap.String("method", method),
			zap.Error(err))
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return asU256(values[0])
}
