package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"auctionSolver/internal/chain"
)

const (
	defaultCallTimeout = 2 * time.Second
	defaultCallRetries = 2
	defaultCallBackoff = 100 * time.Millisecond
)

// ConcentratedQuoter quotes tick-based V3 pools through the on-chain
// QuoterV2 contract. It implements liquidity.ConcentratedOracle.
type ConcentratedQuoter struct {
	client  *chain.Client
	quoter  common.Address
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

// NewConcentratedQuoter creates a quoter bound to a QuoterV2 deployment.
func NewConcentratedQuoter(client *chain.Client, quoter common.Address, timeout time.Duration, retries int, backoff time.Duration, logger *zap.Logger) (*ConcentratedQuoter, error) {
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
	return &ConcentratedQuoter{
		client:  client,
		quoter:  quoter,
		timeout: timeout,
		retries: retries,
		backoff: backoff,
		logger:  logger,
	}, nil
}

type quoteExactInputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

type quoteExactOutputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Amount            *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// QuoteExactIn returns the output of selling amountIn through the pool's
// fee tier.
func (q *ConcentratedQuoter) QuoteExactIn(ctx context.Context, pool, tokenIn, tokenOut common.Address, amountIn *uint256.Int, feeTier uint32) (*uint256.Int, error) {
	params := quoteExactInputParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn.ToBig(),
		Fee:               new(big.Int).SetUint64(uint64(feeTier)),
		SqrtPriceLimitX96: new(big.Int),
	}
	out, err := q.quoteSingle(ctx, "quoteExactInputSingle", params)
	if err != nil {
		q.logger.Debug("exact-in quote failed",
			zap.String("pool", pool.Hex()),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

// QuoteExactOut returns the input needed to buy amountOut through the pool's
// fee tier.
func (q *ConcentratedQuoter) QuoteExactOut(ctx context.Context, pool, tokenIn, tokenOut common.Address, amountOut *uint256.Int, feeTier uint32) (*uint256.Int, error) {
	params := quoteExactOutputParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		Amount:            amountOut.ToBig(),
		Fee:               new(big.Int).SetUint64(uint64(feeTier)),
		SqrtPriceLimitX96: new(big.Int),
	}
	in, err := q.quoteSingle(ctx, "quoteExactOutputSingle", params)
	if err != nil {
		q.logger.Debug("exact-out quote failed",
			zap.String("pool", pool.Hex()),
			zap.Error(err))
		return nil, err
	}
	return in, nil
}

func (q *ConcentratedQuoter) quoteSingle(ctx context.Context, method string, params interface{}) (*uint256.Int, error) {
	parsed, err := QuoterV2ABI()
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}

	values, err := q.call(ctx, q.quoter, parsed, method, params)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return asU256(values[0])
}

// call performs one eth_call with the per-call timeout and retry policy.
func (q *ConcentratedQuoter) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var resp []byte
	err = chain.WithRetry(ctx, q.retries, q.backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, q.timeout)
		defer cancel()
		msg := ethereum.CallMsg{To: &to, Data: data}
		resp, err = q.client.CallContract(callCtx, msg, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asU256(value interface{}) (*uint256.Int, error) {
	b, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported amount type %T", value)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("amount overflows uint256: %s", b)
	}
	return u, nil
}
