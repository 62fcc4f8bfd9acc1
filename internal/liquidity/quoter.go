package liquidity

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"auctionSolver/internal/model"
)

// Quoter is the uniform capability every liquidity edge implements. Amounts
// are quoted adversely to the trader: outputs round down, inputs round up.
// In-memory pools complete synchronously and ignore the context; external
// edges (concentrated V3, vault wrappers) observe cancellation.
type Quoter interface {
	// ID is a stable identifier used for deterministic tie-breaking.
	ID() string
	// Pairs lists every token pair this edge can serve.
	Pairs() []model.TokenPair
	// GasCost estimates the settlement gas of one swap through this edge.
	GasCost() uint64
	// AmountOut quotes the output of selling in.Amount of in.Token.
	AmountOut(ctx context.Context, tokenOut common.Address, in model.Asset) (model.Asset, error)
	// AmountIn quotes the input needed to buy out.Amount of out.Token.
	AmountIn(ctx context.Context, tokenIn common.Address, out model.Asset) (model.Asset, error)
}
