package router

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"auctionSolver/internal/liquidity"
	"auctionSolver/internal/model"
	"auctionSolver/internal/snapshot"
)

// Config tunes the baseline path-search solver.
type Config struct {
	// BaseTokens are the well-connected intermediaries used as interior
	// path tokens.
	BaseTokens []string
	// MaxHops caps the route length; 2 or 3 in practice.
	MaxHops int
	// Deadline bounds one solve call. Zero means no deadline.
	Deadline time.Duration
	// Parallelism bounds concurrent candidate simulations; defaults to
	// GOMAXPROCS.
	Parallelism int
}

// Router runs the baseline path search over a snapshot index.
type Router struct {
	index       *snapshot.Index
	bases       []common.Address
	maxHops     int
	deadline    time.Duration
	parallelism int
	logger      *zap.Logger
}

// candidate is one concrete edge sequence along a token path.
type candidate struct {
	tokens []common.Address
	edges  []liquidity.Quoter
}

// New builds a router over the index.
func New(index *snapshot.Index, cfg Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxHops := cfg.MaxHops
	if maxHops < 1 {
		maxHops = 2
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	bases := make([]common.Address, 0, len(cfg.BaseTokens))
	for _, base := range cfg.BaseTokens {
		bases = append(bases, common.HexToAddress(base))
	}
	return &Router{
		index:       index,
		bases:       bases,
		maxHops:     maxHops,
		deadline:    cfg.Deadline,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Solve finds the best route for one order: maximum output for sell orders,
// minimum input for buy orders. All candidate edge sequences are simulated
// in parallel; on deadline the best completed candidate is returned.
func (r *Router) Solve(ctx context.Context, order model.Order) (model.Route, error) {
	if err := order.Validate(); err != nil {
		return model.Route{}, fmt.Errorf("%w: %v", ErrNoValidRoute, err)
	}
	if r.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.deadline)
		defer cancel()
	}

	candidates := r.enumerate(order)
	if len(candidates) == 0 {
		return model.Route{}, ErrNoValidRoute
	}

	type outcome struct {
		route model.Route
		err   error
	}
	results := make([]outcome, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.parallelism)
	for i := range candidates {
		i := i
		group.Go(func() error {
			route, err := r.simulate(groupCtx, order, candidates[i])
			results[i] = outcome{route: route, err: err}
			// Candidate failures are diagnostics, never group aborts.
			return nil
		})
	}
	_ = group.Wait()

	best := -1
	var completed, timedOut bool
	for i := range results {
		if err := results[i].err; err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				timedOut = true
			} else {
				r.logger.Debug("candidate dropped",
					zap.String("edges", edgeIDs(candidates[i].edges)),
					zap.Error(err))
			}
			continue
		}
		completed = true
		if !meetsLimit(order, results[i].route) {
			r.logger.Debug("candidate below limit",
				zap.String("edges", edgeIDs(candidates[i].edges)))
			continue
		}
		if best < 0 || better(order, results[i].route, results[best].route) {
			best = i
		}
	}

	switch {
	case best >= 0:
		return results[best].route, nil
	case timedOut && !completed:
		return model.Route{}, ErrTimeout
	case completed:
		return model.Route{}, ErrLimitPriceNotMet
	default:
		return model.Route{}, ErrNoValidRoute
	}
}

// enumerate expands token sequences into every concrete edge sequence, in
// deterministic order.
func (r *Router) enumerate(order model.Order) []candidate {
	sequences := tokenSequences(order.Sell.Token, order.Buy.Token, r.bases, r.maxHops)
	var candidates []candidate
	for _, tokens := range sequences {
		perPair := make([][]liquidity.Quoter, len(tokens)-1)
		feasible := true
		for i := 0; i+1 < len(tokens); i++ {
			pair, err := model.NewTokenPair(tokens[i], tokens[i+1])
			if err != nil {
				feasible = false
				break
			}
			edges := r.index.Edges(pair)
			if len(edges) == 0 {
				feasible = false
				break
			}
			perPair[i] = edges
		}
		if !feasible {
			continue
		}
		candidates = appendProduct(candidates, tokens, perPair)
	}
	return candidates
}

// appendProduct expands the Cartesian product of per-pair edge choices.
func appendProduct(candidates []candidate, tokens []common.Address, perPair [][]liquidity.Quoter) []candidate {
	choice := make([]int, len(perPair))
	for {
		edges := make([]liquidity.Quoter, len(perPair))
		for i := range perPair {
			edges[i] = perPair[i][choice[i]]
		}
		candidates = append(candidates, candidate{tokens: tokens, edges: edges})

		pos := len(choice) - 1
		for pos >= 0 {
			choice[pos]++
			if choice[pos] < len(perPair[pos]) {
				break
			}
			choice[pos] = 0
			pos--
		}
		if pos < 0 {
			return candidates
		}
	}
}

// simulate quotes a candidate hop by hop: forward for sell orders, backward
// for buy orders.
func (r *Router) simulate(ctx context.Context, order model.Order, cand candidate) (model.Route, error) {
	segments := make([]model.Segment, len(cand.edges))
	switch order.Side {
	case model.SideBuy:
		want := order.Buy
		for i := len(cand.edges) - 1; i >= 0; i-- {
			edge := cand.edges[i]
			in, err := edge.AmountIn(ctx, cand.tokens[i], want)
			if err != nil {
				return model.Route{}, err
			}
			segments[i] = model.Segment{
				EdgeID: edge.ID(),
				Input:  in,
				Output: want,
				Gas:    edge.GasCost(),
			}
			want = in
		}
	default:
		have := order.Sell
		for i, edge := range cand.edges {
			out, err := edge.AmountOut(ctx, cand.tokens[i+1], have)
			if err != nil {
				return model.Route{}, err
			}
			segments[i] = model.Segment{
				EdgeID: edge.ID(),
				Input:  have,
				Output: out,
				Gas:    edge.GasCost(),
			}
			have = out
		}
	}

	route := model.Route{Segments: segments}
	if err := route.Validate(order); err != nil {
		return model.Route{}, err
	}
	return route, nil
}

// meetsLimit checks the order's side-specific constraint.
func meetsLimit(order model.Order, route model.Route) bool {
	if order.Side == model.SideBuy {
		limit := order.Sell.Amount
		if limit == nil || limit.IsZero() {
			// No maximum given.
			return true
		}
		return !route.SellAmount().Amount.Gt(limit)
	}
	minimum := order.Buy.Amount
	if minimum == nil {
		minimum = new(uint256.Int)
	}
	return !route.BuyAmount().Amount.Lt(minimum)
}

// better ranks two valid routes: amount first, then gas, then the stable
// edge-identifier ordering.
func better(order model.Order, a, b model.Route) bool {
	if order.Side == model.SideBuy {
		if cmp := a.SellAmount().Amount.Cmp(b.SellAmount().Amount); cmp != 0 {
			return cmp < 0
		}
	} else {
		if cmp := a.BuyAmount().Amount.Cmp(b.BuyAmount().Amount); cmp != 0 {
			return cmp > 0
		}
	}
	if a.Gas() != b.Gas() {
		return a.Gas() < b.Gas()
	}
	return routeIDs(a) < routeIDs(b)
}

func routeIDs(route model.Route) string {
	ids := make([]string, len(route.Segments))
	for i, segment := range route.Segments {
		ids[i] = segment.EdgeID
	}
	return strings.Join(ids, "|")
}

func edgeIDs(edges []liquidity.Quoter) string {
	ids := make([]string, len(edges))
	for i, edge := range edges {
		ids[i] = edge.ID()
	}
	return strings.Join(ids, "|")
}
