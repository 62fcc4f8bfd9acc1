package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTraversal reports a route whose segments do not chain.
var ErrInvalidTraversal = errors.New("model: invalid route traversal")

// Segment is one hop of a route: a single swap through a single liquidity
// edge.
type Segment struct {
	EdgeID string
	Input  Asset
	Output Asset
	Gas    uint64
}

// Route is a non-empty ordered sequence of segments executing one order.
type Route struct {
	Segments []Segment
}

// Gas returns the summed gas estimate of all segments.
func (r Route) Gas() uint64 {
	var total uint64
	for _, seg := range r.Segments {
		total += seg.Gas
	}
	return total
}

// SellAmount is the input amount of the first segment.
func (r Route) SellAmount() Asset {
	return r.Segments[0].Input
}

// BuyAmount is the output amount of the last segment.
func (r Route) BuyAmount() Asset {
	return r.Segments[len(r.Segments)-1].Output
}

// Validate enforces the chaining invariant: each segment's output token feeds
// the next segment's input token, and the route endpoints match the order.
func (r Route) Validate(order Order) error {
	if len(r.Segments) == 0 {
		return fmt.Errorf("%w: empty route", ErrInvalidTraversal)
	}
	if r.Segments[0].Input.Token != order.Sell.Token {
		return fmt.Errorf("%w: route starts at %s, order sells %s",
			ErrInvalidTraversal, r.Segments[0].Input.Token.Hex(), order.Sell.Token.Hex())
	}
	last := r.Segments[len(r.Segments)-1]
	if last.Output.Token != order.Buy.Token {
		return fmt.Errorf("%w: route ends at %s, order buys %s",
			ErrInvalidTraversal, last.Output.Token.Hex(), order.Buy.Token.Hex())
	}
	for i := 0; i+1 < len(r.Segments); i++ {
		if r.Segments[i].Output.Token != r.Segments[i+1].Input.Token {
			return fmt.Errorf("%w: segment %d outputs %s, segment %d expects %s",
				ErrInvalidTraversal, i, r.Segments[i].Output.Token.Hex(),
				i+1, r.Segments[i+1].Input.Token.Hex())
		}
	}
	return nil
}
