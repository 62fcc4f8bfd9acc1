package snapshot

import (
	"auctionSolver/internal/liquidity"
	"auctionSolver/internal/model"
)

// Index is the routing view of a liquidity snapshot: every edge, expanded to
// all token pairs it can serve. Edges keep their insertion order per pair, so
// the same snapshot always yields the same candidate ordering. The index is
// read-only after Build.
type Index struct {
	edges  []liquidity.Quoter
	byPair map[model.TokenPair][]int
	pairs  []model.TokenPair // first-seen order
}

// Build constructs the index from a snapshot's edges.
func Build(edges []liquidity.Quoter) *Index {
	ix := &Index{
		edges:  make([]liquidity.Quoter, 0, len(edges)),
		byPair: make(map[model.TokenPair][]int),
	}
	for _, edge := range edges {
		if edge == nil {
			continue
		}
		slot := len(ix.edges)
		ix.edges = append(ix.edges, edge)
		for _, pair := range edge.Pairs() {
			if _, seen := ix.byPair[pair]; !seen {
				ix.pairs = append(ix.pairs, pair)
			}
			ix.byPair[pair] = append(ix.byPair[pair], slot)
		}
	}
	return ix
}

// Edges returns the edges serving a pair, in insertion order.
func (ix *Index) Edges(pair model.TokenPair) []liquidity.Quoter {
	slots := ix.byPair[pair]
	if len(slots) == 0 {
		return nil
	}
	out := make([]liquidity.Quoter, len(slots))
	for i, slot := range slots {
		out[i] = ix.edges[slot]
	}
	return out
}

// Pairs lists every indexed pair in first-seen order.
func (ix *Index) Pairs() []model.TokenPair {
	out := make([]model.TokenPair, len(ix.pairs))
	copy(out, ix.pairs)
	return out
}

// AllEdges lists every edge in insertion order.
func (ix *Index) AllEdges() []liquidity.Quoter {
	out := make([]liquidity.Quoter, len(ix.edges))
	copy(out, ix.edges)
	return out
}

// Size is the number of edges in the index.
func (ix *Index) Size() int { return len(ix.edges) }

// Edge looks up an edge by its identifier.
func (ix *Index) Edge(id string) (liquidity.Quoter, bool) {
	for _, edge := range ix.edges {
		if edge.ID() == id {
			return edge, true
		}
	}
	return nil, false
}
