package snapshot

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"auctionSolver/internal/liquidity"
	"auctionSolver/internal/model"
)

func addr(b byte) common.Address {
	var a common.Address
	a[common.AddressLength-1] = b
	return a
}

func pair(t *testing.T, x, y common.Address) model.TokenPair {
	t.Helper()
	p, err := model.NewTokenPair(x, y)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	return p
}

func cpPool(t *testing.T, id string, x, y common.Address) liquidity.Quoter {
	t.Helper()
	fee := model.Rational{Num: new(uint256.Int), Den: uint256.NewInt(1)}
	pool, err := liquidity.NewConstantProductPool(id, x, y, uint256.NewInt(1e18), uint256.NewInt(1e18), fee)
	if err != nil {
		t.Fatalf("pool %s: %v", id, err)
	}
	return pool
}

func TestIndexStableOrder(t *testing.T) {
	edges := []liquidity.Quoter{
		cpPool(t, "p-1", addr(1), addr(2)),
		cpPool(t, "p-2", addr(1), addr(2)),
		cpPool(t, "p-3", addr(2), addr(3)),
	}
	ix := Build(edges)
	if ix.Size() != 3 {
		t.Fatalf("size: got %d", ix.Size())
	}

	got := ix.Edges(pair(t, addr(2), addr(1)))
	if len(got) != 2 || got[0].ID() != "p-1" || got[1].ID() != "p-2" {
		t.Fatalf("edges must keep insertion order: %v", got)
	}
	if edges := ix.Edges(pair(t, addr(1), addr(3))); edges != nil {
		t.Fatalf("unindexed pair must return nil, got %v", edges)
	}
}

func TestIndexExpandsMultiTokenPools(t *testing.T) {
	entries := []liquidity.TokenReserve{
		{Token: addr(1), Balance: uint256.NewInt(1e18), ScalingFactor: model.Rational{Num: uint256.NewInt(1), Den: uint256.NewInt(1)}},
		{Token: addr(2), Balance: uint256.NewInt(1e18), ScalingFactor: model.Rational{Num: uint256.NewInt(1), Den: uint256.NewInt(1)}},
		{Token: addr(3), Balance: uint256.NewInt(1e18), ScalingFactor: model.Rational{Num: uint256.NewInt(1), Den: uint256.NewInt(1)}},
	}
	fee := model.Rational{Num: new(uint256.Int), Den: uint256.NewInt(1)}
	pool, err := liquidity.NewStablePool("s-1", entries, uint256.NewInt(200), uint256.NewInt(1000), fee)
	if err != nil {
		t.Fatalf("stable pool: %v", err)
	}
	ix := Build([]liquidity.Quoter{pool})

	if got := len(ix.Pairs()); got != 3 {
		t.Fatalf("3 tokens must expand to 3 pairs, got %d", got)
	}
	for _, p := range ix.Pairs() {
		if edges := ix.Edges(p); len(edges) != 1 || edges[0].ID() != "s-1" {
			t.Fatalf("pair %s must route through the pool", p)
		}
	}
}

func TestIndexEdgeLookup(t *testing.T) {
	ix := Build([]liquidity.Quoter{cpPool(t, "p-1", addr(1), addr(2))})
	if _, ok := ix.Edge("p-1"); !ok {
		t.Fatalf("known edge not found")
	}
	if _, ok := ix.Edge("p-404"); ok {
		t.Fatalf("unknown edge must not resolve")
	}
}

const snapshotFixture = `{"id":"cp-1","kind":"constant_product","fee_num":"3","fee_den":"1000","tokens":[{"address":"0x0000000000000000000000000000000000000001","balance":"1000000000000000000"},{"address":"0x0000000000000000000000000000000000000002","balance":"1000000000000000000"}]}
{"id":"w-1","kind":"weighted","tokens":[{"address":"0x0000000000000000000000000000000000000001","balance":"1000000000000000000"},{"address":"0x0000000000000000000000000000000000000003","balance":"1000000000000000000"}],"weights":{"0x0000000000000000000000000000000000000001":"500000000000000000","0x0000000000000000000000000000000000000003":"500000000000000000"}}
{"id":"ss-1","kind":"stable_surge","tokens":[{"address":"0x0000000000000000000000000000000000000002","balance":"1000000000000000000"},{"address":"0x0000000000000000000000000000000000000003","balance":"1000000000000000000"}],"amp_factor":"200","amp_precision":"1000","surge_threshold":"200000000000000000","max_surge_fee":"50000000000000000"}
{"id":"lo-1","kind":"limit_order","maker_token":"0x0000000000000000000000000000000000000002","taker_token":"0x0000000000000000000000000000000000000001","maker_amount":"2000000000000000000","taker_amount":"1000000000000000000"}
{"id":"c-1","kind":"concentrated","pool_address":"0x00000000000000000000000000000000000000aa","fee_tier":3000,"tokens":[{"address":"0x0000000000000000000000000000000000000001","balance":"0"},{"address":"0x0000000000000000000000000000000000000002","balance":"0"}]}
`

func TestReadSnapshot(t *testing.T) {
	edges, err := Read(strings.NewReader(snapshotFixture), Providers{}, nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// The concentrated record is skipped without an oracle.
	if len(edges) != 4 {
		t.Fatalf("edges: got %d want 4", len(edges))
	}
	ix := Build(edges)
	if got := ix.Edges(pair(t, addr(1), addr(2))); len(got) != 2 {
		t.Fatalf("pair 1/2: got %d edges", len(got))
	}
	if _, ok := ix.Edge("ss-1"); !ok {
		t.Fatalf("surge pool not loaded")
	}
}

func TestReadSnapshotRejectsBadRecords(t *testing.T) {
	unknown := `{"id":"x","kind":"mystery"}`
	if _, err := Read(strings.NewReader(unknown), Providers{}, nil); err == nil {
		t.Fatalf("unknown kind must fail the load")
	}
	badAddress := `{"id":"cp","kind":"constant_product","tokens":[{"address":"nope","balance":"1"},{"address":"0x0000000000000000000000000000000000000002","balance":"1"}]}`
	if _, err := Read(strings.NewReader(badAddress), Providers{}, nil); err == nil {
		t.Fatalf("bad address must fail the load")
	}
	badNumber := `{"id":"cp","kind":"constant_product","tokens":[{"address":"0x0000000000000000000000000000000000000001","balance":"12x"},{"address":"0x0000000000000000000000000000000000000002","balance":"1"}]}`
	if _, err := Read(strings.NewReader(badNumber), Providers{}, nil); err == nil {
		t.Fatalf("bad number must fail the load")
	}
}
