package model

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenPair is an unordered pair of distinct token addresses. The pair is
// stored canonically (lower address first) so it can key the snapshot index.
type TokenPair struct {
	A common.Address
	B common.Address
}

// NewTokenPair builds the canonical pair for two distinct tokens.
func NewTokenPair(x, y common.Address) (TokenPair, error) {
	cmp := bytes.Compare(x.Bytes(), y.Bytes())
	if cmp == 0 {
		return TokenPair{}, fmt.Errorf("token pair with identical tokens: %s", x.Hex())
	}
	if cmp > 0 {
		x, y = y, x
	}
	return TokenPair{A: x, B: y}, nil
}

// Contains reports whether the pair includes the token.
func (p TokenPair) Contains(token common.Address) bool {
	return p.A == token || p.B == token
}

// Other returns the counterpart of token within the pair.
func (p TokenPair) Other(token common.Address) (common.Address, bool) {
	switch token {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	default:
		return common.Address{}, false
	}
}

func (p TokenPair) String() string {
	return p.A.Hex() + "/" + p.B.Hex()
}

// TokenLess is the deterministic ordering used for reserve sorting and path
// enumeration.
func TokenLess(x, y common.Address) bool {
	return bytes.Compare(x.Bytes(), y.Bytes()) < 0
}
