package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Asset is a token address paired with an amount in the token's smallest unit.
type Asset struct {
	Token  common.Address
	Amount *uint256.Int
}

// NewAsset builds an asset; a nil amount means zero.
func NewAsset(token common.Address, amount *uint256.Int) Asset {
	if amount == nil {
		amount = new(uint256.Int)
	}
	return Asset{Token: token, Amount: amount}
}

func (a Asset) String() string {
	return fmt.Sprintf("%s %s", a.Amount.Dec(), a.Token.Hex())
}

// WithAmount returns a copy of the asset holding a different amount.
func (a Asset) WithAmount(amount *uint256.Int) Asset {
	return Asset{Token: a.Token, Amount: amount}
}
