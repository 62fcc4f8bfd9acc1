package model

import "fmt"

// Side distinguishes exact-sell from exact-buy orders.
type Side int

const (
	// SideSell fixes the sell amount; the buy amount is the minimum acceptable.
	SideSell Side = iota
	// SideBuy fixes the buy amount; the sell amount is the maximum acceptable.
	SideBuy
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "sell"
	case SideBuy:
		return "buy"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide decodes a side label.
func ParseSide(s string) (Side, error) {
	switch s {
	case "sell":
		return SideSell, nil
	case "buy":
		return SideBuy, nil
	default:
		return 0, fmt.Errorf("unknown order side %q", s)
	}
}

// Order is a single user trade intent.
type Order struct {
	Side Side
	Sell Asset
	Buy  Asset
}

// Validate checks the order references two distinct tokens and a non-zero
// exact amount.
func (o Order) Validate() error {
	if o.Sell.Token == o.Buy.Token {
		return fmt.Errorf("order trades %s against itself", o.Sell.Token.Hex())
	}
	exact := o.Sell.Amount
	if o.Side == SideBuy {
		exact = o.Buy.Amount
	}
	if exact == nil || exact.IsZero() {
		return fmt.Errorf("order has zero %s amount", o.Side)
	}
	return nil
}

// ExactAmount returns the side-fixed amount of the order.
func (o Order) ExactAmount() Asset {
	if o.Side == SideBuy {
		return o.Buy
	}
	return o.Sell
}
