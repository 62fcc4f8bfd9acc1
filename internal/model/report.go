package model

import (
	"encoding/json"
)

// SegmentRecord is the storage representation of one route segment. Amounts
// are decimal strings to survive JSON round-trips at 256-bit width.
type SegmentRecord struct {
	EdgeID       string `json:"edge_id"`
	InputToken   string `json:"input_token"`
	InputAmount  string `json:"input_amount"`
	OutputToken  string `json:"output_token"`
	OutputAmount string `json:"output_amount"`
	Gas          uint64 `json:"gas"`
}

// SolveReport is the normalized record of one solved (or failed) order.
type SolveReport struct {
	AuctionID  string          `json:"auction_id"`
	OrderIndex int             `json:"order_index"`
	Side       string          `json:"side"`
	SellToken  string          `json:"sell_token"`
	SellAmount string          `json:"sell_amount"`
	BuyToken   string          `json:"buy_token"`
	BuyAmount  string          `json:"buy_amount"`
	Segments   []SegmentRecord `json:"segments,omitempty"`
	Gas        uint64          `json:"gas"`
	Failure    string          `json:"failure,omitempty"`
	SolvedAt   string          `json:"solved_at"`
}

// MarshalJSON ensures SolveReport is encoded with stable field names.
func (r SolveReport) MarshalJSON() ([]byte, error) {
	type Alias SolveReport
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a SolveReport from JSON.
func (r *SolveReport) UnmarshalJSON(data []byte) error {
	type Alias SolveReport
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = SolveReport(a)
	return nil
}

// ReportFromRoute flattens a route into its storage record.
func ReportFromRoute(auctionID string, orderIndex int, order Order, route Route) SolveReport {
	segments := make([]SegmentRecord, 0, len(route.Segments))
	for _, seg := range route.Segments {
		segments = append(segments, SegmentRecord{
			EdgeID:       seg.EdgeID,
			InputToken:   seg.Input.Token.Hex(),
			InputAmount:  seg.Input.Amount.Dec(),
			OutputToken:  seg.Output.Token.Hex(),
			OutputAmount: seg.Output.Amount.Dec(),
			Gas:          seg.Gas,
		})
	}
	return SolveReport{
		AuctionID:  auctionID,
		OrderIndex: orderIndex,
		Side:       order.Side.String(),
		SellToken:  order.Sell.Token.Hex(),
		SellAmount: route.SellAmount().Amount.Dec(),
		BuyToken:   order.Buy.Token.Hex(),
		BuyAmount:  route.BuyAmount().Amount.Dec(),
		Segments:   segments,
		Gas:        route.Gas(),
	}
}
