package market

import (
	"fmt"
	"time"
)

// Leg tells which side of a match a Transaction records.
type Leg int8

const (
	SellerLeg Leg = iota + 1
	BuyerLeg
)

func (l Leg) String() string {
	switch l {
	case SellerLeg:
		return "seller"
	case BuyerLeg:
		return "buyer"
	default:
		return "unknown"
	}
}

// Transaction is one leg of a settled match, seen from the offer owner's side.
// It is handed around by value and never modified after construction.
type Transaction struct {
	ID            string    `json:"id"`
	MarketID      string    `json:"market_id"`
	OfferID       string    `json:"offer_id"`
	Leg           Leg       `json:"leg"`
	Recv          float64   `json:"recv"`
	AssetReceived string    `json:"asset_received"`
	Send          float64   `json:"send"`
	AssetSent     string    `json:"asset_sent"`
	Timestamp     time.Time `json:"timestamp"`
}

// RawRatio is Recv/Send. Only on a seller leg is this the realized price.
func (t Transaction) RawRatio() float64 {
	return t.Recv / t.Send
}

// Rate is the realized price in second asset per unit of first asset, for either leg.
func (t Transaction) Rate() float64 {
	if t.Leg == BuyerLeg {
		return t.Send / t.Recv
	}
	return t.Recv / t.Send
}

func (t Transaction) String() string {
	return fmt.Sprintf("rate: %0.3f; %0.2f %s for %0.2f %s @ %s",
		t.Rate(), t.Recv, t.AssetReceived, t.Send, t.AssetSent, t.Timestamp.Format(time.RFC3339Nano))
}
