package market

// Callback receives one leg of a settlement for the offer it was registered with.
type Callback func(Transaction)

// offer is a resting order. The Market holds the only copy; volume shrinks in place as it trades.
type offer struct {
	marketID string
	id       string
	side     Side
	rate     float64
	volume   float64
	callback Callback

	seq uint64 // arrival order, breaks ties at equal rate
}

func (o *offer) view() OfferView {
	return OfferView{
		MarketID: o.marketID,
		ID:       o.id,
		Side:     o.side,
		Rate:     o.rate,
		Volume:   o.volume,
		Seq:      o.seq,
	}
}

// OfferView is a point-in-time copy of a resting offer.
type OfferView struct {
	MarketID string
	ID       string
	Side     Side
	Rate     float64
	Volume   float64 // first asset for sellers, second asset for buyers
	Seq      uint64
}
