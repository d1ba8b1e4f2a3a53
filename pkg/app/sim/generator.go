package sim

import (
	"math/rand"

	"github.com/uhyunpark/midmarket/params"
	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

// Order is one generated offer, ready for Market.Offer.
type Order struct {
	Side   market.Side
	Volume float64
	Rate   float64
}

// Generator draws random offers from a seeded source so runs are reproducible.
type Generator struct {
	cfg params.Sim
	rng *rand.Rand
}

func NewGenerator(cfg params.Sim) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Next draws side, then rate, then volume, each uniform over its configured range.
func (g *Generator) Next() Order {
	side := market.Buy
	if g.rng.Float64() < g.cfg.SellRatio {
		side = market.Sell
	}
	rate := g.cfg.RateMin + g.rng.Float64()*g.cfg.RateSpread
	volume := g.cfg.VolumeMin + g.rng.Float64()*g.cfg.VolumeSpread

	return Order{Side: side, Volume: volume, Rate: rate}
}

func (g *Generator) Batch(n int) []Order {
	out := make([]Order, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
