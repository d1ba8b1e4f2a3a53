package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uhyunpark/midmarket/params"
	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

func TestGeneratorRanges(t *testing.T) {
	cfg := params.Default().Sim
	g := NewGenerator(cfg)

	sells := 0
	for _, o := range g.Batch(2000) {
		if o.Rate < 10 || o.Rate >= 11 {
			t.Fatalf("rate %v outside [10, 11)", o.Rate)
		}
		if o.Volume < 100 || o.Volume >= 200 {
			t.Fatalf("volume %v outside [100, 200)", o.Volume)
		}
		if o.Side == market.Sell {
			sells++
		}
	}
	if sells < 800 || sells > 1200 {
		t.Errorf("expected roughly half sells, got %d of 2000", sells)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	cfg := params.Default().Sim
	cfg.Seed = 99

	a := NewGenerator(cfg).Batch(50)
	b := NewGenerator(cfg).Batch(50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order %d differs between runs with the same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGeneratorSellRatioExtremes(t *testing.T) {
	cfg := params.Default().Sim
	cfg.SellRatio = 1
	for _, o := range NewGenerator(cfg).Batch(100) {
		if o.Side != market.Sell {
			t.Fatalf("expected only sells with ratio 1")
		}
	}
	cfg.SellRatio = 0
	for _, o := range NewGenerator(cfg).Batch(100) {
		if o.Side != market.Buy {
			t.Fatalf("expected only buys with ratio 0")
		}
	}
}

func TestFeederRunsToCompletion(t *testing.T) {
	m, err := market.NewMarket("apple", "dollar", market.WithIDGenerator(market.NewSequenceGenerator("f")))
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}

	legs := 0
	f := NewFeeder(params.Default().Sim, func(market.Transaction) { legs++ }, nil)
	stats, err := f.Run(context.Background(), m, 500)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Submitted != 500 || stats.Rejected != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if m.TransactionCount() == 0 {
		t.Fatalf("expected matches from 500 random offers")
	}
	if legs != 2*m.TransactionCount() {
		t.Errorf("expected %d legs, got %d", 2*m.TransactionCount(), legs)
	}

	ask, okAsk := m.BestAsk()
	bid, okBid := m.BestBid()
	if okAsk && okBid && ask.Rate <= bid.Rate {
		t.Errorf("book crosses after feed: ask %v bid %v", ask.Rate, bid.Rate)
	}
}

func TestFeederCountsRejections(t *testing.T) {
	m, _ := market.NewMarket("apple", "dollar")
	cfg := params.Default().Sim
	cfg.VolumeMin = -1000 // every volume is negative
	cfg.VolumeSpread = 1

	stats, err := NewFeeder(cfg, nil, nil).Run(context.Background(), m, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rejected != 10 || stats.Submitted != 0 {
		t.Errorf("expected 10 rejections, got %+v", stats)
	}
}

func TestFeederUnpriceableOffersDoNotRest(t *testing.T) {
	m, _ := market.NewMarket("apple", "dollar")
	if _, err := m.Offer(market.Sell, 1, 1e-300, nil); err != nil {
		t.Fatalf("seed offer: %v", err)
	}

	// buyers whose budget overflows against the seeded seller's midpoint
	cfg := params.Default().Sim
	cfg.SellRatio = 0
	cfg.RateMin, cfg.RateSpread = 1, 0
	cfg.VolumeMin, cfg.VolumeSpread = 1e308, 0

	stats, err := NewFeeder(cfg, nil, nil).Run(context.Background(), m, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rejected != 5 || stats.Submitted != 0 {
		t.Errorf("expected 5 rejections, got %+v", stats)
	}
	if m.DemandLen() != 0 || m.SupplyLen() != 1 {
		t.Errorf("expected only the seeded seller to rest, got supply=%d demand=%d", m.SupplyLen(), m.DemandLen())
	}
}

func TestFeederStopsOnCancel(t *testing.T) {
	m, _ := market.NewMarket("apple", "dollar")
	cfg := params.Default().Sim
	cfg.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	stats, err := NewFeeder(cfg, nil, nil).Run(ctx, m, 1000)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if stats.Submitted >= 1000 {
		t.Errorf("expected feeder to stop early, submitted %d", stats.Submitted)
	}
}
