package market

import (
	"math"
	"testing"
	"time"

	"github.com/uhyunpark/midmarket/pkg/util"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMarket(t testing.TB, opts ...Option) *Market {
	t.Helper()
	base := []Option{
		WithIDGenerator(NewSequenceGenerator("t")),
		WithClock(&util.FixedClock{T: testEpoch, Step: time.Millisecond}),
	}
	m, err := NewMarket("apple", "dollar", append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}
	return m
}

func mustOffer(t testing.TB, m *Market, side Side, volume, rate float64, cb Callback) string {
	t.Helper()
	id, err := m.Offer(side, volume, rate, cb)
	if err != nil {
		t.Fatalf("Offer(%s, %v, %v): %v", side, volume, rate, err)
	}
	return id
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// assertNoCrossing checks the resting book: sellers ascending, buyers
// descending, and the best seller strictly above the best buyer.
func assertNoCrossing(t testing.TB, m *Market) {
	t.Helper()
	supply, demand := m.Supply(), m.Demand()
	for i := 1; i < len(supply); i++ {
		if supply[i-1].Rate > supply[i].Rate {
			t.Fatalf("supply out of order at %d: %v > %v", i, supply[i-1].Rate, supply[i].Rate)
		}
	}
	for i := 1; i < len(demand); i++ {
		if demand[i-1].Rate < demand[i].Rate {
			t.Fatalf("demand out of order at %d: %v < %v", i, demand[i-1].Rate, demand[i].Rate)
		}
	}
	if len(supply) > 0 && len(demand) > 0 && supply[0].Rate <= demand[0].Rate {
		t.Fatalf("book still crosses: best ask %v <= best bid %v", supply[0].Rate, demand[0].Rate)
	}
}
