package market

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/uhyunpark/midmarket/pkg/util"
)

// Market is a continuous double auction for one asset pair. Sellers offer
// the first asset for the second; buyers spend the second to get the first.
// Crossing offers settle at the midpoint of their limit rates.
//
// All methods are safe for concurrent use. Each Offer call runs its whole
// matching loop as one critical section.
type Market struct {
	mu sync.Mutex

	id          string
	assetFirst  string
	assetSecond string

	supply  *offerQueue // sellers, lowest rate first
	demand  *offerQueue // buyers, highest rate first
	resting map[string]*offer

	// only seller legs are logged; buyer legs go to the buyer's callback alone
	transactions []Transaction

	seq        uint64
	ids        IDGenerator
	clock      util.Clock
	epsilon    float64
	dispatcher Dispatcher
	log        *zap.SugaredLogger
}

// Option configures a Market at construction.
type Option func(*Market)

func WithIDGenerator(g IDGenerator) Option {
	return func(m *Market) { m.ids = g }
}

func WithClock(c util.Clock) Option {
	return func(m *Market) { m.clock = c }
}

// WithEpsilon sets the relative tolerance used to classify a match as balanced.
func WithEpsilon(eps float64) Option {
	return func(m *Market) {
		if eps >= 0 && finite(eps) {
			m.epsilon = eps
		}
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(m *Market) { m.dispatcher = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Market) {
		if l != nil {
			m.log = l.Sugar()
		}
	}
}

// NewMarket creates an empty market trading first against second.
func NewMarket(first, second string, opts ...Option) (*Market, error) {
	if first == "" || second == "" || first == second {
		return nil, fmt.Errorf("%w: %q/%q", ErrInvalidAssets, first, second)
	}

	m := &Market{
		assetFirst:  first,
		assetSecond: second,
		supply:      newSupplyQueue(),
		demand:      newDemandQueue(),
		resting:     make(map[string]*offer),
		ids:         UUIDGenerator{},
		clock:       util.RealClock{},
		epsilon:     DefaultEpsilon,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dispatcher == nil {
		m.dispatcher = InlineDispatcher{Logger: m.log.Desugar()}
	}
	m.id = m.ids.NewID()
	return m, nil
}

func (m *Market) ID() string          { return m.id }
func (m *Market) AssetFirst() string  { return m.assetFirst }
func (m *Market) AssetSecond() string { return m.assetSecond }

// Name returns "<first>/<second>".
func (m *Market) Name() string {
	return m.assetFirst + "/" + m.assetSecond
}

// validateOffer rejects anything that could put a non-finite number into a queue.
func validateOffer(side Side, volume, rate float64) error {
	if !side.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	if !finite(volume) || volume <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidVolume, volume)
	}
	if !finite(rate) || rate <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, rate)
	}
	if p := volume * rate; !finite(p) || p <= 0 {
		return fmt.Errorf("%w: volume %v at rate %v", ErrClearingDegenerate, volume, rate)
	}
	if q := volume / rate; !finite(q) || q <= 0 {
		return fmt.Errorf("%w: volume %v at rate %v", ErrClearingDegenerate, volume, rate)
	}
	return nil
}

// Offer places a sell or buy offer and matches until nothing crosses.
// Seller volume is in the first asset; buyer volume is the amount of the
// second asset the buyer is willing to spend. cb receives every leg that
// fills this offer and may be nil.
//
// It returns the new offer's id. On any error the id is empty and the
// offer is not resting. ErrClearingDegenerate from the matching loop drops
// the offer's unfilled remainder; legs it already settled in this call stand.
func (m *Market) Offer(side Side, volume, rate float64, cb Callback) (string, error) {
	if err := validateOffer(side, volume, rate); err != nil {
		m.log.Debugw("offer_rejected", "market", m.Name(), "side", side.String(), "volume", volume, "rate", rate, "err", err)
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	o := &offer{
		marketID: m.id,
		id:       m.ids.NewID(),
		side:     side,
		rate:     rate,
		volume:   volume,
		callback: cb,
		seq:      m.seq,
	}
	if side == Sell {
		m.supply.push(o)
	} else {
		m.demand.push(o)
	}
	m.resting[o.id] = o

	if err := m.matchLocked(); err != nil {
		m.evictLocked(o)
		return "", err
	}
	return o.id, nil
}

// evictLocked takes o off its queue after the matching loop failed on it.
// The book did not cross before o arrived, so any pair the loop could not
// price has o at one of the two roots.
func (m *Market) evictLocked(o *offer) {
	q := m.demand
	if o.side == Sell {
		q = m.supply
	}
	if q.peek() != o {
		m.log.Errorw("evict_not_at_root", "market", m.Name(), "offer_id", o.id)
		return
	}
	q.pop()
	delete(m.resting, o.id)
	m.log.Warnw("offer_evicted", "market", m.Name(), "offer_id", o.id, "side", o.side.String(), "unfilled", o.volume)
}

// matchLocked crosses the best seller against the best buyer until they no
// longer cross or a side runs dry. Caller holds m.mu.
func (m *Market) matchLocked() error {
	for m.supply.Len() > 0 && m.demand.Len() > 0 {
		seller := m.supply.peek()
		buyer := m.demand.peek()

		c, outcome, err := cross(seller.rate, seller.volume, buyer.rate, buyer.volume, m.epsilon)
		if err != nil {
			m.log.Warnw("clearing_degenerate", "market", m.Name(), "seller", seller.id, "buyer", buyer.id, "err", err)
			return err
		}
		if outcome == NoCrossing {
			return nil
		}

		now := m.clock.Now()
		sellerLeg := Transaction{
			ID:            m.ids.NewID(),
			MarketID:      m.id,
			OfferID:       seller.id,
			Leg:           SellerLeg,
			Recv:          c.second,
			AssetReceived: m.assetSecond,
			Send:          c.first,
			AssetSent:     m.assetFirst,
			Timestamp:     now,
		}
		buyerLeg := Transaction{
			ID:            m.ids.NewID(),
			MarketID:      m.id,
			OfferID:       buyer.id,
			Leg:           BuyerLeg,
			Recv:          c.first,
			AssetReceived: m.assetFirst,
			Send:          c.second,
			AssetSent:     m.assetSecond,
			Timestamp:     now,
		}

		seller.volume -= sellerLeg.Send
		buyer.volume -= buyerLeg.Send
		m.transactions = append(m.transactions, sellerLeg)

		m.log.Debugw("offers_crossed",
			"market", m.Name(),
			"outcome", outcome.String(),
			"rate", c.rate,
			"first", c.first,
			"second", c.second,
			"seller", seller.id,
			"buyer", buyer.id)

		m.dispatcher.Dispatch(seller.callback, sellerLeg)
		m.dispatcher.Dispatch(buyer.callback, buyerLeg)

		if outcome.buyerExhausted() {
			buyer.volume = 0
			m.demand.pop()
			delete(m.resting, buyer.id)
		}
		if outcome.sellerExhausted() {
			seller.volume = 0
			m.supply.pop()
			delete(m.resting, seller.id)
		}
	}
	return nil
}

// Remove is the cancellation hook. Cancelling resting offers is not
// supported yet, so it reports false for every id.
func (m *Market) Remove(id string) bool {
	m.log.Debugw("cancel_unsupported", "market", m.Name(), "offer_id", id)
	return false
}

// Transactions returns a copy of the seller-leg log in settlement order.
func (m *Market) Transactions() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// TransactionCount returns the length of the seller-leg log.
func (m *Market) TransactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// Supply returns resting sellers, lowest rate first.
func (m *Market) Supply() []OfferView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supply.sorted()
}

// Demand returns resting buyers, highest rate first.
func (m *Market) Demand() []OfferView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demand.sorted()
}

func (m *Market) SupplyLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supply.Len()
}

func (m *Market) DemandLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demand.Len()
}

// BestAsk returns the resting seller with priority.
func (m *Market) BestAsk() (OfferView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o := m.supply.peek(); o != nil {
		return o.view(), true
	}
	return OfferView{}, false
}

// BestBid returns the resting buyer with priority.
func (m *Market) BestBid() (OfferView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o := m.demand.peek(); o != nil {
		return o.view(), true
	}
	return OfferView{}, false
}

// Spread is best ask rate minus best bid rate. It is positive whenever both sides rest.
func (m *Market) Spread() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ask, bid := m.supply.peek(), m.demand.peek()
	if ask == nil || bid == nil {
		return 0, false
	}
	return ask.rate - bid.rate, true
}

// Lookup returns a resting offer by id.
func (m *Market) Lookup(id string) (OfferView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.resting[id]
	if !ok {
		return OfferView{}, fmt.Errorf("%w: %s", ErrUnknownOffer, id)
	}
	return o.view(), nil
}
