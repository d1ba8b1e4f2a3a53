package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/midmarket/params"
	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

type Stats struct {
	Submitted int
	Rejected  int
	Elapsed   time.Duration
}

// Feeder plays generated offers into a market.
type Feeder struct {
	gen      *Generator
	interval time.Duration
	callback market.Callback
	log      *zap.SugaredLogger
}

// NewFeeder builds a feeder; cb is attached to every submitted offer and may be nil.
func NewFeeder(cfg params.Sim, cb market.Callback, logger *zap.Logger) *Feeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feeder{
		gen:      NewGenerator(cfg),
		interval: cfg.Interval,
		callback: cb,
		log:      logger.Sugar(),
	}
}

// Run submits n offers to m, one per tick when an interval is configured.
// It stops early when ctx is done and returns ctx.Err() with the partial stats.
func (f *Feeder) Run(ctx context.Context, m *market.Market, n int) (Stats, error) {
	var stats Stats
	start := time.Now()

	f.log.Infow("feeder_started", "market", m.Name(), "offers", n, "interval", f.interval)

	var tick <-chan time.Time
	if f.interval > 0 {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < n; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return f.stopped(stats, start, ctx.Err())
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return f.stopped(stats, start, err)
		}

		o := f.gen.Next()
		if _, err := m.Offer(o.Side, o.Volume, o.Rate, f.callback); err != nil {
			stats.Rejected++
			f.log.Warnw("offer_rejected", "side", o.Side.String(), "volume", o.Volume, "rate", o.Rate, "err", err)
			continue
		}
		stats.Submitted++
	}

	return f.stopped(stats, start, nil)
}

func (f *Feeder) stopped(stats Stats, start time.Time, err error) (Stats, error) {
	stats.Elapsed = time.Since(start)
	f.log.Infow("feeder_stopped",
		"submitted", stats.Submitted,
		"rejected", stats.Rejected,
		"elapsed", stats.Elapsed.Round(time.Millisecond),
		"err", err)
	return stats, err
}
