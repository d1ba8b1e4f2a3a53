package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uhyunpark/midmarket/params"
	"github.com/uhyunpark/midmarket/pkg/app/core/market"
	"github.com/uhyunpark/midmarket/pkg/app/sim"
	"github.com/uhyunpark/midmarket/pkg/storage"
	"github.com/uhyunpark/midmarket/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile, cfg.Node.Verbose)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile, "verbose", cfg.Node.Verbose)

	// ---- Dispatcher ----
	var dispatcher market.Dispatcher
	var async *market.AsyncDispatcher
	switch cfg.Market.CallbackMode {
	case "inline":
		dispatcher = market.InlineDispatcher{Logger: logger}
	default:
		async = market.NewAsyncDispatcher(logger)
		async.Start()
		dispatcher = async
	}

	// ---- Market ----
	m, err := market.NewMarket(cfg.Market.AssetFirst, cfg.Market.AssetSecond,
		market.WithEpsilon(cfg.Market.Epsilon),
		market.WithDispatcher(dispatcher),
		market.WithLogger(logger),
	)
	if err != nil {
		sugar.Fatalw("market_init_failed", "err", err)
	}
	sugar.Infow("market_opened",
		"market", m.Name(),
		"id", m.ID(),
		"epsilon", cfg.Market.Epsilon,
		"callback_mode", cfg.Market.CallbackMode)

	// ---- Settlement journal (optional) ----
	var cb market.Callback
	var journal *storage.Journal
	if cfg.Node.JournalPath != "" {
		journal, err = storage.OpenJournal(cfg.Node.JournalPath, storage.WithJournalLogger(logger))
		if err != nil {
			sugar.Fatalw("journal_open_failed", "path", cfg.Node.JournalPath, "err", err)
		}
		cb = journal.Callback()
		sugar.Infow("journal_opened", "path", cfg.Node.JournalPath)
	}

	// ---- Feeder ----
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feeder := sim.NewFeeder(cfg.Sim, cb, logger)
	stats, err := feeder.Run(ctx, m, cfg.Sim.Offers)
	if err != nil && !errors.Is(err, context.Canceled) {
		sugar.Errorw("feeder_failed", "err", err)
	}

	// drain pending callbacks before the journal goes away
	if async != nil {
		async.Close()
	}
	if journal != nil {
		if n, err := journal.Count(m.ID(), market.SellerLeg); err == nil {
			sugar.Infow("journal_recorded", "seller_legs", n)
		}
		if err := journal.Close(); err != nil {
			sugar.Errorw("journal_close_failed", "err", err)
		}
	}

	if cfg.Node.PrintTransactions {
		for _, tx := range m.Transactions() {
			fmt.Println(tx)
		}
	}

	fields := []interface{}{
		"market", m.Name(),
		"submitted", stats.Submitted,
		"rejected", stats.Rejected,
		"elapsed", stats.Elapsed,
		"transactions", m.TransactionCount(),
		"supply", m.SupplyLen(),
		"demand", m.DemandLen(),
	}
	if ask, ok := m.BestAsk(); ok {
		fields = append(fields, "best_ask", ask.Rate)
	}
	if bid, ok := m.BestBid(); ok {
		fields = append(fields, "best_bid", bid.Rate)
	}
	if spread, ok := m.Spread(); ok {
		fields = append(fields, "spread", spread)
	}
	sugar.Infow("market_summary", fields...)
}
