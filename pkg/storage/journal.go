package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"

	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

// Journal is a pebble-backed append log of settled legs. It records what
// settlement callbacks receive and is never read back into a Market.
type Journal struct {
	db  *pebble.DB
	log *zap.SugaredLogger
}

type journalConfig struct {
	fs     vfs.FS
	logger *zap.Logger
}

type JournalOption func(*journalConfig)

// WithFS swaps the filesystem pebble writes to, e.g. vfs.NewMem() in tests.
func WithFS(fs vfs.FS) JournalOption {
	return func(c *journalConfig) { c.fs = fs }
}

func WithJournalLogger(l *zap.Logger) JournalOption {
	return func(c *journalConfig) { c.logger = l }
}

func OpenJournal(path string, opts ...JournalOption) (*Journal, error) {
	cfg := journalConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	pebbleOpts := &pebble.Options{}
	if cfg.fs != nil {
		pebbleOpts.FS = cfg.fs
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db, log: cfg.logger.Sugar()}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Save appends one leg. Writes are not synced; a crash may lose the tail.
func (j *Journal) Save(tx market.Transaction) error {
	val, err := encodeTx(tx)
	if err != nil {
		return fmt.Errorf("encode transaction %s: %w", tx.ID, err)
	}
	key := txKey(tx.MarketID, tx.Leg, tx.Timestamp, tx.ID)
	if err := j.db.Set(key, val, pebble.NoSync); err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Callback adapts the journal to a settlement callback. Save errors are
// logged since callbacks have nowhere to return them.
func (j *Journal) Callback() market.Callback {
	return func(tx market.Transaction) {
		if err := j.Save(tx); err != nil {
			j.log.Errorw("journal_save_failed", "tx", tx.ID, "leg", tx.Leg.String(), "err", err)
		}
	}
}

// Get returns nil, nil when no such record exists.
func (j *Journal) Get(marketID string, leg market.Leg, ts time.Time, id string) (*market.Transaction, error) {
	val, closer, err := j.db.Get(txKey(marketID, leg, ts, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	tx, err := decodeTx(val)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", id, err)
	}
	return &tx, nil
}

func (j *Journal) newIter(marketID string, leg market.Leg) (*pebble.Iterator, error) {
	prefix := txPrefix(marketID, leg)
	return j.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
}

// LoadRecent returns up to limit records, newest first.
func (j *Journal) LoadRecent(marketID string, leg market.Leg, limit int) ([]market.Transaction, error) {
	if limit <= 0 {
		return nil, nil
	}
	iter, err := j.newIter(marketID, leg)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]market.Transaction, 0, limit)
	for iter.Last(); iter.Valid() && len(out) < limit; iter.Prev() {
		tx, err := decodeTx(iter.Value())
		if err != nil {
			j.log.Warnw("journal_decode_failed", "key", string(iter.Key()), "err", err)
			continue
		}
		out = append(out, tx)
	}
	return out, iter.Error()
}

// LoadAll returns every record for one leg of a market, oldest first.
func (j *Journal) LoadAll(marketID string, leg market.Leg) ([]market.Transaction, error) {
	iter, err := j.newIter(marketID, leg)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []market.Transaction
	for iter.First(); iter.Valid(); iter.Next() {
		tx, err := decodeTx(iter.Value())
		if err != nil {
			j.log.Warnw("journal_decode_failed", "key", string(iter.Key()), "err", err)
			continue
		}
		out = append(out, tx)
	}
	return out, iter.Error()
}

func (j *Journal) Count(marketID string, leg market.Leg) (int, error) {
	iter, err := j.newIter(marketID, leg)
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}
