package market

import (
	"sync"

	"go.uber.org/zap"
)

// Dispatcher delivers settlement legs to offer callbacks.
type Dispatcher interface {
	Dispatch(cb Callback, tx Transaction)
}

// invoke runs cb and turns a panic into a log line so one bad callback
// cannot take down the caller.
func invoke(log *zap.SugaredLogger, cb Callback, tx Transaction) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("callback_panic", "offer_id", tx.OfferID, "tx_id", tx.ID, "panic", r)
		}
	}()
	cb(tx)
}

// InlineDispatcher calls the callback on the matching goroutine, while the
// market lock is held. Callbacks must not call back into the same market.
type InlineDispatcher struct {
	Logger *zap.Logger
}

func (d InlineDispatcher) Dispatch(cb Callback, tx Transaction) {
	if cb == nil {
		return
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	invoke(log.Sugar(), cb, tx)
}

type delivery struct {
	cb Callback
	tx Transaction
}

// AsyncDispatcher queues deliveries in an unbounded FIFO and runs them on
// one worker goroutine, so a slow callback never holds up matching.
// Deliveries run in the order they were dispatched.
type AsyncDispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []delivery
	closed  bool
	started bool
	done    chan struct{}

	log *zap.SugaredLogger
}

func NewAsyncDispatcher(logger *zap.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AsyncDispatcher{
		done: make(chan struct{}),
		log:  logger.Sugar(),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Start launches the worker. Calling it more than once is a no-op.
func (d *AsyncDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	go d.run()
}

func (d *AsyncDispatcher) Dispatch(cb Callback, tx Transaction) {
	if cb == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warnw("dispatch_after_close", "offer_id", tx.OfferID, "tx_id", tx.ID)
		return
	}
	d.pending = append(d.pending, delivery{cb: cb, tx: tx})
	d.cond.Signal()
}

// Pending returns the number of queued deliveries not yet started.
func (d *AsyncDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close stops accepting deliveries, drains what is queued and waits for the worker.
func (d *AsyncDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	started := d.started
	if !started {
		d.started = true
	}
	d.cond.Broadcast()
	d.mu.Unlock()

	if !started {
		go d.run()
	}
	<-d.done
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.pending) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.pending) == 0 && d.closed {
			d.mu.Unlock()
			return
		}
		next := d.pending[0]
		d.pending[0] = delivery{}
		d.pending = d.pending[1:]
		d.mu.Unlock()

		invoke(d.log, next.cb, next.tx)
	}
}
