package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/cesta-app/cesta/pkg/basket"
)

// Result is the outcome of one search query.
type Result struct {
	Token    uint64
	Query    string
	Products []basket.Product
	Err      error
}

// Debouncer delays searches until the query settles and applies only the
// result of the latest query. A superseded query still in flight is not
// cancelled; its result is dropped.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	log      Logger
	deliver  func(Result)

	seq Sequencer

	mu      sync.Mutex
	timer   *time.Timer
	latest  uint64
	last    Result
	hasLast bool
}

// NewDebouncer wraps s. deliver, if not nil, is called with every applied
// result while the debouncer lock is held; it must not call back into the
// debouncer.
func NewDebouncer(s Searcher, delay time.Duration, log Logger, deliver func(Result)) *Debouncer {
	if log == nil {
		log = nopLogger{}
	}
	return &Debouncer{searcher: s, delay: delay, log: log, deliver: deliver}
}

// Query schedules a search and returns its token. Tokens are issued under the
// debouncer lock so the latest token is always the last one handed out.
func (d *Debouncer) Query(ctx context.Context, query string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	token := d.seq.Next()
	d.latest = token
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.run(ctx, token, query) })
	return token
}

func (d *Debouncer) run(ctx context.Context, token uint64, query string) {
	products, err := d.searcher.Search(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.latest {
		d.log.Debugf("Discarding stale search %d for %q (latest is %d)", token, query, d.latest)
		return
	}
	if err != nil {
		d.log.Warnf("Search for %q failed: %v", query, err)
	}
	d.last = Result{Token: token, Query: query, Products: products, Err: err}
	d.hasLast = true
	if d.deliver != nil {
		d.deliver(d.last)
	}
}

// Latest returns the last applied result.
func (d *Debouncer) Latest() (Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.hasLast
}

// Pending reports whether the latest query has not produced a result yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest != 0 && (!d.hasLast || d.last.Token != d.latest)
}

// Stop cancels a search that has not started yet.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
