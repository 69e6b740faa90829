package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/docpilot-cli/docpilot/internal/clock"
)

// Default polling cadence while a consuming view is active.
const (
	DefaultPageInterval  = 3 * time.Second
	DefaultStatsInterval = 5 * time.Second
)

// Poller drives the collection's two refresh modes on independent
// timers while a view is active. Every timer-driven refresh is
// silent: no loading indicator, last good snapshot kept on failure.
// The next tick is the only retry for a failed refresh.
type Poller struct {
	collection    *Collection
	clk           clock.Clock
	pageInterval  time.Duration
	statsInterval time.Duration
	notify        func()

	mu     stdsync.Mutex
	query  Query
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller over the collection. notify, if not nil,
// is called after every applied refresh so a UI can redraw; it must
// not block.
func NewPoller(collection *Collection, clk clock.Clock, notify func()) *Poller {
	if clk == nil {
		clk = clock.Real()
	}
	return &Poller{
		collection:    collection,
		clk:           clk,
		pageInterval:  DefaultPageInterval,
		statsInterval: DefaultStatsInterval,
		notify:        notify,
	}
}

// SetIntervals overrides the polling cadence. Takes effect on the
// next Start.
func (p *Poller) SetIntervals(pageEvery, statsEvery time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pageEvery > 0 {
		p.pageInterval = pageEvery
	}
	if statsEvery > 0 {
		p.statsInterval = statsEvery
	}
}

// Start begins polling for the given query, tearing down any previous
// timers first. Changing filter or page is expressed as a new Start:
// fresh timers, fresh parameters. In-flight requests from the old
// timers are not aborted; the collection's generation guard discards
// their results if they land late.
func (p *Poller) Start(ctx context.Context, query Query) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.query = query.withDefaults()
	p.cancel = cancel
	p.done = done
	pageEvery, statsEvery := p.pageInterval, p.statsInterval
	p.mu.Unlock()

	var wg stdsync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p.loop(ctx, pageEvery, "page", func(ctx context.Context) error {
			return p.collection.RefreshPage(ctx, query, true)
		})
	}()
	go func() {
		defer wg.Done()
		p.loop(ctx, statsEvery, "stats", func(ctx context.Context) error {
			return p.collection.RefreshStats(ctx)
		})
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
}

// Query returns the parameters of the most recent Start.
func (p *Poller) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Stop tears down the timers. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, view string, refresh func(context.Context) error) {
	ticker := p.clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Debug("silent refresh failed, keeping previous snapshot", "view", view, "err", err)
				continue
			}
			if p.notify != nil {
				p.notify()
			}
		}
	}
}
