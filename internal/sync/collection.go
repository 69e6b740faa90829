// Package sync keeps a local view of the remote document collection
// consistent under asynchronous server-side processing. It holds two
// independent snapshots: a filtered page for display and aggregate
// per-status counts computed by a full sweep. Refreshes may overlap;
// a generation guard ensures the snapshot applied is always from the
// most recently issued refresh, never from a slow straggler.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/clock"
)

// sweepMaxPages caps the aggregate sweep at 200 fetches (20000
// documents at the maximum page size). A sweep that runs past the cap
// fails with api.ErrSweepOverflow instead of looping while the
// collection grows under it.
const sweepMaxPages = 200

// Query selects the filtered page view. An empty Status means all
// documents.
type Query struct {
	Status   api.Status
	Page     int
	PageSize int
}

func (q Query) withDefaults() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = api.DefaultPageSize
	}
	return q
}

// PageSnapshot is an immutable view of one fetched page. A refresh
// replaces the snapshot wholesale; items are never mutated in place.
type PageSnapshot struct {
	Query      Query
	Documents  []api.Document
	Total      int
	TotalPages int
	FetchedAt  time.Time
}

// StatsSnapshot is an immutable aggregate view from one full sweep.
type StatsSnapshot struct {
	Stats     api.CollectionStats
	FetchedAt time.Time
}

// Collection maintains the synchronized view. Safe for concurrent
// use: timer-driven refreshes and user-triggered ones may overlap.
type Collection struct {
	client *api.Client
	clk    clock.Clock

	// pageGen and statsGen are the latest issued refresh generations
	// for their view. A completed refresh applies its snapshot only
	// while its generation is still the newest, so responses landing
	// out of order cannot roll the view backward.
	pageGen  atomic.Uint64
	statsGen atomic.Uint64

	mu      stdsync.Mutex
	page    *PageSnapshot
	stats   *StatsSnapshot
	loading bool
}

// NewCollection creates an empty collection view over the client.
func NewCollection(client *api.Client, clk clock.Clock) *Collection {
	if clk == nil {
		clk = clock.Real()
	}
	return &Collection{client: client, clk: clk}
}

// PageView returns the last good page snapshot, or nil before the
// first successful refresh.
func (c *Collection) PageView() *PageSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Stats returns the last good aggregate snapshot, or nil before the
// first successful sweep.
func (c *Collection) Stats() *StatsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Loading reports whether a non-silent page refresh is in flight.
// Silent refreshes never set it.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// RefreshPage fetches one page for the query. Silent refreshes leave
// the loading indicator alone and keep the previous snapshot on
// failure; non-silent ones (filter change, manual navigation) mark
// the view as loading for the duration.
func (c *Collection) RefreshPage(ctx context.Context, query Query, silent bool) error {
	query = query.withDefaults()
	generation := c.pageGen.Add(1)

	if !silent {
		c.mu.Lock()
		c.loading = true
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			c.loading = false
			c.mu.Unlock()
		}()
	}

	page, err := c.client.ListDocuments(ctx, query.Status, query.Page, query.PageSize)
	if err != nil {
		return fmt.Errorf("page refresh: %w", err)
	}

	snapshot := &PageSnapshot{
		Query:      query,
		Documents:  page.Items,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		FetchedAt:  c.clk.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.pageGen.Load() {
		// A newer refresh was issued while this one was in flight;
		// its result wins regardless of completion order.
		slog.Debug("discarding stale page refresh", "generation", generation)
		return nil
	}
	c.page = snapshot
	return nil
}

// RefreshStats runs the aggregate sweep and replaces the stats
// snapshot. On failure the previous snapshot is retained.
func (c *Collection) RefreshStats(ctx context.Context) error {
	generation := c.statsGen.Add(1)

	stats, err := SweepStats(ctx, c.client)
	if err != nil {
		return fmt.Errorf("stats refresh: %w", err)
	}

	snapshot := &StatsSnapshot{Stats: stats, FetchedAt: c.clk.Now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.statsGen.Load() {
		slog.Debug("discarding stale stats refresh", "generation", generation)
		return nil
	}
	c.stats = snapshot
	return nil
}

// SweepStats fetches every page of the collection at the maximum page
// size and derives per-status counts. The list endpoint exposes no
// aggregate counts, so the sweep is the only way to get them.
//
// Termination uses the total_pages value of the most recently fetched
// page: if the collection shrinks mid-sweep the loop stops early
// rather than chasing pages that no longer exist. If total_pages
// keeps growing, the sweepMaxPages cap turns a would-be infinite loop
// into api.ErrSweepOverflow.
func SweepStats(ctx context.Context, client *api.Client) (api.CollectionStats, error) {
	var stats api.CollectionStats

	page := 1
	for {
		if page > sweepMaxPages {
			return api.CollectionStats{}, fmt.Errorf("sweep aborted after %d pages: %w", sweepMaxPages, api.ErrSweepOverflow)
		}

		result, err := client.ListDocuments(ctx, "", page, api.MaxPageSize)
		if err != nil {
			return api.CollectionStats{}, fmt.Errorf("sweep page %d: %w", page, err)
		}

		for _, doc := range result.Items {
			switch doc.Status {
			case api.StatusPending:
				stats.Pending++
			case api.StatusProcessing:
				stats.Processing++
			case api.StatusCompleted:
				stats.Completed++
			case api.StatusFailed:
				stats.Failed++
			default:
				// Unknown statuses are dropped so the total always
				// equals the sum of the four buckets.
				slog.Warn("skipping document with unknown status", "id", doc.ID, "status", doc.Status)
			}
		}

		if page >= result.TotalPages {
			stats.Total = stats.Pending + stats.Processing + stats.Completed + stats.Failed
			return stats, nil
		}
		page++
	}
}
