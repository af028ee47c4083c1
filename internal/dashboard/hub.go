// Package dashboard maintains the admin dashboard snapshot and fans it out
// to connected subscribers. Every data mutation triggers a full recompute;
// subscribers always receive the complete snapshot, never a delta.
package dashboard

import (
	"context"
	"log"
	"sync"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// StatsSource produces a fresh snapshot of the portal's aggregate counts.
type StatsSource interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// Hub owns the latest snapshot and the set of subscribers. One mutex covers
// both, so a Refresh and a Subscribe can never interleave half-way: a new
// subscriber either sees the old snapshot or the new one, never neither.
type Hub struct {
	source StatsSource

	// refreshMu serializes recomputes end to end, so two overlapping
	// Refresh calls cannot publish their snapshots out of order and leave
	// the older one as latest. Always taken before mu.
	refreshMu sync.Mutex

	mu     sync.Mutex
	latest *model.Stats
	subs   map[chan *model.Stats]struct{}
}

func NewHub(source StatsSource) *Hub {
	if source == nil {
		panic("dashboard: nil StatsSource")
	}
	return &Hub{
		source: source,
		subs:   map[chan *model.Stats]struct{}{},
	}
}

// Subscribe registers a listener and returns its snapshot channel. The
// channel is primed with the latest snapshot when one exists, so a client
// renders immediately instead of waiting for the next mutation.
func (h *Hub) Subscribe() chan *model.Stats {
	ch := make(chan *model.Stats, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = struct{}{}
	if h.latest != nil {
		ch <- h.latest
	}
	return ch
}

// Unsubscribe removes the listener and closes its channel. Closing is safe
// because every send happens under the same mutex.
func (h *Hub) Unsubscribe(ch chan *model.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

// Latest returns the most recent snapshot, computing one on first use.
func (h *Hub) Latest(ctx context.Context) (*model.Stats, error) {
	h.mu.Lock()
	cached := h.latest
	h.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	return h.refresh(ctx)
}

// Refresh recomputes the snapshot and pushes it to every subscriber. It is
// fire-and-forget from the caller's point of view: a failed recompute keeps
// the previous snapshot and is logged, never surfaced to the mutating
// request that triggered it.
func (h *Hub) Refresh(ctx context.Context) {
	if _, err := h.refresh(ctx); err != nil {
		log.Printf("dashboard: refresh failed: %v", err)
	}
}

func (h *Hub) refresh(ctx context.Context) (*model.Stats, error) {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	stats, err := h.source.Stats(ctx)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = stats
	for ch := range h.subs {
		// Latest-wins: drop the stale pending snapshot if the subscriber
		// has not drained it yet, then queue the fresh one.
		select {
		case <-ch:
		default:
		}
		ch <- stats
	}
	return stats, nil
}
