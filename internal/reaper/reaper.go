// Package reaper runs the background sweep that deletes expired seat
// sessions. Expiry is already enforced at read time (an expired session is
// treated as absent everywhere), so the reaper exists to return rows to the
// pool and keep the seat_sessions table from accumulating garbage. Running
// it more than once, or concurrently with the creation path's per-seat
// cleanup, is harmless: the delete predicate simply matches nothing.
package reaper

import (
	"context"
	"log"
	"time"
)

// SessionStore is the slice of the repository the reaper needs.
type SessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Reaper periodically deletes expired seat sessions.
type Reaper struct {
	store    SessionStore
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// New constructs a Reaper sweeping at the given interval.
func New(store SessionStore, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{store: store, interval: interval}
}

// Start launches the sweep loop in its own goroutine. The first sweep runs
// immediately so a restart does not leave stale holds sitting for a full
// interval.
func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx)
}

// Stop cancels the loop and waits for the in-flight sweep to finish.
func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)
	r.sweep(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.store.DeleteExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("reaper: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("reaper: released %d expired seat sessions", n)
	}
}
