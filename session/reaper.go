package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reaper periodically sweeps expired sessions from the store on its own
// goroutine, independent of request handling.
type Reaper struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewReaper creates a Reaper sweeping the store every interval.
func NewReaper(store Store, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		interval: interval,
		logger:   logger.With("component", "reaper"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (r *Reaper) Start() {
	r.startOnce.Do(func() {
		go r.run()
	})
}

// Stop signals the loop to exit and blocks until any in-flight sweep has
// finished, so shutdown never abandons a sweep mid-write. No new sweeps
// start after Stop is called. Safe to call more than once.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
}

func (r *Reaper) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reaper) sweep() {
	deleted, err := r.store.SweepExpired(context.Background(), time.Now())
	if err != nil {
		r.logger.Error("session sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		r.logger.Debug("swept expired sessions", "deleted", deleted)
	}
}
