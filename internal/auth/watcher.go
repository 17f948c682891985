package auth

import (
	"context"
	"log/slog"
	"time"
)

// Watcher sweeps expired sessions on an interval. One watcher is
// constructed per process and torn down on shutdown; there is no
// global flag guarding duplicate starts.
type Watcher struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher creates a session watcher.
func NewWatcher(store Store, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Watcher{
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (w *Watcher) Start() {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.sweep()
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop tears down the sweep loop and waits for it to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Watcher) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	removed, err := w.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		w.logger.Warn("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		w.logger.Info("expired sessions removed", "count", removed)
	}
}
