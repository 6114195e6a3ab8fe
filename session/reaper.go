package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSweepInterval matches the default session TTL.
const DefaultSweepInterval = 300 * time.Second

// Reaper periodically removes expired sessions so orphaned handoffs do not
// sit around waiting for a reader to trip the lazy expiry check.
type Reaper struct {
	store    *Store
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewReaper creates a stopped reaper. interval <= 0 selects the default.
func NewReaper(store *Store, interval time.Duration, logger *log.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reaper{store: store, interval: interval, logger: logger}
}

// Start launches the sweep loop. Starting an already-running reaper is a no-op.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.quit = make(chan struct{})
	r.done = make(chan struct{})
	r.running = true
	go r.loop(r.quit, r.done)
}

func (r *Reaper) loop(quit, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if count := r.store.Sweep(); count > 0 {
				r.logger.Infof("Cleaned up %d expired sessions", count)
			}
		case <-quit:
			return
		}
	}
}

// Stop signals the loop to exit and waits for it to finish. An in-flight
// sweep always completes; stopping a stopped reaper is a no-op.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	quit, done := r.quit, r.done
	r.running = false
	r.mu.Unlock()

	close(quit)
	<-done
}
