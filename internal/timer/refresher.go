package timer

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// DefaultRefreshInterval is the display refresh period while a session runs.
const DefaultRefreshInterval = time.Second

// Refresher calls render with a fresh Status on every tick while the session
// is Running. It only reads: elapsed is recomputed by read, never
// accumulated here. The loop exits on its own as soon as a read reports a
// state other than Running.
type Refresher struct {
	interval time.Duration
	read     func() Status
	render   func(Status)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(interval time.Duration, read func() Status, render func(Status)) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{interval: interval, read: read, render: render}
}

// Sync starts the loop when state is Running and stops it otherwise.
func (r *Refresher) Sync(ctx context.Context, state domain.SessionState) {
	if state == domain.StateRunning {
		r.start(ctx)
		return
	}
	r.Stop()
}

// Active reports whether the tick loop is currently running.
func (r *Refresher) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Stop ends the loop and waits for it to exit. Safe to call repeatedly.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (r *Refresher) start(parent context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		select {
		case <-r.done:
		default:
			return
		}
	}

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done

	go r.loop(ctx, done)
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := r.read()
			if st.State != domain.StateRunning {
				return
			}
			r.render(st)
		}
	}
}
