package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/ride-console/internal/observability"
)

// Poller invokes a fetch func immediately and then on a fixed interval until
// its context is done. Each screen owns one poller, so the subscription's
// lifecycle is tied to the view instead of a free-floating timer.
type Poller struct {
	Interval time.Duration
	Resource string // metrics label
	Fetch    func(ctx context.Context) error

	inflight atomic.Bool
	once     sync.Once
	kick     chan struct{}
}

func (p *Poller) initKick() {
	p.once.Do(func() { p.kick = make(chan struct{}, 1) })
}

// Kick requests an immediate out-of-band fetch, used by the screens to
// invalidate a list after a mutation. Safe to call from any goroutine;
// a kick is dropped when one is already pending.
func (p *Poller) Kick() {
	p.initKick()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. A tick is skipped when the previous fetch has
// not returned yet; identical concurrent requests are otherwise not
// suppressed, matching the backend contract's expectations.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	p.initKick()

	p.fire(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fire(ctx)
		case <-p.kick:
			p.fire(ctx)
		}
	}
}

// fire runs the fetch off the poll loop so a slow backend delays nothing;
// the inflight flag is what makes overlapping ticks skip.
func (p *Poller) fire(ctx context.Context) {
	if !p.inflight.CompareAndSwap(false, true) {
		return
	}
	observability.PollsTotal.WithLabelValues(p.Resource).Inc()
	go func() {
		defer p.inflight.Store(false)
		if err := p.Fetch(ctx); err != nil && ctx.Err() == nil {
			observability.PollErrorsTotal.WithLabelValues(p.Resource).Inc()
		}
	}()
}
