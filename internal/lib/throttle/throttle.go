// Package throttle spaces calls to a shared resource by a minimum interval.
package throttle

import (
	"context"
	"time"
)

// Gate runs one call at a time and starts each call at least Interval after
// the previous one finished. Callers that arrive early queue up; none is
// rejected.
type Gate struct {
	interval time.Duration
	slot     chan struct{}
	last     time.Time
	now      func() time.Time
}

func New(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		slot:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Do waits for its turn and runs fn. If ctx ends while waiting, fn is not run
// and ctx.Err() is returned.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.slot }()

	if !g.last.IsZero() {
		if wait := g.interval - g.now().Sub(g.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	defer func() { g.last = g.now() }()
	return fn()
}
