package tracker

import (
	"context"
	"time"
)

// Clock creates tickers. Tests swap in a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// TickFunc runs one poll. Returning true halts the poller for good.
type TickFunc func(ctx context.Context) (halt bool)

// Poller is the owned, cancellable timer of a single job generation. Ticks
// run one at a time on the poller goroutine; a tick that outlasts the
// interval makes the ticker drop the ticks it missed.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startPoller(parent context.Context, clock Clock, interval time.Duration, tick TickFunc) *Poller {
	ctx, cancel := context.WithCancel(parent)
	p := &Poller{cancel: cancel, done: make(chan struct{})}
	t := clock.NewTicker(interval)

	go func() {
		defer close(p.done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				if ctx.Err() != nil {
					return
				}
				if tick(ctx) {
					cancel()
					return
				}
			}
		}
	}()
	return p
}

// Stop prevents any further tick from starting. A tick already running
// sees its context cancelled; it is not waited for.
func (p *Poller) Stop() { p.cancel() }

// Done is closed once the poller goroutine has exited.
func (p *Poller) Done() <-chan struct{} { return p.done }
