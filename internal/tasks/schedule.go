package tasks

import (
	"context"
	"sync"
	"time"
)

// Periodic calls fn immediately on Start and then once per interval until stopped.
type Periodic struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPeriodic creates a stopped Periodic.
func NewPeriodic(interval time.Duration, fn func(ctx context.Context)) *Periodic {
	return &Periodic{interval: interval, fn: fn}
}

// Start launches the loop under ctx. It reports false if the loop was already running.
func (p *Periodic) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runningLocked() {
		return false
	}
	if p.cancel != nil {
		p.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go p.loop(runCtx, done)
	return true
}

func (p *Periodic) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			p.fn(ctx)
		}
	}
}

// Stop cancels the loop's context and waits for the loop to return. Calls to fn already made may still be running
// work they started in other goroutines; their context is cancelled.
func (p *Periodic) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

func (p *Periodic) runningLocked() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
