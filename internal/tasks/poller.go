package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// Querier fetches the current playback state.
type Querier interface {
	CurrentlyPlaying(ctx context.Context) (*models.Snapshot, error)
}

// State is the poller's coarse lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePolling
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return ""
	}
}

// PollerOpts contains optional settings for [NewPoller].
type PollerOpts struct {
	Interval time.Duration         // Defaults to 1s
	Timeout  time.Duration         // Bound on a whole poll (authorize + query); defaults to 5s
	Logger   *log.Logger           //
	Updates  chan<- ProgressUpdate // Optional; never blocks the poll loop
}

// Poller periodically publishes the remote playback state.
type Poller struct {
	auth     services.Authorizer
	client   Querier
	timeout  time.Duration
	logger   *log.Logger
	updates  chan<- ProgressUpdate
	periodic *Periodic

	snapshot atomic.Pointer[models.Snapshot]
	inFlight atomic.Bool
	epoch    atomic.Uint64

	mu     sync.Mutex
	parent context.Context
	paused bool
}

// NewPoller creates a stopped Poller.
func NewPoller(auth services.Authorizer, client Querier, opts PollerOpts) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	p := &Poller{
		auth:    auth,
		client:  client,
		timeout: opts.Timeout,
		logger:  shared.WithLogger(opts.Logger, "component", "poller"),
		updates: opts.Updates,
	}
	p.periodic = NewPeriodic(opts.Interval, p.tick)
	return p
}

// Start begins polling under ctx: one poll now, then one per interval.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.parent = ctx
	p.paused = false
	if p.periodic.Start(ctx) {
		p.logger.Info("polling started")
	}
}

// Pause stops the timer and cancels the in-flight poll. A poll that completes after Pause neither publishes nor
// clears the snapshot.
func (p *Poller) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused || !p.periodic.Running() {
		return
	}
	p.paused = true
	p.epoch.Add(1)
	p.periodic.Stop()

	p.logger.Info("polling paused")
	p.send(pausedUpdate())
}

// Resume restarts a paused poller. It polls immediately (unless the cancelled poll has not yet returned, in which
// case that tick is skipped) and then every interval from now.
func (p *Poller) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.paused || p.parent == nil {
		return
	}
	p.paused = false
	p.periodic.Start(p.parent)

	p.logger.Info("polling resumed")
	p.send(resumedUpdate())
}

// Toggle pauses a running poller or resumes a paused one.
func (p *Poller) Toggle() {
	if p.Paused() {
		p.Resume()
		return
	}
	p.Pause()
}

// Stop ends polling for good; completions of the in-flight poll are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.epoch.Add(1)
	p.periodic.Stop()
	p.paused = false
	p.parent = nil
}

// Paused reports whether Pause was called without a later Resume.
func (p *Poller) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// State returns [StatePolling] while a request is in flight, [StateIdle] between scheduled polls, [StatePaused] after Pause and
// [StateStopped] otherwise.
func (p *Poller) State() State {
	if p.inFlight.Load() {
		return StatePolling
	}
	if p.Paused() {
		return StatePaused
	}
	if p.periodic.Running() {
		return StateIdle
	}
	return StateStopped
}

// Snapshot returns the latest published snapshot, or nil when nothing is playing or the last poll failed.
func (p *Poller) Snapshot() *models.Snapshot {
	return p.snapshot.Load()
}

// Poll runs a single poll synchronously. It returns [shared.ErrPollInFlight] without doing anything if another poll
// is running.
func (p *Poller) Poll(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return shared.ErrPollInFlight
	}
	defer p.inFlight.Store(false)
	return p.poll(ctx, p.epoch.Load())
}

func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("previous poll still in flight, skipping tick")
		p.send(skippedUpdate())
		return
	}

	epoch := p.epoch.Load()
	go func() {
		defer p.inFlight.Store(false)
		p.poll(ctx, epoch)
	}()
}

func (p *Poller) poll(runCtx context.Context, epoch uint64) error {
	logger := p.logger.With("poll", shared.ShortID())

	ctx, cancel := context.WithTimeout(runCtx, p.timeout)
	defer cancel()

	p.send(authorizeUpdate())
	if err := p.auth.Authorize(ctx); err != nil {
		return p.fail(runCtx, epoch, logger, err)
	}

	p.send(queryUpdate())
	snap, err := p.client.CurrentlyPlaying(ctx)
	if err != nil {
		return p.fail(runCtx, epoch, logger, err)
	}

	if p.stale(runCtx, epoch) {
		logger.Debug("discarding poll completed after pause")
		return nil
	}

	p.snapshot.Store(snap)
	logger.Debug("snapshot published", "track", snap.TrackName, "playing", snap.IsPlaying, "progress_ms", snap.ProgressMS)
	p.send(publishedUpdate(snap))
	return nil
}

// fail clears the snapshot unless the poll was cancelled by Pause or Stop.
func (p *Poller) fail(runCtx context.Context, epoch uint64, logger *log.Logger, err error) error {
	if p.stale(runCtx, epoch) {
		logger.Debug("discarding failed poll after pause", "error", err)
		return err
	}

	p.snapshot.Store(nil)
	if errors.Is(err, shared.ErrNothingPlaying) {
		logger.Debug("nothing playing")
	} else {
		logger.Warn("poll failed", "error", err)
	}
	p.send(clearedUpdate(err))
	return fmt.Errorf("poll failed: %w", err)
}

func (p *Poller) stale(runCtx context.Context, epoch uint64) bool {
	return runCtx.Err() != nil || p.epoch.Load() != epoch
}

// send sends a progress update through the channel without blocking.
func (p *Poller) send(update ProgressUpdate) {
	if p.updates == nil {
		return
	}
	select {
	case p.updates <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}
