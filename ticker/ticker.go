package ticker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/domain"
)

const (
	DefaultPeriod = 250 * time.Millisecond
)

type Snapshotter interface {
	Snapshot(now int64) domain.Stats
}

type Presenter interface {
	OnStatsUpdated(stats domain.Stats)
}

type PresenterFunc func(stats domain.Stats)

func (f PresenterFunc) OnStatsUpdated(stats domain.Stats) {
	f(stats)
}

// Ticker periodically snapshots the tracker and hands the result to presenters.
// Ticks never overlap: a tick that fires while the previous one is still
// running is dropped.
type Ticker struct {
	period      time.Duration
	snapshotter Snapshotter
	presenters  []Presenter
	logger      log.Logger
	now         func() time.Time

	running atomic.Bool
	ticks   atomic.Uint64
	skipped atomic.Uint64

	lock    sync.Mutex
	started bool
	closed  bool
	close   chan struct{}
	done    chan struct{}
}

func New(
	period time.Duration,
	snapshotter Snapshotter,
	logger log.Logger,
	now func() time.Time,
	presenters ...Presenter,
) *Ticker {
	if period <= 0 {
		period = DefaultPeriod
	}
	if now == nil {
		now = time.Now
	}
	return &Ticker{
		period:      period,
		snapshotter: snapshotter,
		presenters:  presenters,
		logger:      logger,
		now:         now,
		close:       make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run blocks until ctx is done or Close is called.
func (t *Ticker) Run(ctx context.Context) error {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return domain.ErrTickerClosed
	}
	if t.started {
		t.lock.Unlock()
		return errors.New("ticker: already running")
	}
	t.started = true
	t.lock.Unlock()
	defer close(t.done)

	timer := time.NewTicker(t.period)
	defer timer.Stop()

	t.logger.Info(ctx, "stats ticker started", log.String("period", t.period.String()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.close:
			return nil
		case <-timer.C:
			t.Tick(ctx)
		}
	}
}

// Tick runs a single aggregation cycle. It returns false if another tick was in progress.
func (t *Ticker) Tick(ctx context.Context) bool {
	if !t.running.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		return false
	}
	defer t.running.Store(false)

	stats := t.snapshotter.Snapshot(t.now().UnixMilli())
	for _, presenter := range t.presenters {
		t.present(ctx, presenter, stats)
	}
	t.ticks.Add(1)
	return true
}

func (t *Ticker) Ticks() uint64 {
	return t.ticks.Load()
}

func (t *Ticker) Skipped() uint64 {
	return t.skipped.Load()
}

// Close stops the timer and waits for the running loop to exit.
// It is safe to call Close if Run was never called.
func (t *Ticker) Close() error {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return nil
	}
	t.closed = true
	close(t.close)
	started := t.started
	t.lock.Unlock()

	if !started {
		return nil
	}

	select {
	case <-t.done:
	case <-time.After(t.period + time.Second):
		return errors.New("ticker: close timeout")
	}
	return nil
}

func (t *Ticker) present(ctx context.Context, presenter Presenter, stats domain.Stats) {
	defer func() {
		r := recover()
		if r != nil {
			t.logger.Error(ctx, errors.Errorf("ticker: presenter panic: %v", r))
		}
	}()
	presenter.OnStatsUpdated(stats)
}
