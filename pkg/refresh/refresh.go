package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/sources"
)

// DefaultInterval is how often the dashboard refreshes on its own.
const DefaultInterval = 5 * time.Minute

// Messages shown to the user after a refresh.
const (
	SuccessMessage = "Data updated successfully!"
	FailureMessage = "Failed to fetch data. Please try again."
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything a Refresher needs. Source is required.
type Config struct {
	Source   sources.Source
	Sink     notify.Sink   // optional
	Log      Logger        // optional; nil = no logging
	Interval time.Duration // periodic interval; <= 0 means DefaultInterval
	Timeout  time.Duration // per-fetch deadline; 0 = none

	// OnUpdate is called after every successful refresh with the new dataset.
	OnUpdate func(covid.Dataset)
	// OnStatus is called after every attempt, successful or not.
	OnStatus func(Status)
}

// Status is the outcome of the last refresh attempt.
type Status struct {
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Manual    bool          `json:"manual"`
	Err       string        `json:"error,omitempty"`
}

// Refresher owns the current dataset and replaces it on each refresh.
type Refresher struct {
	cfg Config
	log Logger
	now func() time.Time

	mu       sync.RWMutex
	current  covid.Dataset
	previous covid.Dataset
	hasPrev  bool
	loaded   bool
	status   *Status

	inflight atomic.Int32

	taskMu sync.Mutex
	task   *Task
}

// New builds a Refresher. It does not fetch anything until Refresh or Start.
func New(cfg Config) (*Refresher, error) {
	if cfg.Source == nil {
		return nil, errors.New("refresh: nil source")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	return &Refresher{cfg: cfg, log: log, now: time.Now}, nil
}

// Refresh fetches a new dataset. On success the dataset is replaced and,
// when announce is set, a success notification is sent. On failure the
// previous dataset stays in place and exactly one failure notification is
// sent. A fetched dataset that fails validation counts as a failure. Concurrent calls are not deduplicated.
func (r *Refresher) Refresh(ctx context.Context, announce bool) error {
	r.inflight.Add(1)
	defer r.inflight.Add(-1)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	name := r.cfg.Source.Name()
	start := r.now()
	r.log.Debugf("Refreshing from %s...", name)

	data, err := r.cfg.Source.Fetch(ctx)
	if err == nil {
		err = data.Validate()
	}
	st := Status{
		Source:    name,
		StartedAt: start.UTC(),
		Duration:  r.now().Sub(start),
		Success:   err == nil,
		Manual:    announce,
	}

	if err != nil {
		st.Err = err.Error()
		r.mu.Lock()
		r.status = &st
		r.mu.Unlock()
		r.log.Warnf("Refresh from %s failed: %v", name, err)
		r.emit(notify.KindError, FailureMessage)
		if r.cfg.OnStatus != nil {
			r.cfg.OnStatus(st)
		}
		return fmt.Errorf("refresh from %s: %w", name, err)
	}

	data = data.Clone()
	data.UpdatedAt = r.now().UTC()

	r.mu.Lock()
	if r.loaded {
		r.previous = r.current
		r.hasPrev = true
	}
	r.current = data
	r.loaded = true
	r.status = &st
	r.mu.Unlock()

	r.log.Infof("Refreshed from %s in %s (%d countries)", name, st.Duration.Round(time.Millisecond), len(data.Countries))
	if announce {
		r.emit(notify.KindSuccess, SuccessMessage)
	}
	if r.cfg.OnStatus != nil {
		r.cfg.OnStatus(st)
	}
	if r.cfg.OnUpdate != nil {
		r.cfg.OnUpdate(data.Clone())
	}
	return nil
}

func (r *Refresher) emit(kind notify.Kind, msg string) {
	if r.cfg.Sink != nil {
		r.cfg.Sink.Notify(notify.New(kind, msg))
	}
}

// Current returns the dataset in use. ok is false before the first
// successful refresh.
func (r *Refresher) Current() (covid.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Clone(), r.loaded
}

// Previous returns the dataset replaced by the last successful refresh.
// ok is false until a second refresh has succeeded.
func (r *Refresher) Previous() (covid.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.previous.Clone(), r.hasPrev
}

// Status returns the last refresh outcome, or nil if none ran yet.
func (r *Refresher) Status() *Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.status == nil {
		return nil
	}
	cp := *r.status
	return &cp
}

// Loading reports whether a refresh is in flight.
func (r *Refresher) Loading() bool {
	return r.inflight.Load() > 0
}

// Interval is the configured periodic refresh interval.
func (r *Refresher) Interval() time.Duration {
	return r.cfg.Interval
}

// Start registers the periodic refresh. The first tick fires one interval
// from now; callers wanting data right away call Refresh first. Calling
// Start while already running is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()
	if r.task != nil && !r.task.Stopped() {
		return
	}
	r.log.Infof("Starting auto-refresh (interval: %s)", r.cfg.Interval)
	r.task = NewTask(r.cfg.Interval, false, func() {
		if err := r.Refresh(ctx, false); err != nil {
			r.log.Debugf("Periodic refresh failed: %v", err)
		}
	})
	r.task.Start()
}

// Stop cancels the periodic refresh. It is safe to call more than once.
func (r *Refresher) Stop() {
	r.taskMu.Lock()
	task := r.task
	r.task = nil
	r.taskMu.Unlock()
	if task != nil {
		task.Stop()
		r.log.Infof("Auto-refresh stopped")
	}
}

// AutoRefresh reports whether the periodic refresh is active.
func (r *Refresher) AutoRefresh() bool {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()
	return r.task != nil && !r.task.Stopped()
}

// SetAutoRefresh turns the periodic refresh on or off.
func (r *Refresher) SetAutoRefresh(ctx context.Context, on bool) {
	if on {
		r.Start(ctx)
		return
	}
	r.Stop()
}
