package refresh

import (
	"sync"
	"time"
)

// Task runs fn on a fixed interval until stopped. Stop is exactly-once:
// it is safe to call repeatedly, before Start, or on a nil Task.
type Task struct {
	interval  time.Duration
	immediate bool
	fn        func()

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
	started   bool
	mu        sync.Mutex
}

// NewTask returns a task that calls fn every interval. When immediate is
// set, fn also runs once as soon as the task starts.
func NewTask(interval time.Duration, immediate bool, fn func()) *Task {
	return &Task{
		interval:  interval,
		immediate: immediate,
		fn:        fn,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the task goroutine. Calls after the first are no-ops, as
// are calls after Stop.
func (t *Task) Start() {
	if t == nil || t.fn == nil || t.interval <= 0 {
		return
	}
	t.startOnce.Do(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		select {
		case <-t.quit:
			return
		default:
		}
		t.started = true
		go t.run()
	})
}

// Stop cancels the task and waits for an in-progress run to return.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() {
		t.mu.Lock()
		close(t.quit)
		started := t.started
		t.mu.Unlock()
		if started {
			<-t.done
		}
	})
}

// Stopped reports whether Stop has been called.
func (t *Task) Stopped() bool {
	if t == nil {
		return true
	}
	select {
	case <-t.quit:
		return true
	default:
		return false
	}
}

func (t *Task) run() {
	defer close(t.done)

	if t.immediate {
		t.fn()
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case <-t.quit:
				return
			default:
			}
			t.fn()
		case <-t.quit:
			return
		}
	}
}
