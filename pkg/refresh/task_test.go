package refresh

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTaskRunsImmediatelyAndOnTicks(t *testing.T) {
	var calls atomic.Int32
	task := NewTask(5*time.Millisecond, true, func() { calls.Add(1) })
	task.Start()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	task.Stop()

	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", calls.Load())
	}
}

func TestTaskNoRunsAfterStop(t *testing.T) {
	var calls atomic.Int32
	task := NewTask(2*time.Millisecond, false, func() { calls.Add(1) })
	task.Start()
	time.Sleep(10 * time.Millisecond)
	task.Stop()

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("task ran after Stop: %d -> %d", after, calls.Load())
	}
}

func TestTaskStopIdempotent(t *testing.T) {
	task := NewTask(time.Millisecond, false, func() {})
	task.Start()
	task.Stop()
	task.Stop()

	if !task.Stopped() {
		t.Fatal("expected task to report stopped")
	}

	var nilTask *Task
	nilTask.Start()
	nilTask.Stop()
}

func TestTaskStopBeforeStart(t *testing.T) {
	var calls atomic.Int32
	task := NewTask(time.Millisecond, true, func() { calls.Add(1) })
	task.Stop()
	task.Start()
	time.Sleep(10 * time.Millisecond)

	if calls.Load() != 0 {
		t.Fatalf("stopped task should never run, got %d calls", calls.Load())
	}
}
