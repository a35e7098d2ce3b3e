package refresh

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/sources/mock"
)

type recordingSink struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (r *recordingSink) Notify(n notify.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recordingSink) count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

func newTestRefresher(t *testing.T, src *mock.Source, sink notify.Sink) *Refresher {
	t.Helper()
	r, err := New(Config{Source: src, Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestRefreshReplacesDataset(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRefresher(t, mock.New(mock.Options{Delay: 0, Seed: 1}), sink)

	if _, ok := r.Current(); ok {
		t.Fatal("expected no dataset before first refresh")
	}
	if err := r.Refresh(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	d, ok := r.Current()
	if !ok {
		t.Fatal("expected dataset after refresh")
	}
	if d.Global != covid.MockGlobal || len(d.Countries) != 8 {
		t.Fatalf("unexpected dataset %+v", d)
	}
	if d.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped")
	}
	if sink.count(notify.KindSuccess) != 1 {
		t.Fatalf("expected one success notification, got %d", sink.count(notify.KindSuccess))
	}
	st := r.Status()
	if st == nil || !st.Success || !st.Manual || st.Source != "mock" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestSilentRefreshDoesNotAnnounce(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRefresher(t, mock.New(mock.Options{Delay: 0, Seed: 1}), sink)
	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if len(sink.items) != 0 {
		t.Fatalf("expected no notifications, got %+v", sink.items)
	}
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	src := mock.New(mock.Options{Delay: 0, Jitter: 0.1, Seed: 3})
	sink := &recordingSink{}
	r := newTestRefresher(t, src, sink)

	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	before, _ := r.Current()

	src.FailNext(1)
	err := r.Refresh(context.Background(), true)
	if !errors.Is(err, mock.ErrSimulatedFailure) {
		t.Fatalf("expected simulated failure, got %v", err)
	}

	after, ok := r.Current()
	if !ok || !reflect.DeepEqual(before, after) {
		t.Fatalf("dataset changed after failed refresh:\nbefore %+v\nafter  %+v", before, after)
	}
	if sink.count(notify.KindError) != 1 {
		t.Fatalf("expected exactly one failure notification, got %d", sink.count(notify.KindError))
	}
	if sink.count(notify.KindSuccess) != 0 {
		t.Fatal("failed refresh must not announce success")
	}
	if st := r.Status(); st == nil || st.Success || st.Err == "" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestPreviousTracksReplacedDataset(t *testing.T) {
	src := mock.New(mock.Options{Delay: 0, Jitter: 0.2, Seed: 5})
	r := newTestRefresher(t, src, nil)

	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Previous(); ok {
		t.Fatal("no previous dataset after the first refresh")
	}
	first, _ := r.Current()
	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if prev, ok := r.Previous(); !ok || !reflect.DeepEqual(prev, first) {
		t.Fatalf("previous mismatch:\nwant %+v\ngot  %+v", first, prev)
	}
}

// fixedSource returns whatever dataset it currently holds.
type fixedSource struct {
	mu   sync.Mutex
	data covid.Dataset
}

func (f *fixedSource) Name() string { return "fixed" }

func (f *fixedSource) Fetch(context.Context) (covid.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Clone(), nil
}

func (f *fixedSource) set(d covid.Dataset) {
	f.mu.Lock()
	f.data = d
	f.mu.Unlock()
}

func TestInvalidDatasetIsRejected(t *testing.T) {
	src := &fixedSource{data: covid.Dataset{Global: covid.MockGlobal, Countries: covid.MockCountries()}}
	sink := &recordingSink{}
	r, err := New(Config{Source: src, Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	before, _ := r.Current()

	bad := covid.MockCountries()
	bad[0].Deaths = bad[0].Cases + 1
	src.set(covid.Dataset{Global: covid.MockGlobal, Countries: bad})

	err = r.Refresh(context.Background(), true)
	if !errors.Is(err, covid.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	after, _ := r.Current()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("invalid dataset replaced the current one")
	}
	if _, ok := r.Previous(); ok {
		t.Fatal("rejected dataset must not shift the previous one")
	}
	if sink.count(notify.KindError) != 1 || sink.count(notify.KindSuccess) != 0 {
		t.Fatalf("notifications = %+v", sink.items)
	}
	if st := r.Status(); st == nil || st.Success {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestOnUpdateCallback(t *testing.T) {
	var got covid.Dataset
	r, err := New(Config{
		Source:   mock.New(mock.Options{Delay: 0, Seed: 1}),
		OnUpdate: func(d covid.Dataset) { got = d },
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("OnUpdate not called with stamped dataset")
	}
}

func TestOnStatusSeesEveryAttempt(t *testing.T) {
	src := mock.New(mock.Options{Delay: 0, Seed: 1})
	var seen []bool
	r, err := New(Config{
		Source:   src,
		OnStatus: func(st Status) { seen = append(seen, st.Success) },
	})
	if err != nil {
		t.Fatal(err)
	}
	r.Refresh(context.Background(), false)
	src.FailNext(1)
	r.Refresh(context.Background(), true)
	if !reflect.DeepEqual(seen, []bool{true, false}) {
		t.Fatalf("statuses = %v", seen)
	}
}

func TestTimeoutBoundsFetch(t *testing.T) {
	r, err := New(Config{
		Source:  mock.New(mock.Options{Delay: time.Hour, Seed: 1}),
		Timeout: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Refresh(context.Background(), false); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if r.Loading() {
		t.Fatal("refresh should not be in flight after returning")
	}
}

func TestAutoRefreshToggle(t *testing.T) {
	r, err := New(Config{
		Source:   mock.New(mock.Options{Delay: 0, Seed: 1}),
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r.SetAutoRefresh(ctx, true)
	if !r.AutoRefresh() {
		t.Fatal("expected auto-refresh on")
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Status() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Status() == nil {
		t.Fatal("periodic refresh never ran")
	}

	r.SetAutoRefresh(ctx, false)
	r.Stop()
	if r.AutoRefresh() {
		t.Fatal("expected auto-refresh off")
	}
}
