package notify

import (
	"fmt"
	"testing"
	"time"
)

type recordingLogger struct {
	infos, errors []string
}

func (r *recordingLogger) Infof(format string, args ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestFeedKeepsNewestFirst(t *testing.T) {
	f := NewFeed(2)
	f.Notify(New(KindSuccess, "one"))
	f.Notify(New(KindSuccess, "two"))
	f.Notify(New(KindError, "three"))

	got := f.Recent()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Message != "three" || got[1].Message != "two" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestFeedSince(t *testing.T) {
	f := NewFeed(0)
	old := Notification{ID: "a", Message: "old", At: time.Unix(100, 0)}
	fresh := Notification{ID: "b", Message: "fresh", At: time.Unix(300, 0)}
	f.Notify(old)
	f.Notify(fresh)

	got := f.Since(time.Unix(200, 0))
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestLogSinkRoutesByKind(t *testing.T) {
	l := &recordingLogger{}
	Multi{LogSink{Log: l}, nil}.Notify(New(KindError, "boom"))
	LogSink{Log: l}.Notify(New(KindSuccess, "ok"))

	if len(l.errors) != 1 || l.errors[0] != "boom" {
		t.Fatalf("unexpected errors: %v", l.errors)
	}
	if len(l.infos) != 1 || l.infos[0] != "ok" {
		t.Fatalf("unexpected infos: %v", l.infos)
	}
}

func TestNewAssignsIDs(t *testing.T) {
	a, b := New(KindSuccess, "x"), New(KindSuccess, "x")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
}
