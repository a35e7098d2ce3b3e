package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink receives notifications. Delivery is fire-and-forget.
type Sink interface {
	Notify(n Notification)
}

// New stamps a notification with an ID and the current time.
func New(kind Kind, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		At:      time.Now().UTC(),
	}
}

// Logger is the subset of logrus used by LogSink.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// LogSink writes notifications to a logger.
type LogSink struct {
	Log Logger
}

func (s LogSink) Notify(n Notification) {
	if s.Log == nil {
		return
	}
	if n.Kind == KindError {
		s.Log.Errorf("%s", n.Message)
		return
	}
	s.Log.Infof("%s", n.Message)
}

// Multi fans a notification out to every sink.
type Multi []Sink

func (m Multi) Notify(n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// DefaultFeedSize is how many notifications a Feed keeps when unset.
const DefaultFeedSize = 20

// Feed keeps the most recent notifications in memory for display.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	size  int
}

// NewFeed returns a feed holding at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = f.items[len(f.items)-f.size:]
	}
}

// Recent returns the notifications newest first.
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, len(f.items))
	for i, n := range f.items {
		out[len(f.items)-1-i] = n
	}
	return out
}

// Since returns notifications newer than t, newest first.
func (f *Feed) Since(t time.Time) []Notification {
	var out []Notification
	for _, n := range f.Recent() {
		if n.At.After(t) {
			out = append(out, n)
		}
	}
	return out
}
