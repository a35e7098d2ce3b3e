package core

import (
	"context"
	"sync"
	"time"

	"github.com/viralscope/viralscope/internal/utils"
	"github.com/viralscope/viralscope/pkg/notify"
	"github.com/viralscope/viralscope/pkg/refresh"
	"github.com/viralscope/viralscope/pkg/sources/mock"
)

const (
	fetchTimeout    = 30 * time.Second
	refreshHistoryN = 10
)

var (
	refreshHistory   []refresh.Status
	refreshHistoryMu sync.RWMutex
)

func recordRefreshStatus(st refresh.Status) {
	refreshHistoryMu.Lock()
	refreshHistory = append(refreshHistory, st)
	if len(refreshHistory) > refreshHistoryN {
		refreshHistory = refreshHistory[len(refreshHistory)-refreshHistoryN:]
	}
	refreshHistoryMu.Unlock()
}

// GetRefreshHistory returns the most recent refresh attempts, newest first.
func GetRefreshHistory() []refresh.Status {
	refreshHistoryMu.RLock()
	defer refreshHistoryMu.RUnlock()
	out := make([]refresh.Status, len(refreshHistory))
	for i, st := range refreshHistory {
		out[len(refreshHistory)-1-i] = st
	}
	return out
}

// newRefresher wires the mock source, the notification feed and the logger
// into a Refresher.
func newRefresher(cfg ServerConfig, feed *notify.Feed) (*refresh.Refresher, error) {
	src := mock.New(mock.Options{
		Delay:    cfg.FetchDelay,
		FailRate: cfg.FailRate,
		Jitter:   cfg.Jitter,
	})

	interval := time.Duration(cfg.RefreshInterval) * time.Minute
	return refresh.New(refresh.Config{
		Source:   src,
		Sink:     notify.Multi{feed, notify.LogSink{Log: utils.Log}},
		Log:      utils.Log,
		Interval: interval,
		Timeout:  fetchTimeout,
		OnStatus: recordRefreshStatus,
	})
}

// startBackgroundRefresh registers the periodic refresh, if an interval is
// configured, and then does the initial load. A toggle made during the
// initial load sticks.
func startBackgroundRefresh(ctx context.Context, r *refresh.Refresher, cfg ServerConfig) {
	if cfg.RefreshInterval > 0 {
		r.Start(ctx)
	} else {
		utils.Log.Infof("Auto-refresh disabled; enable it from the dashboard")
	}

	utils.Log.Infof("Loading initial data...")
	if err := r.Refresh(ctx, false); err != nil {
		utils.Log.Warnf("Initial load failed: %v", err)
	}
}
