package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viralscope/viralscope/pkg/whttp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"region":"global","name":"Global","stats":{"total_cases":1000,"total_deaths":10,"total_recovered":900,"active_cases":90},"rates":{"cases_per_100k":null,"mortality_rate":1,"recovery_rate":90},"updated_at":"2024-03-03T10:00:00Z","loading":false}`))
	})
	mux.HandleFunc("GET /api/v1/series", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "7" || r.URL.Query().Get("seed") != "42" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad query"}`))
			return
		}
		w.Write([]byte(`{"region":"US","days":7,"points":[{"date":"2024-03-02","cases":5,"deaths":0,"recovered":4},{"date":"2024-03-03","cases":6,"deaths":0,"recovered":5}]}`))
	})
	mux.HandleFunc("GET /api/v1/countries", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":0,"countries":[],"suggestion":{"code":"DE","name":"Germany"}}`))
	})
	mux.HandleFunc("POST /api/v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"Failed to fetch data. Please try again."}`))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>viralscope</title></head><body></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	srv := newTestServer(t)
	c := New(srv.URL+"/", 5*time.Second, 0)
	return c
}

func TestStats(t *testing.T) {
	s, err := newTestClient(t).Stats(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Global" || s.Stats.TotalCases != 1000 || s.Stats.ActiveCases != 90 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Rates.CasesPer100k.OK {
		t.Fatal("null per-100k should be unavailable")
	}
	if !s.Rates.MortalityRate.OK || s.Rates.MortalityRate.Value != 1 {
		t.Fatalf("mortality = %+v", s.Rates.MortalityRate)
	}
	if s.UpdatedAt.IsZero() {
		t.Fatal("updated_at not parsed")
	}
}

func TestSeries(t *testing.T) {
	c := newTestClient(t)
	points, err := c.Series(context.Background(), "US", 7, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 || points[1].Cases != 6 || points[1].Date.Day() != 3 {
		t.Fatalf("unexpected points: %+v", points)
	}

	_, err = c.Series(context.Background(), "US", 30, 42)
	var se *whttp.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest || se.Message != "bad query" {
		t.Fatalf("expected 400 StatusError, got %v", err)
	}
}

func TestCountriesSuggestion(t *testing.T) {
	res, err := newTestClient(t).Countries(context.Background(), "Germny")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Countries) != 0 || res.Suggestion != "Germany" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRefreshFailure(t *testing.T) {
	_, err := newTestClient(t).Refresh(context.Background())
	var se *whttp.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestPing(t *testing.T) {
	p, err := newTestClient(t).Ping(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.StatusCode != http.StatusOK || p.Title != "viralscope" {
		t.Fatalf("unexpected ping: %+v", p)
	}
}
