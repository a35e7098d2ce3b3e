package whttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetHTMLTitle(t *testing.T) {
	tests := []struct {
		body  string
		title string
		ok    bool
	}{
		{"<html><head><title>Dashboard</title></head></html>", "Dashboard", true},
		{"<html><head><title></title></head></html>", "", true},
		{"<p>no title here</p>", "", false},
	}
	for _, tt := range tests {
		title, ok := getHTMLTitle(tt.body)
		if title != tt.title || ok != tt.ok {
			t.Errorf("getHTMLTitle(%q) = %q, %v; want %q, %v", tt.body, title, ok, tt.title, tt.ok)
		}
	}
}

func TestSendHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, p, ok := r.BasicAuth(); !ok || u != "admin" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Test") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("ETag", `"abc"`)
		w.Write([]byte("<html><head><title>\n  Viralscope\r\n</title></head></html>"))
	}))
	defer srv.Close()

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
		URL:      srv.URL,
		Headers:  []WHTTPHeader{{Name: "X-Test", Value: "1"}},
		Username: "admin",
		Password: "secret",
	}, NewClient(5*time.Second, 0))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.HTTPTitle != "Viralscope" {
		t.Fatalf("title = %q", res.HTTPTitle)
	}
	if res.ETag != `"abc"` {
		t.Fatalf("etag = %q", res.ETag)
	}
}

func TestSendHTTPRequestRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 2)
	client.RetryWaitMin = time.Millisecond
	client.RetryWaitMax = time.Millisecond

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{URL: srv.URL}, client)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK || calls.Load() != 2 {
		t.Fatalf("status %d after %d calls", res.StatusCode, calls.Load())
	}
	if res.HTTPTitle != "" {
		t.Fatalf("JSON body should not yield a title, got %q", res.HTTPTitle)
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 502, Message: "boom"}
	if err.Error() != "unexpected status 502: boom" {
		t.Fatal(err.Error())
	}
}
