package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
)

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f := NewFetcher(config.Config{
		ScrapeUserAgent:         "TodayAtSG Bot 1.0 (+https://todayatsg.com/robots)",
		ScrapeTimeoutSeconds:    5,
		ScrapeMaxRetries:        3,
		ScrapeRetryDelayMillis:  1,
		ScrapeRequestsPerMinute: 6000,
	})
	f.sleepFn = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return f
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := testFetcher(t).Fetch(context.Background(), srv.URL+"/events")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("body: %q", body)
	}
	if hits != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testFetcher(t).Fetch(context.Background(), srv.URL+"/events")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if fe.Status != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", fe.Status)
	}
	if hits != 4 { // initial attempt plus three retries
		t.Fatalf("expected 4 attempts, got %d", hits)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher(t).Fetch(context.Background(), srv.URL+"/missing")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected a single attempt, got %d", hits)
	}
}

func TestFetchHonorsRobots(t *testing.T) {
	var pageHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		atomic.AddInt32(&pageHits, 1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := testFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL+"/private/events")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if pageHits != 0 {
		t.Fatal("disallowed page was fetched")
	}

	// Allowed paths on the same host still work, from the cached robots.
	if _, err := f.Fetch(context.Background(), srv.URL+"/public/events"); err != nil {
		t.Fatalf("allowed fetch: %v", err)
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := testFetcher(t).Fetch(context.Background(), srv.URL+"/events"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotUA != "TodayAtSG Bot 1.0 (+https://todayatsg.com/robots)" {
		t.Fatalf("user agent: %q", gotUA)
	}
}

func TestFetchRateLimitSpacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := testFetcher(t)
	var slept time.Duration
	f.sleepFn = func(ctx context.Context, d time.Duration) error {
		slept += d
		return nil
	}

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL+"/events"); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	// 6000 rpm means 10ms spacing; two follow-up requests must wait.
	if slept < 10*time.Millisecond {
		t.Fatalf("expected rate-limit waits, slept %v", slept)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(t).Fetch(ctx, srv.URL+"/events")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
