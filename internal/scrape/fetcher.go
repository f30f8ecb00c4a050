package scrape

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"

	"github.com/temoto/robotstxt"
)

// Fetcher pulls pages from a source while respecting robots.txt, a
// requests-per-minute cap per host, and a bounded retry policy.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	minInterval time.Duration
	maxRetries  int
	retryDelay  time.Duration

	mu      sync.Mutex
	lastHit map[string]time.Time
	robots  map[string]*robotstxt.RobotsData
	sleepFn func(ctx context.Context, d time.Duration) error
}

func NewFetcher(cfg config.Config) *Fetcher {
	rpm := cfg.ScrapeRequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.ScrapeTimeoutSeconds) * time.Second,
		},
		userAgent:   cfg.ScrapeUserAgent,
		minInterval: time.Minute / time.Duration(rpm),
		maxRetries:  cfg.ScrapeMaxRetries,
		retryDelay:  time.Duration(cfg.ScrapeRetryDelayMillis) * time.Millisecond,
		lastHit:     map[string]time.Time{},
		robots:      map[string]*robotstxt.RobotsData{},
		sleepFn:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch returns the response body, or a *FetchError after exhausting
// retries on timeouts and 5xx responses.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "invalid url"}
	}

	allowed, err := f.robotsAllowed(ctx, u)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &FetchError{URL: rawURL, Reason: "disallowed by robots.txt"}
	}

	var lastErr *FetchError
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: delay, 2*delay, 4*delay, ...
			if err := f.sleepFn(ctx, f.retryDelay<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := f.waitTurn(ctx, u.Host); err != nil {
			return nil, err
		}

		body, fe := f.get(ctx, rawURL)
		if fe == nil {
			return body, nil
		}
		lastErr = fe
		if !fe.retryable() {
			return nil, fe
		}
		log.Printf("fetch retry %d for %s: %v", attempt+1, rawURL, fe)
	}
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: err.Error()}
	}
	return body, nil
}

func (e *FetchError) retryable() bool {
	if e.Status == 0 {
		return true // network error or timeout
	}
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// waitTurn enforces the per-host minimum interval between requests.
func (f *Fetcher) waitTurn(ctx context.Context, host string) error {
	f.mu.Lock()
	now := time.Now()
	wait := time.Duration(0)
	if last, ok := f.lastHit[host]; ok {
		if next := last.Add(f.minInterval); next.After(now) {
			wait = next.Sub(now)
		}
	}
	f.lastHit[host] = now.Add(wait)
	f.mu.Unlock()

	return f.sleepFn(ctx, wait)
}

func (f *Fetcher) robotsAllowed(ctx context.Context, u *url.URL) (bool, error) {
	f.mu.Lock()
	data, ok := f.robots[u.Host]
	f.mu.Unlock()

	if !ok {
		data = f.fetchRobots(ctx, u)
		f.mu.Lock()
		f.robots[u.Host] = data
		f.mu.Unlock()
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.Path, f.userAgent), nil
}

// fetchRobots is best-effort: an unreachable robots.txt allows everything,
// matching the usual robots semantics for missing files.
func (f *Fetcher) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
