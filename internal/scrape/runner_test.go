package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

type stubParser struct {
	name  string
	pages []string
	cands []Candidate
}

func (p *stubParser) Name() string    { return p.name }
func (p *stubParser) Pages() []string { return p.pages }
func (p *stubParser) Parse(body []byte, pageURL string) ([]Candidate, int, error) {
	return p.cands, 0, nil
}

func scrapeTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRunner(t *testing.T, q db.Querier, rdb *redis.Client, parsers ...Parser) *Runner {
	t.Helper()
	cfg := config.Config{
		ScrapeUserAgent:          "TodayAtSG Bot 1.0 (+https://todayatsg.com/robots)",
		ScrapeTimeoutSeconds:     5,
		ScrapeMaxRetries:         1,
		ScrapeRetryDelayMillis:   1,
		ScrapeRequestsPerMinute:  6000,
		ScrapeMaxEventsPerSource: 500,
		ScrapeWorkers:            2,
	}
	f := NewFetcher(cfg)
	f.sleepFn = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return &Runner{
		cfg:      cfg,
		db:       q,
		redis:    rdb,
		fetcher:  f,
		registry: NewRegistry(parsers...),
		norm:     testNormalizer(),
		geocoder: NewGeocoder(),
		writer:   NewWriter(q),
	}
}

func expectPipelineSave(mock pgxmock.PgxPoolIface) {
	// Dedup screen: no existing events that day.
	mock.ExpectQuery(`SELECT id, title, venue, latitude, longitude`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "venue", "latitude", "longitude"}))

	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(anyArgs(20)...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow("evt-1", true))

	// Enriched time-of-day and weekday tags.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`INSERT INTO tags`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(i + 1))
		mock.ExpectExec(`INSERT INTO event_tags`).
			WithArgs("evt-1", i+1).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func TestRunSourceSavesValidCandidates(t *testing.T) {
	srv := scrapeTestServer(t)
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectPipelineSave(mock)

	r := testRunner(t, mock, nil, &stubParser{
		name:  "stub",
		pages: []string{srv.URL + "/events"},
		cands: []Candidate{
			{Title: "Harbour Concert", DateText: "2026-08-01", Location: "Marina Bay"},
			{Title: "ab", DateText: "", Location: ""}, // fails validation
		},
	})

	res := r.RunSource(context.Background(), "stub")
	if !res.Success {
		t.Fatalf("run failed: %v", res.Errors)
	}
	if res.Found != 2 || res.Saved != 1 || res.Invalid != 1 {
		t.Fatalf("found=%d saved=%d invalid=%d", res.Found, res.Saved, res.Invalid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunSourceCountsDuplicates(t *testing.T) {
	srv := scrapeTestServer(t)
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, title, venue, latitude, longitude`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "venue", "latitude", "longitude"}).
			AddRow("evt-1", "Harbour Concert", "Marina Bay", nil, nil))

	r := testRunner(t, mock, nil, &stubParser{
		name:  "stub",
		pages: []string{srv.URL + "/events"},
		cands: []Candidate{
			{Title: "Harbour Concert", DateText: "2026-08-01", Location: "Marina Bay"},
		},
	})

	res := r.RunSource(context.Background(), "stub")
	if !res.Success {
		t.Fatalf("run failed: %v", res.Errors)
	}
	if res.Duplicates != 1 || res.Saved != 0 {
		t.Fatalf("duplicates=%d saved=%d", res.Duplicates, res.Saved)
	}
}

func TestRunSourceUnknownSource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	r := testRunner(t, mock, nil)
	res := r.RunSource(context.Background(), "nope")
	if res.Success || len(res.Errors) == 0 {
		t.Fatal("expected failure for unknown source")
	}
}

func TestRunSourceSurvivesFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	r := testRunner(t, mock, nil, &stubParser{
		name:  "stub",
		pages: []string{srv.URL + "/gone"},
	})

	res := r.RunSource(context.Background(), "stub")
	if res.Success {
		t.Fatal("expected errors recorded")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors: %v", res.Errors)
	}
}

func TestRunAllStoresReport(t *testing.T) {
	srv := scrapeTestServer(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	r := testRunner(t, mock, rdb,
		&stubParser{name: "alpha", pages: []string{srv.URL + "/a"}},
		&stubParser{name: "beta", pages: []string{srv.URL + "/b"}},
	)

	report, err := r.RunAll(context.Background())
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	if report.Status != "completed" {
		t.Fatalf("status: %q", report.Status)
	}
	if len(report.Sources) != 2 {
		t.Fatalf("sources: %v", report.Sources)
	}

	stored, ok, err := LastReport(context.Background(), rdb)
	if err != nil || !ok {
		t.Fatalf("last report: ok=%v err=%v", ok, err)
	}
	if stored.Status != report.Status || len(stored.Sources) != 2 {
		t.Fatalf("stored report mismatch: %+v", stored)
	}
}

func TestLastReportMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	_, ok, err := LastReport(context.Background(), rdb)
	if err != nil {
		t.Fatalf("last report: %v", err)
	}
	if ok {
		t.Fatal("expected no stored report")
	}
}
