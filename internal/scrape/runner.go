package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/redis/go-redis/v9"
)

const lastRunKey = "scrape:lastrun"

// Runner drives the full pipeline for each registered source:
// fetch, parse, normalize, geocode, dedup, persist.
type Runner struct {
	cfg      config.Config
	db       db.Querier
	redis    *redis.Client
	fetcher  *Fetcher
	registry *Registry
	norm     *Normalizer
	geocoder *Geocoder
	writer   *Writer
}

func NewRunner(cfg config.Config, q db.Querier, rdb *redis.Client) *Runner {
	return &Runner{
		cfg:      cfg,
		db:       q,
		redis:    rdb,
		fetcher:  NewFetcher(cfg),
		registry: DefaultRegistry(),
		norm:     NewNormalizer(),
		geocoder: NewGeocoder(),
		writer:   NewWriter(q),
	}
}

func (r *Runner) Sources() []string {
	return r.registry.Names()
}

// RunAll runs every source with a bounded worker pool and stores the
// combined report under scrape:lastrun.
func (r *Runner) RunAll(ctx context.Context) (Report, error) {
	report := Report{
		StartedAt: time.Now().UTC(),
		Sources:   map[string]RunResult{},
	}

	workers := r.cfg.ScrapeWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range r.registry.Names() {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.RunSource(ctx, source)
			mu.Lock()
			report.Sources[source] = res
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	report.Status = "completed"
	for _, res := range report.Sources {
		report.TotalFound += res.Found
		report.TotalSaved += res.Saved + res.Updated
		if !res.Success {
			report.Status = "completed_with_errors"
		}
	}
	if err := ctx.Err(); err != nil {
		report.Status = "cancelled"
	}

	r.storeReport(ctx, report)
	return report, ctx.Err()
}

// RunSource runs the pipeline for one source. Per-record failures are
// counted and logged; only a missing source or cancellation is fatal
// to the result.
func (r *Runner) RunSource(ctx context.Context, source string) RunResult {
	res := RunResult{Source: source, StartedAt: time.Now().UTC()}
	defer func() {
		res.FinishedAt = time.Now().UTC()
		recordRunMetrics(res)
	}()

	parser, ok := r.registry.Lookup(source)
	if !ok {
		res.Errors = append(res.Errors, "unknown source: "+source)
		return res
	}

	dedup := NewDeduplicator(r.db, r.redis)
	maxEvents := r.cfg.ScrapeMaxEventsPerSource

	for _, page := range parser.Pages() {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, ctx.Err().Error())
			return res
		}
		if maxEvents > 0 && res.Found >= maxEvents {
			break
		}

		body, err := r.fetcher.Fetch(ctx, page)
		if err != nil {
			fetchErrors.WithLabelValues(source).Inc()
			res.Errors = append(res.Errors, err.Error())
			continue
		}

		candidates, skipped, err := parser.Parse(body, page)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Invalid += skipped

		for _, cand := range candidates {
			if maxEvents > 0 && res.Found >= maxEvents {
				break
			}
			res.Found++
			r.process(ctx, dedup, cand, source, &res)
		}
	}

	res.Success = len(res.Errors) == 0
	return res
}

func (r *Runner) process(ctx context.Context, dedup *Deduplicator, cand Candidate, source string, res *RunResult) {
	rec, err := r.norm.Normalize(cand, source)
	if err != nil {
		r.countFailure(err, source, res)
		return
	}

	rec, err = r.geocoder.Resolve(rec)
	if err != nil {
		r.countFailure(err, source, res)
		return
	}

	_, dup, err := dedup.Check(ctx, rec)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("dedup %q: %v", rec.Title, err))
		return
	}
	if dup {
		res.Duplicates++
		return
	}

	inserted, err := r.writer.Save(ctx, rec)
	if err != nil {
		r.countFailure(err, source, res)
		return
	}
	dedup.MarkPersisted(ctx, rec)
	if inserted {
		res.Saved++
	} else {
		res.Updated++
	}
}

func (r *Runner) countFailure(err error, source string, res *RunResult) {
	var ve *ValidationError
	var ge *GeocodeError
	var pe *PersistenceError
	switch {
	case errors.As(err, &ve):
		res.Invalid++
	case errors.As(err, &ge):
		res.Invalid++
		log.Printf("scrape %s: %v", source, err)
	case errors.As(err, &pe):
		res.Errors = append(res.Errors, err.Error())
	default:
		res.Errors = append(res.Errors, err.Error())
	}
}

// storeReport is best-effort; the report is also returned to the caller.
func (r *Runner) storeReport(ctx context.Context, report Report) {
	if r.redis == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, lastRunKey, payload, 7*24*time.Hour).Err(); err != nil {
		log.Printf("store scrape report: %v", err)
	}
}

// LastReport loads the most recent stored run report.
func LastReport(ctx context.Context, rdb *redis.Client) (Report, bool, error) {
	var report Report
	if rdb == nil {
		return report, false, nil
	}
	payload, err := rdb.Get(ctx, lastRunKey).Bytes()
	if err == redis.Nil {
		return report, false, nil
	}
	if err != nil {
		return report, false, err
	}
	if err := json.Unmarshal(payload, &report); err != nil {
		return report, false, err
	}
	return report, true, nil
}
