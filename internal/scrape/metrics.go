package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_events_found_total",
		Help: "Listings parsed from source pages.",
	}, []string{"source"})

	eventsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_events_saved_total",
		Help: "Events inserted or refreshed in the store.",
	}, []string{"source"})

	eventsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_events_duplicate_total",
		Help: "Listings dropped as duplicates of stored events.",
	}, []string{"source"})

	eventsInvalid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_events_invalid_total",
		Help: "Listings rejected by validation.",
	}, []string{"source"})

	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_fetch_errors_total",
		Help: "Page fetches that failed after retries.",
	}, []string{"source"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrape_run_duration_seconds",
		Help:    "Wall time per source run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"source"})
)

func recordRunMetrics(res RunResult) {
	eventsFound.WithLabelValues(res.Source).Add(float64(res.Found))
	eventsSaved.WithLabelValues(res.Source).Add(float64(res.Saved + res.Updated))
	eventsDuplicate.WithLabelValues(res.Source).Add(float64(res.Duplicates))
	eventsInvalid.WithLabelValues(res.Source).Add(float64(res.Invalid))
	runDuration.WithLabelValues(res.Source).Observe(res.DurationSeconds())
}
