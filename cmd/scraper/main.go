package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/config"
	"github.com/sakthiish12/TodayAtSG/internal/db"
	"github.com/sakthiish12/TodayAtSG/internal/scrape"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

var mainRunner = realMain

func main() {
	once := flag.Bool("once", false, "run one scrape and exit")
	source := flag.String("source", "", "scrape a single source instead of all")
	flag.Parse()
	mainRunner(*once, *source)
}

type runner interface {
	RunAll(ctx context.Context) (scrape.Report, error)
	RunSource(ctx context.Context, source string) scrape.RunResult
	Sources() []string
}

var metricsListen = func(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

func realMain(once bool, source string) {
	cfg := config.Load()

	pg, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pg.Close()

	if err := db.EnsureSchema(context.Background(), pg); err != nil {
		log.Printf("schema setup failed: %v", err)
	}

	rdb := db.ConnectRedis(cfg)
	defer rdb.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := Run(context.Background(), cfg, scrape.NewRunner(cfg, pg, rdb), once, source, signals); err != nil {
		log.Fatalf("scraper exited with error: %v", err)
	}
}

// Run executes one scrape in -once mode, otherwise it serves metrics
// and runs on the configured cron schedule until a signal arrives.
func Run(ctx context.Context, cfg config.Config, r runner, once bool, source string, signals <-chan os.Signal) error {
	if once {
		return runOnce(ctx, r, source)
	}

	go func() {
		if err := metricsListen(cfg.MetricsAddr); err != nil {
			log.Printf("metrics server: %v", err)
		}
	}()

	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.ScrapeSchedule, func() {
		if err := runOnce(ctx, r, source); err != nil {
			log.Printf("scheduled scrape: %v", err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	log.Printf("scraper scheduled %q for sources %v", cfg.ScrapeSchedule, r.Sources())

	select {
	case <-signals:
	case <-ctx.Done():
	}

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func runOnce(ctx context.Context, r runner, source string) error {
	if source != "" {
		res := r.RunSource(ctx, source)
		log.Printf("scrape %s: found=%d saved=%d updated=%d duplicates=%d invalid=%d errors=%d",
			source, res.Found, res.Saved, res.Updated, res.Duplicates, res.Invalid, len(res.Errors))
		if !res.Success {
			return errPartialRun
		}
		return nil
	}

	report, err := r.RunAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("scrape %s: found=%d saved=%d across %d sources",
		report.Status, report.TotalFound, report.TotalSaved, len(report.Sources))
	return nil
}

var errPartialRun = errors.New("scrape finished with errors")
