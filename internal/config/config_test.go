package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.ScrapeWorkers != 3 {
		t.Fatalf("expected 3 scrape workers, got %d", cfg.ScrapeWorkers)
	}
	if cfg.ScrapeMaxRetries != 3 {
		t.Fatalf("expected 3 scrape retries, got %d", cfg.ScrapeMaxRetries)
	}
	if cfg.AuthRateLimitPerMinute >= cfg.RateLimitPerMinute {
		t.Fatalf("auth rate limit should be stricter than the default limit")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SCRAPE_REQUESTS_PER_MINUTE", "30")
	t.Setenv("SCRAPE_SCHEDULE", "0 19 * * *")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.ScrapeRequestsPerMinute != 30 {
		t.Fatalf("expected override rpm")
	}
	if cfg.ScrapeSchedule != "0 19 * * *" {
		t.Fatalf("expected override schedule")
	}
}
