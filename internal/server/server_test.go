package server

import (
	"net/http/httptest"
	"testing"

	"github.com/sakthiish12/TodayAtSG/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestRateLimit(t *testing.T) {
	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})

	s := NewServer(config.Config{
		JWTSecret:          "secret",
		ServerPort:         ":0",
		RateLimitPerMinute: 2,
	}, nil, client)

	for i := 0; i < 2; i++ {
		resp, err := s.App.Test(httptest.NewRequest("GET", "/payments/config", nil))
		if err != nil {
			t.Fatalf("test request: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp, err := s.App.Test(httptest.NewRequest("GET", "/payments/config", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 429 {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestRateLimitSkipsHealth(t *testing.T) {
	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})

	s := NewServer(config.Config{
		JWTSecret:          "secret",
		ServerPort:         ":0",
		RateLimitPerMinute: 1,
	}, nil, client)

	for i := 0; i < 3; i++ {
		resp, err := s.App.Test(httptest.NewRequest("GET", "/health", nil))
		if err != nil {
			t.Fatalf("test request: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("health request %d: got %d", i+1, resp.StatusCode)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil)

	resp, err := s.App.Test(httptest.NewRequest("GET", "/admin/scraping/sources", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
