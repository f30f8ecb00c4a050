package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/admin"
	"github.com/sakthiish12/TodayAtSG/internal/auth"
	"github.com/sakthiish12/TodayAtSG/internal/category"
	"github.com/sakthiish12/TodayAtSG/internal/config"
	"github.com/sakthiish12/TodayAtSG/internal/event"
	"github.com/sakthiish12/TodayAtSG/internal/payment"
	"github.com/sakthiish12/TodayAtSG/internal/review"
	"github.com/sakthiish12/TodayAtSG/internal/scrape"
	"github.com/sakthiish12/TodayAtSG/internal/tag"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Runner *scrape.Runner
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Runner: scrape.NewRunner(cfg, db, redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.App.Use(s.rateLimit("api", s.Cfg.RateLimitPerMinute))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB)
	eventSvc := event.NewService(s.DB)
	categorySvc := category.NewService(s.DB)
	tagSvc := tag.NewService(s.DB)
	reviewSvc := review.NewService(s.DB)
	paymentSvc := payment.NewService(s.Cfg, s.DB, payment.NewHTTPProvider(s.Cfg))

	auth.RegisterRoutes(s.App.Group("/auth", s.rateLimit("auth", s.Cfg.AuthRateLimitPerMinute)), authSvc, jwtMiddleware)
	event.RegisterRoutes(s.App.Group("/events"), eventSvc, jwtMiddleware)
	category.RegisterRoutes(s.App.Group("/categories"), categorySvc)
	tag.RegisterRoutes(s.App.Group("/tags"), tagSvc)
	review.RegisterRoutes(s.App.Group("/reviews"), reviewSvc, jwtMiddleware)
	payment.RegisterRoutes(s.App.Group("/payments"), paymentSvc, jwtMiddleware)

	adminGroup := s.App.Group("/admin", jwtMiddleware, auth.AdminMiddleware(authSvc))
	admin.RegisterRoutes(adminGroup, admin.NewService(s.DB))
	event.RegisterAdminRoutes(adminGroup.Group("/events"), eventSvc)
	category.RegisterAdminRoutes(adminGroup.Group("/categories"), categorySvc)
	tag.RegisterAdminRoutes(adminGroup.Group("/tags"), tagSvc)
	review.RegisterAdminRoutes(adminGroup.Group("/reviews"), reviewSvc)
	registerScrapingRoutes(adminGroup.Group("/scraping"), s)
}

func registerScrapingRoutes(r fiber.Router, s *Server) {
	r.Get("/sources", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"sources": s.Runner.Sources()})
	})

	r.Get("/report", func(c *fiber.Ctx) error {
		report, ok, err := scrape.LastReport(c.Context(), s.Redis)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no scrape run recorded")
		}
		return c.JSON(report)
	})

	r.Post("/run", func(c *fiber.Ctx) error {
		var body struct {
			Source string `json:"source"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
		}

		if body.Source != "" && !contains(s.Runner.Sources(), body.Source) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown source: "+body.Source)
		}

		// Runs detached from the request so large scrapes do not
		// hold the connection open.
		go func(source string) {
			ctx := context.Background()
			if source != "" {
				res := s.Runner.RunSource(ctx, source)
				log.Printf("scrape %s: found=%d saved=%d", source, res.Found, res.Saved)
				return
			}
			if _, err := s.Runner.RunAll(ctx); err != nil {
				log.Printf("scrape run: %v", err)
			}
		}(body.Source)

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "started"})
	})
}

// rateLimit applies a fixed window counter per client IP backed by
// redis. Requests are allowed through when redis is unavailable.
func (s *Server) rateLimit(scope string, perMinute int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.Redis == nil || perMinute <= 0 {
			return c.Next()
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.IP(), window)

		count, err := s.Redis.Incr(c.Context(), key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			s.Redis.Expire(c.Context(), key, time.Minute)
		}
		if count > int64(perMinute) {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
