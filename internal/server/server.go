// Package server assembles the Fiber application.
package server

import (
	"context"
	"time"

	"lostfound/internal/handlers"
	"lostfound/internal/middleware"
	"lostfound/internal/services"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one dependency for /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps is everything the HTTP layer needs.
type Deps struct {
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	CORSOrigins string
	BodyLimit   int

	Auth         *services.AuthService
	Items        *services.ItemService
	Claims       *services.ClaimService
	Verification *services.VerificationService
	Leaderboard  *services.LeaderboardService
	Uploads      *services.UploadService

	HealthChecks []HealthCheck
}

// New builds the application with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lostfound",
		BodyLimit:             d.BodyLimit,
		ErrorHandler:          handlers.ErrorHandler(d.Logger),
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", healthHandler(d.HealthChecks))
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.Uploads != nil {
		app.Static(services.PublicUploadPrefix, d.Uploads.Dir())
	}

	requireAuth := middleware.AuthRequired(d.Auth, d.Logger)

	api := app.Group("/api")
	handlers.NewAuthHandler(d.Auth).RegisterRoutes(api, requireAuth)
	handlers.NewLeaderboardHandler(d.Leaderboard).RegisterRoutes(api)
	handlers.NewItemHandler(d.Items).RegisterRoutes(api, requireAuth)
	handlers.NewClaimHandler(d.Claims).RegisterRoutes(api, requireAuth)
	handlers.NewAdminHandler(d.Items, d.Claims, d.Verification, d.Leaderboard).RegisterRoutes(api, requireAuth)
	if d.Uploads != nil {
		handlers.NewUploadHandler(d.Uploads).RegisterRoutes(api, requireAuth)
	}

	app.Use(handlers.NotFound)
	return app
}

func healthHandler(checks []HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		status := fiber.StatusOK
		results := make(map[string]string, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				results[hc.Name] = err.Error()
				status = fiber.StatusServiceUnavailable
				continue
			}
			results[hc.Name] = "ok"
		}

		state := "healthy"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(handlers.Envelope{
			Success: status == fiber.StatusOK,
			Data: fiber.Map{
				"status": state,
				"time":   time.Now().Format(time.RFC3339),
				"checks": results,
			},
		})
	}
}
