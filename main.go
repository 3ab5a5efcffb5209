package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"lostfound/internal/config"
	"lostfound/internal/database"
	"lostfound/internal/repositories"
	"lostfound/internal/server"
	"lostfound/internal/services"
	"lostfound/pkg/cache"
	"lostfound/pkg/logger"
	"lostfound/pkg/metrics"
	"lostfound/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "lostfound-api"}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "lostfound-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := context.Background()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logg.Error(ctx, "failed to open database", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logg.Error(ctx, "failed to migrate database", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	infra := infrastructure{registry: registry, metrics: m}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logg.Warn(ctx, "rabbitmq unavailable, events disabled", err)
		} else {
			defer mqClient.Close()
			infra.publisher = mqClient
			if err := mqClient.ConsumeAudit(auditHandler(logg, m)); err != nil {
				logg.Warn(ctx, "failed to start audit consumer", err)
			}
		}
	}

	// --- Redis (optional) ---
	if cfg.RedisURL != "" {
		redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		redisClient, err := cache.New(redisCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logg.Warn(ctx, "redis unavailable, leaderboard cache disabled", err)
		} else {
			defer redisClient.Close()
			infra.cache = redisClient
			infra.checks = append(infra.checks, server.HealthCheck{Name: "redis", Check: redisClient.Ping})
		}
	}

	app, auth := newApp(cfg, db, logg, infra)

	if !cfg.IsProduction() {
		if _, created, err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logg.Warn(ctx, "failed to seed admin account", err)
		} else if created {
			logg.Info(logg.WithField(ctx, "email", cfg.AdminEmail), "seeded admin account")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logg.Info(logg.WithField(ctx, "addr", cfg.AppPort), "starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			logg.Error(ctx, "server failed", err)
			os.Exit(1)
		}
	}()

	<-quit
	logg.Info(ctx, "shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Warn(ctx, "error during shutdown", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logg.Info(ctx, "server stopped")
}

// infrastructure carries the optional external dependencies.
type infrastructure struct {
	publisher services.EventPublisher
	cache     services.LeaderboardCache
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	checks    []server.HealthCheck
}

// newApp wires repositories, services and routes over db.
func newApp(cfg *config.Config, db *gorm.DB, logg *logger.Logger, infra infrastructure) (*fiber.App, *services.AuthService) {
	store := repositories.NewGORMStore(db)

	authService := services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTTTL, logg)
	leaderboard := services.NewLeaderboardService(store.Users(), infra.cache, cfg.LeaderboardCacheTTL, logg)
	itemService := services.NewItemService(store.Items(), store.Users(), infra.publisher, logg, infra.metrics)
	claimService := services.NewClaimService(store.Claims(), store.Items(), store.Users(), infra.publisher, logg, infra.metrics)
	verification := services.NewVerificationService(store, leaderboard, infra.publisher, logg, infra.metrics)
	uploads := services.NewUploadService(cfg.UploadDir, cfg.UploadMaxBytes, logg)

	checks := append([]server.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}, infra.checks...)

	var gatherer prometheus.Gatherer
	if infra.registry != nil {
		gatherer = infra.registry
	}

	app := server.New(server.Deps{
		Logger:       logg,
		Gatherer:     gatherer,
		CORSOrigins:  cfg.CORSOrigins,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1<<20,
		Auth:         authService,
		Items:        itemService,
		Claims:       claimService,
		Verification: verification,
		Leaderboard:  leaderboard,
		Uploads:      uploads,
		HealthChecks: checks,
	})
	return app, authService
}

// auditHandler logs every domain event delivered to the audit queue.
func auditHandler(logg *logger.Logger, m *metrics.Metrics) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var evt services.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			logg.Warn(logg.WithField(context.Background(), "routing_key", msg.RoutingKey), "undecodable event", err)
			return err
		}
		ctx := logg.WithFields(context.Background(), map[string]any{
			"event":    evt.Type,
			"actor_id": evt.ActorID,
			"item_id":  evt.ItemID,
			"claim_id": evt.ClaimID,
		})
		logg.Info(ctx, "audit event")
		m.IncEventsConsumed(msg.RoutingKey)
		return nil
	}
}
