package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/anishmaharjan/caremap/internal/adapters/http"
	"github.com/anishmaharjan/caremap/internal/adapters/location"
	natsadapter "github.com/anishmaharjan/caremap/internal/adapters/nats"
	"github.com/anishmaharjan/caremap/internal/adapters/overpass"
	"github.com/anishmaharjan/caremap/internal/adapters/postgres"
	"github.com/anishmaharjan/caremap/internal/adapters/valkey"
	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
	"github.com/anishmaharjan/caremap/internal/pkg/config"
	"github.com/anishmaharjan/caremap/internal/pkg/logging"
	"github.com/anishmaharjan/caremap/internal/pkg/metrics"
	"github.com/anishmaharjan/caremap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("caremap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("caremap-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	hospitalRepo := postgres.NewHospitalRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	assessmentRepo := postgres.NewAssessmentRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	// Geodata + position sources
	provider := overpass.New(cfg.Sync.OverpassURL,
		time.Duration(cfg.Sync.OverpassTimeout)*time.Second)
	locator := location.NewCachedLocator(location.Static(domain.GeoPoint{
		Lat: cfg.Sync.CenterLat,
		Lon: cfg.Sync.CenterLon,
	}))

	// Use cases. The publisher interface stays nil when NATS is down so
	// the services skip publishing instead of calling a nil connection.
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	reconciler := usecases.NewReconciler(hospitalRepo, cfg.Sync.ChunkSize)
	syncSvc := usecases.NewSyncService(locator, provider, reconciler, publisher, cfg.Sync.RadiusKm)
	hospitalSvc := usecases.NewHospitalService(hospitalRepo, cacheSvc)
	bookingSvc := usecases.NewBookingService(hospitalRepo, profileRepo, assessmentRepo,
		bookingRepo, http.ContextAuth{}, publisher)

	// Completed sync runs bump the cache generation so nearby results
	// never outlive a reconcile.
	if cache != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("sync report subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeSyncReports(ctx, func(ctx context.Context, report *domain.SyncReport) error {
				if report.Status != domain.SyncDone {
					return nil
				}
				if _, err := cache.Incr(ctx, "hospitals:gen"); err != nil {
					return err
				}
				slog.Info("cache generation bumped after sync", "reconciled", report.Reconciled)
				return nil
			})
			if err != nil {
				slog.Warn("subscribe sync reports", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Hospitals: hospitalSvc,
		Sync:      syncSvc,
		Bookings:  bookingSvc,
		Drafts:    http.NewDraftStore(),
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		JWTSecret: cfg.Auth.JWTSecret,
	}

	// Periodic DB pool gauge refresh
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "CareMap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
