package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anishmaharjan/caremap/internal/adapters/location"
	natsadapter "github.com/anishmaharjan/caremap/internal/adapters/nats"
	"github.com/anishmaharjan/caremap/internal/adapters/overpass"
	"github.com/anishmaharjan/caremap/internal/adapters/postgres"
	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
	"github.com/anishmaharjan/caremap/internal/pkg/config"
	"github.com/anishmaharjan/caremap/internal/pkg/logging"
	"github.com/anishmaharjan/caremap/internal/pkg/metrics"
)

// syncd keeps the hospital directory fresh: every interval it acquires the
// service-area position, pulls hospitals from Overpass, and reconciles them
// into Postgres, publishing a report on NATS after each run.
func main() {
	cfg, err := config.Load("caremap-syncd")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("caremap-syncd", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, reports will not be published", "error", err)
	} else {
		defer nc.Close()
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	hospitalRepo := postgres.NewHospitalRepo(db)
	reconciler := usecases.NewReconciler(hospitalRepo, cfg.Sync.ChunkSize)
	provider := overpass.New(cfg.Sync.OverpassURL,
		time.Duration(cfg.Sync.OverpassTimeout)*time.Second)
	locator := location.NewCachedLocator(location.Static(domain.GeoPoint{
		Lat: cfg.Sync.CenterLat,
		Lon: cfg.Sync.CenterLon,
	}))
	syncSvc := usecases.NewSyncService(locator, provider, reconciler, publisher, cfg.Sync.RadiusKm)

	// Prometheus scrape endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9091", mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()

	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	slog.Info("sync daemon starting",
		"interval", interval.String(),
		"radius_km", cfg.Sync.RadiusKm,
		"chunk_size", cfg.Sync.ChunkSize)

	runOnce(ctx, syncSvc)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runOnce(ctx, syncSvc)
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
			cancel()
			return
		}
	}
}

func runOnce(ctx context.Context, svc *usecases.SyncService) {
	start := time.Now()
	report := svc.Run(ctx)
	elapsed := time.Since(start)

	metrics.SyncRuns.WithLabelValues(string(report.Status)).Inc()
	metrics.SyncDuration.Observe(elapsed.Seconds())

	if report.Status == domain.SyncFailed {
		slog.Error("sync run failed", "message", report.Message, "elapsed", elapsed.String())
		return
	}

	metrics.HospitalsReconciled.Add(float64(report.Reconciled))
	metrics.ReconcileChunkFailures.Add(float64(report.FailedChunks))
	slog.Info("sync run complete",
		"fetched", report.Fetched,
		"normalized", report.Normalized,
		"deduplicated", report.Deduplicated,
		"reconciled", report.Reconciled,
		"failed_chunks", report.FailedChunks,
		"elapsed", elapsed.String())
}
