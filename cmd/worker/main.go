package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/anishmaharjan/caremap/internal/adapters/nats"
	"github.com/anishmaharjan/caremap/internal/adapters/postgres"
	"github.com/anishmaharjan/caremap/internal/core/ports"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
	"github.com/anishmaharjan/caremap/internal/pkg/config"
	"github.com/anishmaharjan/caremap/internal/pkg/logging"
	"github.com/anishmaharjan/caremap/internal/workflows"
)

func main() {
	cfg, err := config.Load("caremap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("caremap-worker", logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, booking events will not be published", "error", err)
	} else {
		defer nc.Close()
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	hospitalRepo := postgres.NewHospitalRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	assessmentRepo := postgres.NewAssessmentRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	// Workflow activities run outside an HTTP request, so the acting user
	// arrives in the workflow input rather than through auth context.
	bookingSvc := usecases.NewBookingService(hospitalRepo, profileRepo, assessmentRepo,
		bookingRepo, nil, publisher)

	hostPort := os.Getenv("TEMPORAL_ADDR")
	if hostPort == "" {
		hostPort = "localhost:7233"
	}
	c, err := client.Dial(client.Options{
		HostPort: hostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, workflows.BookingTaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.BookingWorkflow)
	w.RegisterActivity(&workflows.BookingActivities{
		BookingService: bookingSvc,
		Bookings:       bookingRepo,
		Publisher:      publisher,
	})

	slog.Info("booking worker started", "task_queue", workflows.BookingTaskQueue, "temporal", hostPort)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
