package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
)

// DefaultSearchRadiusKm is the fixed radius used for provider queries.
const DefaultSearchRadiusKm = 50.0

// SyncService drives a sync run: locate, fetch, normalize, dedupe,
// reconcile. It owns the run's status reporting and keeps the most recent
// completed report; a newer run's report replaces the previous one.
type SyncService struct {
	locator    ports.Locator
	provider   ports.GeodataProvider
	reconciler *Reconciler
	publisher  ports.EventPublisher
	radiusKm   float64

	mu   sync.RWMutex
	last domain.SyncReport
}

// NewSyncService creates a SyncService. A radiusKm <= 0 falls back to the
// default of 50 km. publisher may be nil.
func NewSyncService(locator ports.Locator, provider ports.GeodataProvider, reconciler *Reconciler, publisher ports.EventPublisher, radiusKm float64) *SyncService {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	return &SyncService{
		locator:    locator,
		provider:   provider,
		reconciler: reconciler,
		publisher:  publisher,
		radiusKm:   radiusKm,
		last:       domain.SyncReport{Status: domain.SyncIdle},
	}
}

// Snapshot returns the most recently stored run report.
func (s *SyncService) Snapshot() domain.SyncReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run executes one sync run and returns its report. Runs may overlap; the
// stored snapshot is whatever run completed last. Location or provider
// transport failures fail the run; reconcile failures are surfaced in the
// message while the run still reaches done.
func (s *SyncService) Run(ctx context.Context) domain.SyncReport {
	report := domain.SyncReport{
		Status:    domain.SyncLocating,
		StartedAt: time.Now(),
	}
	s.store(report)

	center, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		return s.fail(report, domain.ErrLocationUnavailable, err)
	}
	report.Center = center

	report.Status = domain.SyncFetching
	s.store(report)

	elements, err := s.provider.FetchHospitals(ctx, center, s.radiusKm)
	if err != nil {
		return s.fail(report, domain.ErrProviderUnreachable, err)
	}
	report.Fetched = len(elements)

	report.Status = domain.SyncReconciling
	s.store(report)

	normalized := NormalizeElements(elements)
	report.Normalized = len(normalized)

	deduped := DedupeByCoordinate(normalized)
	report.Deduplicated = len(deduped)

	reconciled, err := s.reconciler.Reconcile(ctx, deduped)
	if err != nil {
		// Partial failures never fail the run; the message carries them.
		var partial *domain.PartialReconcileError
		if errors.As(err, &partial) {
			report.FailedChunks = len(partial.Chunks)
		}
		report.Message = err.Error()
		slog.Warn("sync reconcile degraded", "error", err)
	}

	report.Hospitals = reconciled
	report.Reconciled = len(reconciled)
	report.Status = domain.SyncDone
	report.FinishedAt = time.Now()
	s.store(report)

	s.publish(ctx, &report)
	return report
}

func (s *SyncService) fail(report domain.SyncReport, kind, cause error) domain.SyncReport {
	if errors.Is(cause, kind) {
		report.Message = cause.Error()
	} else {
		report.Message = kind.Error() + ": " + cause.Error()
	}
	report.Status = domain.SyncFailed
	report.FinishedAt = time.Now()
	s.store(report)

	slog.Error("sync run failed", "status", report.Status, "error", cause)
	s.publish(context.Background(), &report)
	return report
}

// store overwrites the shared snapshot. Last write wins across overlapping
// runs; no cancellation of in-flight work.
func (s *SyncService) store(report domain.SyncReport) {
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
}

func (s *SyncService) publish(ctx context.Context, report *domain.SyncReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSyncReport(ctx, report); err != nil {
		slog.Warn("publish sync report", "error", err)
	}
}
