package ports

import (
	"context"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// GeodataProvider queries the external geodata source for hospitals around a
// center point. An empty slice with a nil error is a valid outcome (nothing
// found, or the provider answered with a non-success status).
type GeodataProvider interface {
	FetchHospitals(ctx context.Context, center domain.GeoPoint, radiusKm float64) ([]domain.SourceElement, error)
}

// Locator acquires the current position. Implementations bound the wait and
// may serve a recent cached fix.
type Locator interface {
	CurrentPosition(ctx context.Context) (domain.GeoPoint, error)
}

// AuthContext resolves the acting user from the request context.
type AuthContext interface {
	// CurrentUser returns the authenticated user's reference, or
	// domain.ErrAuthRequired when none is present.
	CurrentUser(ctx context.Context) (string, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSyncReport(ctx context.Context, report *domain.SyncReport) error
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSyncReports(ctx context.Context, handler func(ctx context.Context, report *domain.SyncReport) error) error
	SubscribeBookings(ctx context.Context, handler func(ctx context.Context, booking *domain.Booking) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}
