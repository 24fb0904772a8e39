package ports

import (
	"context"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// HospitalRepository persists hospitals.
type HospitalRepository interface {
	// UpsertBatch inserts or updates the given hospitals keyed on their
	// (lat, lon) pair and returns the authoritative rows as written,
	// durable IDs included.
	UpsertBatch(ctx context.Context, hospitals []domain.Hospital) ([]domain.Hospital, error)

	// GetByCoordinates returns the hospital stored at exactly (lat, lon),
	// or nil if none exists.
	GetByCoordinates(ctx context.Context, lat, lon float64) (*domain.Hospital, error)

	// Insert creates a hospital and returns it with its durable ID. Plain
	// insert, no conflict handling.
	Insert(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error)

	GetByID(ctx context.Context, id string) (*domain.Hospital, error)
	FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error)
}

// ProfileRepository resolves internal profile identifiers.
type ProfileRepository interface {
	// RefByUser returns the profile ID for a user, or "" if no profile row
	// exists.
	RefByUser(ctx context.Context, userRef string) (string, error)
}

// AssessmentRepository reads a user's assessment history.
type AssessmentRepository interface {
	// LatestByUser returns the user's most recent assessment by creation
	// time, or nil if they have none.
	LatestByUser(ctx context.Context, userRef string) (*domain.Assessment, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	ListByUser(ctx context.Context, userRef string) ([]domain.Booking, error)
}
