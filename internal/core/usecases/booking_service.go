package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
)

// BookingService runs the booking workflow: resolve-or-create the hospital,
// resolve the acting user and their profile/assessment references, then
// insert the booking. Hospital identity, user identity, and the booking
// write are load-bearing; profile and assessment lookups degrade to
// fallbacks.
type BookingService struct {
	hospitals   ports.HospitalRepository
	profiles    ports.ProfileRepository
	assessments ports.AssessmentRepository
	bookings    ports.BookingRepository
	auth        ports.AuthContext
	publisher   ports.EventPublisher
}

// NewBookingReference returns a short human-readable booking reference.
func NewBookingReference() string {
	return "CM-" + uuid.NewString()[:8]
}

// NewBookingService creates a BookingService. publisher may be nil.
func NewBookingService(
	hospitals ports.HospitalRepository,
	profiles ports.ProfileRepository,
	assessments ports.AssessmentRepository,
	bookings ports.BookingRepository,
	auth ports.AuthContext,
	publisher ports.EventPublisher,
) *BookingService {
	return &BookingService{
		hospitals:   hospitals,
		profiles:    profiles,
		assessments: assessments,
		bookings:    bookings,
		auth:        auth,
		publisher:   publisher,
	}
}

// Book creates a pending booking for the given hospital with an optional
// free-text note. The hospital may or may not be persisted yet.
func (s *BookingService) Book(ctx context.Context, hospital domain.Hospital, note string) (*domain.Booking, error) {
	// Acting user first: no anonymous bookings, and resolving the hospital
	// may create a row, so a missing user must abort before any write.
	userRef, err := s.auth.CurrentUser(ctx)
	if err != nil || userRef == "" {
		if err == nil {
			err = domain.ErrAuthRequired
		}
		return nil, fmt.Errorf("%w", err)
	}

	// Durable hospital ID, creating the row if needed.
	hospitalID, err := s.ResolveHospitalID(ctx, hospital)
	if err != nil {
		return nil, err
	}

	userRef, assessmentRef := s.ResolveUserRefs(ctx, userRef)

	// The booking write itself. Fatal on failure.
	booking := &domain.Booking{
		Reference:     NewBookingReference(),
		UserRef:       userRef,
		HospitalID:    hospitalID,
		AssessmentRef: assessmentRef,
		Status:        domain.BookingStatusPending,
	}
	if note != "" {
		booking.Notes = &note
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBookingWriteFailed, err)
	}

	if s.publisher != nil {
		if perr := s.publisher.PublishBookingCreated(ctx, created); perr != nil {
			slog.Warn("publish booking created", "error", perr)
		}
	}

	return created, nil
}

// ResolveHospitalID looks the hospital up by exact coordinate match and
// creates it when absent. A race that creates a near-duplicate is accepted;
// there is no retry-after-conflict.
func (s *BookingService) ResolveHospitalID(ctx context.Context, hospital domain.Hospital) (string, error) {
	if hospital.ID != "" {
		return hospital.ID, nil
	}

	existing, err := s.hospitals.GetByCoordinates(ctx, hospital.Location.Lat, hospital.Location.Lon)
	if err != nil {
		return "", fmt.Errorf("%w: lookup: %v", domain.ErrPoiCreateFailed, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := s.hospitals.Insert(ctx, &hospital)
	if err != nil {
		return "", fmt.Errorf("%w: insert: %v", domain.ErrPoiCreateFailed, err)
	}
	return created.ID, nil
}

// ResolveUserRefs resolves the booking's user-side references. A missing or
// failed profile lookup falls back to the raw user identity; a missing or
// failed assessment lookup yields a nil reference. Both are logged, never
// surfaced.
func (s *BookingService) ResolveUserRefs(ctx context.Context, userRef string) (string, *string) {
	ref := s.resolveProfileRef(ctx, userRef)

	var assessmentRef *string
	if latest, err := s.assessments.LatestByUser(ctx, userRef); err != nil {
		slog.Warn("assessment lookup failed, booking without reference", "error", err)
	} else if latest != nil {
		assessmentRef = &latest.ID
	}

	return ref, assessmentRef
}

// resolveProfileRef returns the user's profile ID when a profile row exists,
// otherwise the raw user identity. A failed lookup falls back too, logged.
// Bookings are stored and listed under this resolved ref.
func (s *BookingService) resolveProfileRef(ctx context.Context, userRef string) string {
	profileRef, err := s.profiles.RefByUser(ctx, userRef)
	if err != nil {
		slog.Warn("profile lookup failed, using raw user ref", "error", err)
		return userRef
	}
	if profileRef == "" {
		return userRef
	}
	return profileRef
}

// ListForCurrentUser returns the acting user's bookings.
func (s *BookingService) ListForCurrentUser(ctx context.Context) ([]domain.Booking, error) {
	userRef, err := s.auth.CurrentUser(ctx)
	if err != nil || userRef == "" {
		if err == nil {
			err = domain.ErrAuthRequired
		}
		return nil, err
	}
	return s.bookings.ListByUser(ctx, s.resolveProfileRef(ctx, userRef))
}
