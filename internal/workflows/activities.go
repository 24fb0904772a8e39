package workflows

import (
	"context"
	"fmt"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
)

// BookingActivities holds the activity implementations for the booking
// workflow.
type BookingActivities struct {
	BookingService *usecases.BookingService
	Bookings       ports.BookingRepository
	Publisher      ports.EventPublisher
}

// ResolveHospital returns a durable hospital ID for the input, creating the
// hospital row when it is not persisted yet.
func (a *BookingActivities) ResolveHospital(ctx context.Context, input BookingInput) (string, error) {
	hospital := domain.Hospital{
		ID:      input.HospitalID,
		Name:    input.Name,
		Address: input.Address,
		Location: domain.GeoPoint{
			Lat: input.Lat,
			Lon: input.Lon,
		},
		Phone:              input.Phone,
		EmergencyAvailable: input.EmergencyAvailable,
	}
	id, err := a.BookingService.ResolveHospitalID(ctx, hospital)
	if err != nil {
		return "", fmt.Errorf("resolve hospital: %w", err)
	}
	return id, nil
}

// CreateBooking inserts the pending booking for the resolved hospital.
func (a *BookingActivities) CreateBooking(ctx context.Context, input BookingInput, hospitalID string) (BookingResult, error) {
	userRef, assessmentRef := a.BookingService.ResolveUserRefs(ctx, input.UserRef)

	booking := &domain.Booking{
		Reference:     usecases.NewBookingReference(),
		UserRef:       userRef,
		HospitalID:    hospitalID,
		AssessmentRef: assessmentRef,
		Status:        domain.BookingStatusPending,
	}
	if input.Note != "" {
		note := input.Note
		booking.Notes = &note
	}

	created, err := a.Bookings.Create(ctx, booking)
	if err != nil {
		return BookingResult{}, fmt.Errorf("%w: %v", domain.ErrBookingWriteFailed, err)
	}
	return BookingResult{
		BookingID:  created.ID,
		Reference:  created.Reference,
		HospitalID: created.HospitalID,
	}, nil
}

// PublishBookingCreated emits the booking created event.
func (a *BookingActivities) PublishBookingCreated(ctx context.Context, bookingID string) error {
	if a.Publisher == nil {
		return nil
	}
	return a.Publisher.PublishBookingCreated(ctx, &domain.Booking{
		ID:     bookingID,
		Status: domain.BookingStatusPending,
	})
}
