package postgres

import (
	"context"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// BookingRepo implements ports.BookingRepository with pgx.
type BookingRepo struct {
	db *DB
}

// NewBookingRepo creates a new BookingRepo.
func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts a booking and returns the stored row.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	var out domain.Booking
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO bookings (reference, user_ref, hospital_id, assessment_ref, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, reference, user_ref, hospital_id, assessment_ref, notes, status, created_at
	`, b.Reference, b.UserRef, b.HospitalID, b.AssessmentRef, b.Notes, b.Status).Scan(
		&out.ID, &out.Reference, &out.UserRef, &out.HospitalID,
		&out.AssessmentRef, &out.Notes, &out.Status, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userRef string) ([]domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, reference, user_ref, hospital_id, assessment_ref, notes, status, created_at
		FROM bookings
		WHERE user_ref = $1
		ORDER BY created_at DESC
	`, userRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.Reference, &b.UserRef, &b.HospitalID,
			&b.AssessmentRef, &b.Notes, &b.Status, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
