package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/pkg/geospatial"
)

const hospitalColumns = `id, name, COALESCE(address, ''), lat, lon,
	       COALESCE(phone, ''), COALESCE(specialities, ''), emergency_available, created_at`

// HospitalRepo implements ports.HospitalRepository with pgx. Hospital
// identity is the (lat, lon) pair at six-decimal precision, enforced by a
// unique index.
type HospitalRepo struct {
	db *DB
}

// NewHospitalRepo creates a new HospitalRepo.
func NewHospitalRepo(db *DB) *HospitalRepo {
	return &HospitalRepo{db: db}
}

// UpsertBatch inserts or updates hospitals in a single pgx.Batch round trip
// and returns the stored rows. The whole batch succeeds or fails together;
// chunking for partial-failure tolerance happens above this layer.
func (r *HospitalRepo) UpsertBatch(ctx context.Context, hospitals []domain.Hospital) ([]domain.Hospital, error) {
	if len(hospitals) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, h := range hospitals {
		batch.Queue(`
			INSERT INTO hospitals (name, address, lat, lon, phone, specialities, emergency_available)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (lat, lon) DO UPDATE
			SET name = EXCLUDED.name, address = EXCLUDED.address,
			    phone = EXCLUDED.phone, specialities = EXCLUDED.specialities,
			    emergency_available = EXCLUDED.emergency_available
			RETURNING `+hospitalColumns,
			h.Name, h.Address, h.Location.Lat, h.Location.Lon,
			h.Phone, h.Specialities, h.EmergencyAvailable)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	stored := make([]domain.Hospital, 0, len(hospitals))
	for range hospitals {
		h, err := scanHospital(br.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("batch upsert: %w", err)
		}
		stored = append(stored, *h)
	}
	return stored, nil
}

// Insert creates a single hospital and returns the stored row.
func (r *HospitalRepo) Insert(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error) {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO hospitals (name, address, lat, lon, phone, specialities, emergency_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+hospitalColumns,
		h.Name, h.Address, h.Location.Lat, h.Location.Lon,
		h.Phone, h.Specialities, h.EmergencyAvailable)
	return scanHospital(row)
}

// GetByID returns a hospital by UUID.
func (r *HospitalRepo) GetByID(ctx context.Context, id string) (*domain.Hospital, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, id)
	h, err := scanHospital(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return h, err
}

// GetByCoordinates returns the hospital at the exact stored coordinate
// pair, or nil when none exists.
func (r *HospitalRepo) GetByCoordinates(ctx context.Context, lat, lon float64) (*domain.Hospital, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE lat = $1 AND lon = $2`, lat, lon)
	h, err := scanHospital(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return h, err
}

// FindNearby returns hospitals within radiusKm of the given point. A
// bounding-box prefilter keeps the query on the (lat, lon) index; the
// exact great-circle cut happens in Go.
func (r *HospitalRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusKm*1000)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+hospitalColumns+`
		FROM hospitals
		WHERE lat BETWEEN $1 AND $2 AND lon BETWEEN $3 AND $4
		LIMIT $5
	`, minLat, maxLat, minLon, maxLon, limit*4)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hospitals []domain.Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		if geospatial.DistanceKm(lat, lon, h.Location.Lat, h.Location.Lon) <= radiusKm {
			hospitals = append(hospitals, *h)
		}
	}
	return hospitals, rows.Err()
}

func scanHospital(row pgx.Row) (*domain.Hospital, error) {
	var h domain.Hospital
	err := row.Scan(
		&h.ID, &h.Name, &h.Address,
		&h.Location.Lat, &h.Location.Lon,
		&h.Phone, &h.Specialities, &h.EmergencyAvailable, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
