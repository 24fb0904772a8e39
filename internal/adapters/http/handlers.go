package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/pkg/geospatial"
	"github.com/anishmaharjan/caremap/internal/pkg/metrics"
)

func bookingFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth"
	case errors.Is(err, domain.ErrPoiCreateFailed):
		return "hospital_create"
	case errors.Is(err, domain.ErrBookingWriteFailed):
		return "write"
	default:
		return "other"
	}
}

// ServiceStats holds row counts across the care tables.
type ServiceStats struct {
	Hospitals   int    `json:"hospitals"`
	Profiles    int    `json:"profiles"`
	Assessments int    `json:"assessments"`
	Bookings    int    `json:"bookings"`
	LastSync    string `json:"last_sync,omitempty"`
}

// StatsHandler returns row counts from the care tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats ServiceStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM hospitals),
				(SELECT count(*) FROM profiles),
				(SELECT count(*) FROM assessments),
				(SELECT count(*) FROM bookings),
				COALESCE((SELECT max(created_at)::text FROM hospitals), '')
		`)
		if err := row.Scan(&stats.Hospitals, &stats.Profiles, &stats.Assessments,
			&stats.Bookings, &stats.LastSync); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// NearbyHospitalsHandler returns hospitals within a radius of a point,
// closest first.
func NearbyHospitalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radiusKm := c.QueryFloat("radius_km", 10)
		limit := c.QueryInt("limit", 50)

		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat/lon out of range")
		}

		hospitals, err := deps.Hospitals.Nearby(c.Context(), lat, lon, radiusKm, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(fiber.Map{
			"hospitals": hospitals,
			"count":     len(hospitals),
		})
	}
}

// GetHospitalHandler returns a single hospital by ID.
func GetHospitalHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "hospital id is required")
		}
		hospital, err := deps.Hospitals.GetByID(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if hospital == nil {
			return errNotFound(c, "hospital not found")
		}
		return c.JSON(hospital)
	}
}

// TriggerSyncHandler runs a full sync cycle and returns its report. A
// partially failed reconcile still reports done; only an aborted run maps
// to 503.
func TriggerSyncHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := deps.Sync.Run(c.Context())
		if report.Status == domain.SyncFailed {
			return c.Status(fiber.StatusServiceUnavailable).JSON(report)
		}
		return c.JSON(report)
	}
}

// SyncStatusHandler returns the last completed or in-flight sync report.
func SyncStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache")
		return c.JSON(deps.Sync.Snapshot())
	}
}

// bookingRequest is the POST /v1/bookings payload. Either a persisted
// hospital ID or the hospital's coordinates (with a name) must be given.
type bookingRequest struct {
	HospitalID         string  `json:"hospital_id"`
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lon"`
	Address            string  `json:"address"`
	Phone              string  `json:"phone"`
	Specialities       string  `json:"specialities"`
	EmergencyAvailable bool    `json:"emergency_available"`
	Note               string  `json:"note"`
}

// CreateBookingHandler creates a pending booking for the authenticated user.
func CreateBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req bookingRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.HospitalID == "" && req.Lat == 0 && req.Lon == 0 {
			return errBadRequest(c, "hospital_id or lat/lon are required")
		}

		hospital := domain.Hospital{
			ID:                 req.HospitalID,
			Name:               req.Name,
			Address:            req.Address,
			Location:           domain.GeoPoint{Lat: req.Lat, Lon: req.Lon},
			Phone:              req.Phone,
			Specialities:       req.Specialities,
			EmergencyAvailable: req.EmergencyAvailable,
		}

		booking, err := deps.Bookings.Book(c.UserContext(), hospital, req.Note)
		if err != nil {
			metrics.BookingFailures.WithLabelValues(bookingFailureReason(err)).Inc()
			return domainError(c, err)
		}
		metrics.BookingsCreated.Inc()

		// Submitting clears any draft for this hospital.
		if deps.Drafts != nil && req.HospitalID == "" {
			deps.Drafts.Clear(hospital.Key())
		}

		return c.Status(fiber.StatusCreated).JSON(booking)
	}
}

// ListBookingsHandler returns the authenticated user's bookings.
func ListBookingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bookings, err := deps.Bookings.ListForCurrentUser(c.UserContext())
		if err != nil {
			return domainError(c, err)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(bookings)
		if offset >= total {
			bookings = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			bookings = bookings[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: bookings, Pagination: pg})
	}
}

// draftRequest is the PUT /v1/drafts payload.
type draftRequest struct {
	Note string `json:"note"`
	Open bool   `json:"open"`
}

func draftKey(c *fiber.Ctx) (string, error) {
	lat := c.QueryFloat("lat", 0)
	lon := c.QueryFloat("lon", 0)
	if lat == 0 && lon == 0 {
		return "", errors.New("lat and lon are required")
	}
	return geospatial.Key(lat, lon), nil
}

// GetDraftHandler returns the booking draft for a hospital's coordinates.
// A hospital with no draft yields the zero draft.
func GetDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := draftKey(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(deps.Drafts.Get(key))
	}
}

// PutDraftHandler replaces the booking draft for a hospital's coordinates.
func PutDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := draftKey(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req draftRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		deps.Drafts.Put(key, domain.BookingDraft{Note: req.Note, Open: req.Open})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteDraftHandler discards the booking draft for a hospital's coordinates.
func DeleteDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := draftKey(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		deps.Drafts.Clear(key)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
