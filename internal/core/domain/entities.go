package domain

import (
	"time"
)

// Hospital represents a point of interest from the geodata source, possibly
// persisted. ID is owned by the store and stays empty until the record has
// been reconciled or created there.
type Hospital struct {
	ID                 string    `json:"id,omitempty"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	Location           GeoPoint  `json:"location"`
	Phone              string    `json:"phone,omitempty"`
	Specialities       string    `json:"specialities,omitempty"`
	EmergencyAvailable bool      `json:"emergency_available"`
	Distance           *float64  `json:"distance_km,omitempty"` // computed field
	CreatedAt          time.Time `json:"created_at"`
}

// Key returns the hospital's coordinate identity. Two hospitals with equal
// keys are the same real-world entity.
func (h Hospital) Key() string {
	return h.Location.Key()
}

// SourceElement is one raw record from the geodata provider. Nodes carry a
// direct coordinate; ways and relations expose a computed center instead.
type SourceElement struct {
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *GeoPoint         `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// SyncStatus is the phase of a sync run.
type SyncStatus string

const (
	SyncIdle        SyncStatus = "idle"
	SyncLocating    SyncStatus = "locating"
	SyncFetching    SyncStatus = "fetching"
	SyncReconciling SyncStatus = "reconciling"
	SyncDone        SyncStatus = "done"
	SyncFailed      SyncStatus = "failed"
)

// SyncReport is the outcome of one sync run. A new run's report replaces the
// previous one wholesale.
type SyncReport struct {
	Status       SyncStatus `json:"status"`
	Message      string     `json:"message,omitempty"`
	Center       GeoPoint   `json:"center"`
	Hospitals    []Hospital `json:"hospitals,omitempty"`
	Fetched      int        `json:"fetched"`
	Normalized   int        `json:"normalized"`
	Deduplicated int        `json:"deduplicated"`
	Reconciled   int        `json:"reconciled"`
	FailedChunks int        `json:"failed_chunks"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
}

// Profile is a user's internal profile row.
type Profile struct {
	ID        string    `json:"id"`
	UserRef   string    `json:"user_ref"`
	CreatedAt time.Time `json:"created_at"`
}

// Assessment is a self-assessment record tied to a user.
type Assessment struct {
	ID        string    `json:"id"`
	UserRef   string    `json:"user_ref"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingStatusPending is the only status this core ever writes.
const BookingStatusPending = "pending"

// Booking is a persisted appointment request against a hospital.
type Booking struct {
	ID            string    `json:"id"`
	Reference     string    `json:"reference"`
	UserRef       string    `json:"user_ref"`
	HospitalID    string    `json:"hospital_id"`
	AssessmentRef *string   `json:"assessment_ref,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingDraft is per-hospital note-editing state, keyed by coordinate key
// because the hospital may not be persisted yet when the draft starts.
type BookingDraft struct {
	Note     string `json:"note"`
	Open     bool   `json:"open"`
	Creating bool   `json:"creating"`
}
