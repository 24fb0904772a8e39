package http

import (
	"github.com/nats-io/nats.go"

	"github.com/anishmaharjan/caremap/internal/adapters/postgres"
	"github.com/anishmaharjan/caremap/internal/adapters/valkey"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Hospitals *usecases.HospitalService
	Sync      *usecases.SyncService
	Bookings  *usecases.BookingService
	Drafts    *DraftStore
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
	JWTSecret string
}
