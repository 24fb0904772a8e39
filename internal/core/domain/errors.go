package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the sync and booking flows. Callers branch on these
// with errors.Is; wrapped messages carry the operational detail.
var (
	// ErrLocationUnavailable means no position could be acquired in time.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrProviderUnreachable means the geodata provider could not be reached
	// at the transport level.
	ErrProviderUnreachable = errors.New("geodata provider unreachable")

	// ErrPoiCreateFailed means the hospital record could not be resolved or
	// created. Fatal to a booking.
	ErrPoiCreateFailed = errors.New("hospital create failed")

	// ErrAuthRequired means no authenticated user is present. Fatal to a
	// booking; there are no anonymous bookings.
	ErrAuthRequired = errors.New("authentication required")

	// ErrBookingWriteFailed means the booking insert itself failed.
	ErrBookingWriteFailed = errors.New("booking write failed")
)

// ChunkError records a single failed reconcile chunk.
type ChunkError struct {
	Index int   // zero-based chunk index
	Size  int   // records in the chunk
	Err   error // the store error
}

func (e ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d records): %v", e.Index, e.Size, e.Err)
}

func (e ChunkError) Unwrap() error { return e.Err }

// PartialReconcileError reports that one or more chunks failed to write while
// the remaining chunks committed. It is surfaced, never fatal: the run still
// completes and committed chunks stay committed.
type PartialReconcileError struct {
	Chunks []ChunkError
}

func (e *PartialReconcileError) Error() string {
	parts := make([]string, len(e.Chunks))
	for i, c := range e.Chunks {
		parts[i] = c.Error()
	}
	return fmt.Sprintf("partial reconcile failure: %s", strings.Join(parts, "; "))
}
