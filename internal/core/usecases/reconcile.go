package usecases

import (
	"context"
	"log/slog"

	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/ports"
)

// DefaultChunkSize is the number of hospitals written per upsert batch.
const DefaultChunkSize = 200

// Reconciler makes a deduplicated hospital set durable with
// latest-data-wins semantics, tolerating partial chunk failure.
type Reconciler struct {
	hospitals ports.HospitalRepository
	chunkSize int
}

// NewReconciler creates a Reconciler. A chunkSize <= 0 falls back to the
// default of 200.
func NewReconciler(hospitals ports.HospitalRepository, chunkSize int) *Reconciler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reconciler{hospitals: hospitals, chunkSize: chunkSize}
}

// Reconcile upserts the input in fixed-size chunks and merges the rows the
// store returns back over the local set, keyed by coordinate. Store-returned
// rows always win: they reflect what is durable and carry the durable ID.
//
// A failed chunk is recorded and processing continues; committed chunks stay
// committed. When at least one chunk failed the returned error is a
// *domain.PartialReconcileError and the result is still valid — the failed
// chunks' records are present in their locally normalized form, so nothing
// is lost. If the store returned no rows at all for a non-empty input, the
// deduplicated input itself is returned as the best-effort result.
func (r *Reconciler) Reconcile(ctx context.Context, hospitals []domain.Hospital) ([]domain.Hospital, error) {
	if len(hospitals) == 0 {
		return nil, nil
	}

	merged := make(map[string]domain.Hospital, len(hospitals))
	order := make([]string, 0, len(hospitals))
	for _, h := range hospitals {
		key := h.Key()
		merged[key] = h
		order = append(order, key)
	}

	var chunkErrs []domain.ChunkError
	returnedAny := false

	for i, chunk := range chunkHospitals(hospitals, r.chunkSize) {
		rows, err := r.hospitals.UpsertBatch(ctx, chunk)
		if err != nil {
			slog.Warn("reconcile chunk failed", "chunk", i, "size", len(chunk), "error", err)
			chunkErrs = append(chunkErrs, domain.ChunkError{Index: i, Size: len(chunk), Err: err})
			continue
		}
		for _, row := range rows {
			returnedAny = true
			merged[row.Key()] = row
		}
	}

	if !returnedAny && len(chunkErrs) > 0 {
		// Every chunk failed: expose the deduplicated input rather than
		// discarding known-good data.
		return hospitals, &domain.PartialReconcileError{Chunks: chunkErrs}
	}

	out := make([]domain.Hospital, 0, len(merged))
	for _, key := range order {
		out = append(out, merged[key])
	}

	if len(chunkErrs) > 0 {
		return out, &domain.PartialReconcileError{Chunks: chunkErrs}
	}
	return out, nil
}

// chunkHospitals splits the input into fixed-size chunks, preserving
// relative order. The last chunk may be short.
func chunkHospitals(hospitals []domain.Hospital, size int) [][]domain.Hospital {
	var chunks [][]domain.Hospital
	for start := 0; start < len(hospitals); start += size {
		end := start + size
		if end > len(hospitals) {
			end = len(hospitals)
		}
		chunks = append(chunks, hospitals[start:end])
	}
	return chunks
}
